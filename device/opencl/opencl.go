//go:build opencl
// +build opencl

// Package opencl is a thin cgo wrapper over the OpenCL host API, compiled
// only with `-tags opencl` and an OpenCL SDK available. It allocates the
// device-visible buffers of spec.md §6 and drives a kernel built from an
// externally supplied source file; the kernel source itself is out of
// scope (spec.md §1) and is never embedded here.
package opencl

/*
#cgo CFLAGS: -I${SRCDIR}/../../deps/opencl-headers
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#cgo windows LDFLAGS: -lOpenCL

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/markovforge/markovforge/device"
	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/errext"
	"github.com/markovforge/markovforge/markov"
)

// Platforms enumerates every OpenCL platform and device visible to the
// driver, for `--list-platforms` (spec.md §4.12).
func Platforms() ([]device.Info, error) {
	var numPlatforms C.cl_uint
	if C.clGetPlatformIDs(0, nil, &numPlatforms) != C.CL_SUCCESS || numPlatforms == 0 {
		return nil, errext.New(errext.DeviceError, "no OpenCL platforms found")
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	C.clGetPlatformIDs(numPlatforms, &platforms[0], nil)

	var infos []device.Info
	for pi, plat := range platforms {
		var numDevices C.cl_uint
		if C.clGetDeviceIDs(plat, C.CL_DEVICE_TYPE_ALL, 0, nil, &numDevices) != C.CL_SUCCESS || numDevices == 0 {
			continue
		}
		devices := make([]C.cl_device_id, numDevices)
		C.clGetDeviceIDs(plat, C.CL_DEVICE_TYPE_ALL, numDevices, &devices[0], nil)
		for di, dev := range devices {
			var nameBuf [256]C.char
			C.clGetDeviceInfo(dev, C.CL_DEVICE_NAME, 256, unsafe.Pointer(&nameBuf[0]), nil)
			infos = append(infos, device.Info{Platform: pi, Index: di, Name: C.GoString(&nameBuf[0])})
		}
	}
	return infos, nil
}

// Device drives the generate/match kernel contract of spec.md §4.4/§4.7 on
// one OpenCL device. KernelPath must name a `.cl` source file exporting
// "generate" and "match" kernels with the argument order of spec.md §4.
type Device struct {
	info    device.Info
	ctx     C.cl_context
	queue   C.cl_command_queue
	program C.cl_program
	genK    C.cl_kernel
	matchK  C.cl_kernel
	devID   C.cl_device_id

	bufTable  C.cl_mem
	bufThresh C.cl_mem
	bufPerm   C.cl_mem
	bufDict   C.cl_mem
}

// Open initializes a context, queue, and program for platform/device index
// platIdx/devIdx, building the externally supplied kernel source at
// kernelPath. table/thresholds/permutations/dict are copied into read-only
// device buffers once; the dictionary index's flag column is the only
// buffer region a kernel is allowed to mutate (spec.md §4.7).
func Open(platIdx, devIdx int, kernelPath string, table *markov.Table, thresholds *markov.Thresholds, maxLength int, perm *markov.Permutations, dict *dictionary.Index) (*Device, error) {
	var numPlatforms C.cl_uint
	if C.clGetPlatformIDs(0, nil, &numPlatforms) != C.CL_SUCCESS || int(numPlatforms) <= platIdx {
		return nil, errext.New(errext.DeviceError, "requested OpenCL platform not found")
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	C.clGetPlatformIDs(numPlatforms, &platforms[0], nil)
	plat := platforms[platIdx]

	var numDevices C.cl_uint
	if C.clGetDeviceIDs(plat, C.CL_DEVICE_TYPE_ALL, 0, nil, &numDevices) != C.CL_SUCCESS || int(numDevices) <= devIdx {
		return nil, errext.New(errext.DeviceError, "requested OpenCL device not found")
	}
	devices := make([]C.cl_device_id, numDevices)
	C.clGetDeviceIDs(plat, C.CL_DEVICE_TYPE_ALL, numDevices, &devices[0], nil)
	devID := devices[devIdx]

	var ret C.cl_int
	ctx := C.clCreateContext(nil, 1, &devID, nil, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, errext.New(errext.DeviceError, "clCreateContext failed")
	}
	queue := C.clCreateCommandQueue(ctx, devID, 0, &ret)
	if ret != C.CL_SUCCESS {
		return nil, errext.New(errext.DeviceError, "clCreateCommandQueue failed")
	}

	source, err := os.ReadFile(kernelPath)
	if err != nil {
		return nil, errext.Wrap(errext.MissingFile, err, "reading kernel source")
	}
	src := C.CString(string(source))
	defer C.free(unsafe.Pointer(src))
	length := C.size_t(len(source))
	program := C.clCreateProgramWithSource(ctx, 1, &src, &length, &ret)
	if ret != C.CL_SUCCESS {
		return nil, errext.New(errext.DeviceError, "clCreateProgramWithSource failed")
	}
	if ret := C.clBuildProgram(program, 1, &devID, nil, nil, nil); ret != C.CL_SUCCESS {
		var logSize C.size_t
		C.clGetProgramBuildInfo(program, devID, C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
		buildLog := make([]byte, logSize)
		if logSize > 0 {
			C.clGetProgramBuildInfo(program, devID, C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&buildLog[0]), nil)
		}
		return nil, errext.New(errext.DeviceError, fmt.Sprintf("kernel build failed: %s", buildLog)).
			WithHint("check the .cl source file passed as the kernel path")
	}

	genName := C.CString("generate")
	defer C.free(unsafe.Pointer(genName))
	genK := C.clCreateKernel(program, genName, &ret)
	if ret != C.CL_SUCCESS {
		return nil, errext.New(errext.DeviceError, "generate kernel not found in program")
	}
	matchName := C.CString("match")
	defer C.free(unsafe.Pointer(matchName))
	matchK := C.clCreateKernel(program, matchName, &ret)
	if ret != C.CL_SUCCESS {
		return nil, errext.New(errext.DeviceError, "match kernel not found in program")
	}

	d := &Device{
		ctx: ctx, queue: queue, program: program, genK: genK, matchK: matchK, devID: devID,
		info: device.Info{Platform: platIdx, Index: devIdx},
	}
	if err := d.uploadStaticBuffers(table, thresholds, maxLength, perm, dict); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) uploadStaticBuffers(table *markov.Table, thresholds *markov.Thresholds, maxLength int, perm *markov.Permutations, dict *dictionary.Index) error {
	var ret C.cl_int
	alloc := func(data []byte, flags C.cl_mem_flags) (C.cl_mem, error) {
		var ptr unsafe.Pointer
		if len(data) > 0 {
			ptr = unsafe.Pointer(&data[0])
		}
		buf := C.clCreateBuffer(d.ctx, flags|C.CL_MEM_COPY_HOST_PTR, C.size_t(len(data)), ptr, &ret)
		if ret != C.CL_SUCCESS {
			return nil, errext.New(errext.DeviceError, "clCreateBuffer failed")
		}
		return buf, nil
	}

	var err error
	if d.bufTable, err = alloc(table.Flat(), C.CL_MEM_READ_ONLY); err != nil {
		return err
	}
	if d.bufThresh, err = alloc(thresholds.Bytes(maxLength), C.CL_MEM_READ_ONLY); err != nil {
		return err
	}
	if d.bufPerm, err = alloc(perm.Bytes(), C.CL_MEM_READ_ONLY); err != nil {
		return err
	}
	if d.bufDict, err = alloc(dict.Flat(), C.CL_MEM_READ_WRITE); err != nil {
		return err
	}
	return nil
}

func (d *Device) Info() device.Info { return d.info }

// Generate enqueues the generate kernel over buf.Count() work-items,
// writing candidates starting at global index start, then reads the
// candidate buffer back into buf.
func (d *Device) Generate(buf *device.CandidateBuffer, codec *markov.Codec, start uint64) error {
	flat := buf.Flat()
	candBuf := C.clCreateBuffer(d.ctx, C.CL_MEM_READ_WRITE, C.size_t(len(flat)), nil, nil)
	defer C.clReleaseMemObject(candBuf)

	startArg := C.cl_ulong(start)
	entryWidth := C.cl_uint(buf.EntryWidth())
	C.clSetKernelArg(d.genK, 0, C.size_t(unsafe.Sizeof(candBuf)), unsafe.Pointer(&candBuf))
	C.clSetKernelArg(d.genK, 1, C.size_t(unsafe.Sizeof(d.bufTable)), unsafe.Pointer(&d.bufTable))
	C.clSetKernelArg(d.genK, 2, C.size_t(unsafe.Sizeof(d.bufThresh)), unsafe.Pointer(&d.bufThresh))
	C.clSetKernelArg(d.genK, 3, C.size_t(unsafe.Sizeof(d.bufPerm)), unsafe.Pointer(&d.bufPerm))
	C.clSetKernelArg(d.genK, 4, C.size_t(unsafe.Sizeof(startArg)), unsafe.Pointer(&startArg))
	C.clSetKernelArg(d.genK, 5, C.size_t(unsafe.Sizeof(entryWidth)), unsafe.Pointer(&entryWidth))

	globalSize := C.size_t(buf.Count())
	if ret := C.clEnqueueNDRangeKernel(d.queue, d.genK, 1, nil, &globalSize, nil, 0, nil, nil); ret != C.CL_SUCCESS {
		return errext.New(errext.DeviceError, "generate kernel launch failed")
	}
	if ret := C.clEnqueueReadBuffer(d.queue, candBuf, C.CL_TRUE, 0, C.size_t(len(flat)), unsafe.Pointer(&flat[0]), 0, nil, nil); ret != C.CL_SUCCESS {
		return errext.New(errext.DeviceError, "reading candidate buffer failed")
	}
	return nil
}

// Match enqueues the match kernel over buf.Count() work-items against the
// device's dictionary buffer, then reads the flag column back into idx.
func (d *Device) Match(buf *device.CandidateBuffer, idx *dictionary.Index) error {
	flat := buf.Flat()
	candBuf := C.clCreateBuffer(d.ctx, C.CL_MEM_READ_ONLY|C.CL_MEM_COPY_HOST_PTR, C.size_t(len(flat)), unsafe.Pointer(&flat[0]), nil)
	defer C.clReleaseMemObject(candBuf)

	rows, ents, size := idx.Dims()
	rowsArg, entsArg, sizeArg := C.cl_uint(rows), C.cl_uint(ents), C.cl_uint(size)
	C.clSetKernelArg(d.matchK, 0, C.size_t(unsafe.Sizeof(candBuf)), unsafe.Pointer(&candBuf))
	C.clSetKernelArg(d.matchK, 1, C.size_t(unsafe.Sizeof(d.bufDict)), unsafe.Pointer(&d.bufDict))
	C.clSetKernelArg(d.matchK, 2, C.size_t(unsafe.Sizeof(rowsArg)), unsafe.Pointer(&rowsArg))
	C.clSetKernelArg(d.matchK, 3, C.size_t(unsafe.Sizeof(entsArg)), unsafe.Pointer(&entsArg))
	C.clSetKernelArg(d.matchK, 4, C.size_t(unsafe.Sizeof(sizeArg)), unsafe.Pointer(&sizeArg))

	globalSize := C.size_t(buf.Count())
	if ret := C.clEnqueueNDRangeKernel(d.queue, d.matchK, 1, nil, &globalSize, nil, 0, nil, nil); ret != C.CL_SUCCESS {
		return errext.New(errext.DeviceError, "match kernel launch failed")
	}

	dictFlat := idx.Flat()
	if ret := C.clEnqueueReadBuffer(d.queue, d.bufDict, C.CL_TRUE, 0, C.size_t(len(dictFlat)), unsafe.Pointer(&dictFlat[0]), 0, nil, nil); ret != C.CL_SUCCESS {
		return errext.New(errext.DeviceError, "reading dictionary flags failed")
	}
	return nil
}

// Close releases every OpenCL resource this device holds. Safe to call
// more than once.
func (d *Device) Close() error {
	if d.bufTable != nil {
		C.clReleaseMemObject(d.bufTable)
		d.bufTable = nil
	}
	if d.bufThresh != nil {
		C.clReleaseMemObject(d.bufThresh)
		d.bufThresh = nil
	}
	if d.bufPerm != nil {
		C.clReleaseMemObject(d.bufPerm)
		d.bufPerm = nil
	}
	if d.bufDict != nil {
		C.clReleaseMemObject(d.bufDict)
		d.bufDict = nil
	}
	if d.genK != nil {
		C.clReleaseKernel(d.genK)
		d.genK = nil
	}
	if d.matchK != nil {
		C.clReleaseKernel(d.matchK)
		d.matchK = nil
	}
	if d.program != nil {
		C.clReleaseProgram(d.program)
		d.program = nil
	}
	if d.queue != nil {
		C.clReleaseCommandQueue(d.queue)
		d.queue = nil
	}
	if d.ctx != nil {
		C.clReleaseContext(d.ctx)
		d.ctx = nil
	}
	return nil
}
