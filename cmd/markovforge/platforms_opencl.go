//go:build opencl
// +build opencl

package main

import (
	"github.com/markovforge/markovforge/device"
	"github.com/markovforge/markovforge/device/opencl"
)

func init() {
	extraPlatforms = func() []device.Info {
		infos, err := opencl.Platforms()
		if err != nil {
			return nil
		}
		return infos
	}
}
