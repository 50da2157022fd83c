package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// globalState groups the process-external collaborators a run touches:
// filesystem, standard streams, and logger. Tests construct one over an
// in-memory afero.Fs instead of the real filesystem.
type globalState struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	logger *logrus.Logger
}

// newGlobalState wires a globalState to the real OS filesystem and streams.
func newGlobalState() *globalState {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	return &globalState{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logger,
	}
}
