// Package host gathers real-machine facts (OS, kernel release,
// architecture, logical CPU count) for the `coresched version` command.
// They do not feed the simulation's defaults and bench reports do not
// carry them. It is adapted from the teacher's host package:
// the same Reader-interface-plus-Linux-implementation shape, trimmed to
// the facts this module actually needs.
package host

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	OSReleaseFilePath = "/etc/os-release"
	UnknownKey        = "UNKNOWN"
)

// OS describes the operating system the simulation is running under.
type OS struct {
	Name    string
	Version string
}

// Facts is the full set of host information this package reports.
type Facts struct {
	OS           OS
	KernelRelease string
	Architecture string
	NumCPU       int
}

// Reader retrieves host facts.
type Reader interface {
	GetOS() (*OS, error)
	GetKernelRelease() (string, error)
	GetFacts() (*Facts, error)
}

// LinuxReader is the Linux implementation of Reader.
type LinuxReader struct{}

// NewLinuxReader returns a Reader backed by /etc/os-release and
// golang.org/x/sys/unix.Uname.
func NewLinuxReader() LinuxReader { return LinuxReader{} }

// GetOS parses /etc/os-release per the freedesktop.org specification.
func (r LinuxReader) GetOS() (*OS, error) {
	data, err := os.ReadFile(OSReleaseFilePath)
	if err != nil {
		return nil, fmt.Errorf("host: reading %s: %w", OSReleaseFilePath, err)
	}
	fields := parseOSRelease(data)
	return &OS{
		Name:    fields["NAME"],
		Version: fields["VERSION"],
	}, nil
}

// GetKernelRelease reports the running kernel's release string via
// uname(2).
func (r LinuxReader) GetKernelRelease() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("host: uname: %w", err)
	}
	return charsToString(uts.Release[:]), nil
}

// GetFacts assembles the full Facts record, falling back to UnknownKey
// fields rather than failing outright — host facts are decoration, not
// load-bearing for the simulation.
func (r LinuxReader) GetFacts() (*Facts, error) {
	f := &Facts{
		OS:           OS{Name: UnknownKey, Version: UnknownKey},
		Architecture: runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
	}
	if os, err := r.GetOS(); err == nil {
		f.OS = *os
	}
	if rel, err := r.GetKernelRelease(); err == nil {
		f.KernelRelease = rel
	} else {
		f.KernelRelease = UnknownKey
	}
	return f, nil
}

func parseOSRelease(data []byte) map[string]string {
	out := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[parts[0]] = strings.Trim(parts[1], `"`)
	}
	return out
}

func charsToString(b []byte) string {
	n := bytes.IndexByte(b, 0)
	if n == -1 {
		n = len(b)
	}
	return string(b[:n])
}
