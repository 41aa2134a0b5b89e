//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// Process is a running process matched by executable name.
type Process struct {
	// PID is the operating system process identifier.
	PID int
	// Executable is the process executable name.
	Executable string
}

// FindProcesses lists running processes whose executable matches one of names.
// The current process is never reported.
func FindProcesses(names ...string) ([]Process, error) {
	if len(names) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name != "" {
			wanted[name] = struct{}{}
		}
	}

	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	var found []Process

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, ok := wanted[process.Executable()]; !ok {
			continue
		}

		found = append(found, Process{
			PID:        process.Pid(),
			Executable: process.Executable(),
		})
	}

	return found, nil
}

// KillProcesses forcibly terminates the given processes.
func KillProcesses(processes []Process) error {
	for _, process := range processes {
		runningProcess, err := os.FindProcess(process.PID)
		if err != nil {
			return fmt.Errorf("find process %d: %w", process.PID, err)
		}

		if err = runningProcess.Kill(); err != nil {
			return fmt.Errorf("kill %s (%d): %w", process.Executable, process.PID, err)
		}
	}

	return nil
}
