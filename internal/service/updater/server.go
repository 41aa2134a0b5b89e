package updater

import (
	"context"
	"fmt"

	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

// processFinder lists running processes by executable name.
type processFinder func(names ...string) ([]common.Process, error)

// processKiller terminates processes.
type processKiller func(processes []common.Process) error

// handleRunningServer warns about, or with stop enabled kills, a running
// dedicated server before its files are replaced.
func (u *runner) handleRunningServer(ctx context.Context) error {
	executable := u.opts.DownloadType.ServerExecutable()
	if executable == "" {
		return nil
	}

	processes, err := u.findProcesses(executable)
	if err != nil {
		logger.Warnf(ctx, "Could not check for a running server: %v", err)
		return nil
	}

	if len(processes) == 0 {
		return nil
	}

	if !u.opts.StopServer {
		logger.WarnKV(ctx, "The server is running, files in use may fail to update",
			"executable", executable, "processes", len(processes))

		return nil
	}

	logger.InfoKV(ctx, "Stopping the running server", "executable", executable, "processes", len(processes))

	if err = u.killProcesses(processes); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}

	return nil
}
