package orchestrator

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/host"
	"golang.org/x/xerrors"
)

// runOnHost gives hostID a start-host/stop-host/pause-host/step-host
// command, per the original's _command: a per-host config snapshot
// (with runtime.id.id_host overridden to hostID) is produced, then
// either run directly (hostID == "localhost", sharing the
// orchestrator's filesystem, so a temp-file path suffices) or shipped
// over `ssh <run_account>@<hostname> "<binary> host <command> <inline-snapshot>"`
// with the config embedded inline in the command string - a remote
// host has no access to the orchestrator's temp directory, so this
// follows the original's _command embedding cfg_encoded directly
// rather than a path.
func runOnHost(c *cfg.Config, hostID, command string) error {
	perHost := c.Clone()
	perHost.Runtime.IDHost = hostID

	self, err := os.Executable()
	if err != nil {
		return xerrors.Errorf("resolving executable: %w", err)
	}

	if hostID == localHostID {
		snapshotPath, err := host.WriteSnapshot(perHost)
		if err != nil {
			return xerrors.Errorf("preparing command for host %q: %w", hostID, err)
		}
		cmd := exec.Command(self, "host", command, snapshotPath)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}

	h, ok := c.Host[hostID]
	if !ok {
		return xerrors.Errorf("host %q not found in config", hostID)
	}

	snapshot, err := host.EncodeSnapshotInline(perHost)
	if err != nil {
		return xerrors.Errorf("preparing command for host %q: %w", hostID, err)
	}

	remoteCmd := fmt.Sprintf("%s host %s %s", self, command, snapshot)
	target := fmt.Sprintf("%s@%s", h.RunAccount, h.Hostname)
	cmd := exec.Command("ssh", target, remoteCmd)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
