package host

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/xplain-systems/xact/internal/xlog"
)

// selfPID guards against a host process signalling itself, mirroring
// the original's assert pid != os.getpid().
var selfPID = os.Getpid()

// killGraceByPrefix mirrors killGrace but for the prefix-based path,
// where stop-host runs as its own re-exec'd process with no memory of
// the start-host invocation's children.
const killGraceByPrefix = 3 * time.Second

// KillByPrefix finds every running process whose command line contains
// prefix and sends SIGTERM, then - after killGraceByPrefix, for
// whatever is still alive - SIGKILL. It is the cross-process
// counterpart to Agent.Stop: stop-host runs as an independent
// `<self> host stop-host <snapshot>` invocation with none of the
// original start-host process's in-memory child handles, so it has to
// rediscover the children to kill, exactly as the original's
// kill_process_by_prefix rediscovers them via psutil.process_iter
// rather than a shared process table.
func KillByPrefix(prefix string) error {
	pids, err := pidsFromPrefix(prefix)
	if err != nil {
		return err
	}
	xlog.Logger().Info("send SIGTERM", "n", len(pids))
	for _, pid := range pids {
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}

	time.Sleep(killGraceByPrefix)

	pids, err = pidsFromPrefix(prefix)
	if err != nil {
		return err
	}
	if len(pids) == 0 {
		return nil
	}
	xlog.Logger().Info("send SIGKILL", "n", len(pids))
	for _, pid := range pids {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
	return nil
}

// pidsFromPrefix shells out to pgrep, standing in for psutil's
// process_iter scan since the standard library has no portable way to
// enumerate other processes' command lines.
func pidsFromPrefix(prefix string) ([]int, error) {
	out, err := exec.Command("pgrep", "-f", prefix).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil // pgrep: no matches
		}
		return nil, err
	}

	var pids []int
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		pid, err := strconv.Atoi(scanner.Text())
		if err != nil {
			continue
		}
		if pid == selfPID {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
