package host

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"io"
	"os"
	"strings"

	"github.com/xplain-systems/xact/cfg"
	"golang.org/x/xerrors"
)

func init() {
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
}

// inlinePrefix marks a snapshot argument as a self-contained
// base64-encoded payload rather than a filesystem path, so a command
// string can carry the whole config across an ssh hop to a host that
// does not share the orchestrator's filesystem.
const inlinePrefix = "inline:"

// WriteSnapshot gob-encodes c to a fresh temp file and returns its path
// - the pipe a re-exec'd child process reads its wiring over, standing
// in for the original's in-memory multiprocessing.Process argument
// passing across the OS-process boundary Go forces onto us. It is only
// usable when the reader shares the writer's filesystem (same-host
// child processes); for a genuinely remote host, use EncodeSnapshotInline
// instead.
//
// gob only carries exported fields, so Config's unexported
// denormalization bookkeeping (denormalized, Edge.hasEdgeIdx) does not
// survive the round trip; LoadSnapshot re-runs cfg.Denormalize, which
// is idempotent, to restore it.
func WriteSnapshot(c *cfg.Config) (string, error) {
	f, err := os.CreateTemp("", "xact-cfg-*.gob")
	if err != nil {
		return "", xerrors.Errorf("creating config snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(c); err != nil {
		return "", xerrors.Errorf("encoding config snapshot: %w", err)
	}
	return f.Name(), nil
}

// EncodeSnapshotInline gob-encodes then base64-encodes c into a single
// token safe to embed as a shell command argument, standing in for the
// original's _command() embedding a serialized config directly in the
// ssh command string rather than relying on a path the remote host
// could never resolve.
func EncodeSnapshotInline(c *cfg.Config) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return "", xerrors.Errorf("encoding inline config snapshot: %w", err)
	}
	return inlinePrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// LoadSnapshot reads a config snapshot - either a path written by
// WriteSnapshot or a token produced by EncodeSnapshotInline - and
// restores its denormalized derived fields.
func LoadSnapshot(snapshot string) (*cfg.Config, error) {
	var r io.Reader
	if rest, ok := strings.CutPrefix(snapshot, inlinePrefix); ok {
		raw, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, xerrors.Errorf("decoding inline config snapshot: %w", err)
		}
		r = bytes.NewReader(raw)
	} else {
		f, err := os.Open(snapshot)
		if err != nil {
			return nil, xerrors.Errorf("opening config snapshot %q: %w", snapshot, err)
		}
		defer f.Close()
		r = f
	}

	var c cfg.Config
	if err := gob.NewDecoder(r).Decode(&c); err != nil {
		return nil, xerrors.Errorf("decoding config snapshot: %w", err)
	}

	out, err := cfg.Denormalize(&c)
	if err != nil {
		return nil, xerrors.Errorf("re-denormalizing config snapshot: %w", err)
	}
	return out, nil
}
