package xlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// maxLogBytes mirrors the original's logger.add(..., rotation = '100 MB').
const maxLogBytes = 100 * 1024 * 1024

// rotatingFile is a size-rotating io.Writer: once the file at path would
// exceed maxLogBytes, the current file is renamed aside with a
// timestamp suffix and a fresh empty file is opened in its place. No
// example repo in this retrieval carries a log-rotation dependency
// (logrus itself does not rotate), so this is implemented directly on
// os.File rather than against a third-party writer.
type rotatingFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
	size int64
}

func openRotatingFile(path string) (*rotatingFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &rotatingFile{path: path, f: f, size: info.Size()}, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size > 0 && r.size+int64(len(p)) > maxLogBytes {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return err
	}
	rotated := fmt.Sprintf("%s.%s", r.path, time.Now().UTC().Format("20060102T150405.000000000"))
	if err := os.Rename(r.path, rotated); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	r.f = f
	r.size = 0
	return nil
}
