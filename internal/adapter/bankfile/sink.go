package bankfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSink implements ports.SettlementFileSink on a local directory.
type LocalSink struct {
	dir string
}

func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{dir: dir}
}

// Save writes content atomically (temp file + rename) and returns the final path.
func (s *LocalSink) Save(ctx context.Context, name string, content []byte) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("bankfile: invalid file name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return final, nil
}
