package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deusflow/newsinsight/internal/errs"
)

// FileWriter writes each summary to a uniquely named file in Dir.
type FileWriter struct {
	Dir     string
	newName func() string
	log     *slog.Logger
}

func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{Dir: dir, newName: NewArtifactName, log: logger.With("component", "report")}
}

// Write creates the report file and returns its path. A failed write removes
// the partial file.
func (w *FileWriter) Write(ctx context.Context, s Summary) (path string, err error) {
	if err := ctx.Err(); err != nil {
		return "", errs.IO("write report", err)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", errs.IO("write report", fmt.Errorf("create report dir: %w", err))
	}

	f, path, err := w.create()
	if err != nil {
		return "", errs.IO("write report", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errs.IO("write report", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
			path = ""
		}
	}()

	if err := s.Encode(f); err != nil {
		return path, errs.IO("write report", fmt.Errorf("encode %s: %w", path, err))
	}

	w.log.Info("report written", "path", path)
	return path, nil
}

// create opens a new artifact file, drawing a second name once if the first
// is already taken.
func (w *FileWriter) create() (*os.File, string, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		path := filepath.Join(w.Dir, w.newName())
		var f *os.File
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			break
		}
		w.log.Warn("report name taken, drawing a new one", "path", path)
	}
	return nil, "", err
}

// Read loads a report from disk.
func Read(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, errs.IO("read report", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Summary{}, errs.IO("read report", err)
	}
	return s, nil
}
