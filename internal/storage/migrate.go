package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/dropnote/internal/apperr"
)

// MigrateData copies every note file and state.json from src to dst,
// overwriting files already in dst. The source is never modified.
//
// Copies go into a staging directory inside dst first; files are renamed
// into place only once every copy succeeded. Files a commit replaces are
// kept aside until it finishes, so any failure leaves dst as it was. Returns nil without touching anything when src and dst are the
// same directory.
func (f *FS) MigrateData(src, dst string) error {
	src, err := filepath.Abs(expandHome(src))
	if err != nil {
		return fmt.Errorf("%w: resolve source: %w", apperr.ErrMigration, err)
	}
	dst, err = filepath.Abs(expandHome(dst))
	if err != nil {
		return fmt.Errorf("%w: resolve destination: %w", apperr.ErrMigration, err)
	}
	if src == dst {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(dst, notesDirName), 0o755); err != nil {
		return fmt.Errorf("%w: create destination: %w", apperr.ErrMigration, err)
	}
	staging, err := os.MkdirTemp(dst, ".dropnote-migrate-*")
	if err != nil {
		return fmt.Errorf("%w: create staging: %w", apperr.ErrMigration, err)
	}
	defer os.RemoveAll(staging)

	staged, err := stage(src, staging)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrMigration, err)
	}

	if err := f.commit(staging, dst, staged); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrMigration, err)
	}

	f.logger.Info("storage: migrated data",
		slog.String("from", src),
		slog.String("to", dst),
		slog.Int("files", len(staged)))
	return nil
}

// rename is swapped in tests to fail a commit partway.
var rename = os.Rename

// commit moves the staged files into dst. Existing destination files are
// moved into staging/backup first and restored if a later rename fails.
func (f *FS) commit(staging, dst string, staged []string) error {
	backup := filepath.Join(staging, "backup")
	if err := os.MkdirAll(filepath.Join(backup, notesDirName), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	type moved struct {
		rel      string
		replaced bool
	}
	var done []moved
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			m := done[i]
			target := filepath.Join(dst, m.rel)
			if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
				f.logger.Warn("storage: rollback remove failed",
					slog.String("path", target), slog.String("error", err.Error()))
			}
			if m.replaced {
				if err := rename(filepath.Join(backup, m.rel), target); err != nil {
					f.logger.Warn("storage: rollback restore failed",
						slog.String("path", target), slog.String("error", err.Error()))
				}
			}
		}
	}

	for _, rel := range staged {
		target := filepath.Join(dst, rel)
		m := moved{rel: rel}
		if _, err := os.Lstat(target); err == nil {
			if err := rename(target, filepath.Join(backup, rel)); err != nil {
				rollback()
				return fmt.Errorf("set aside %s: %w", rel, err)
			}
			m.replaced = true
		}
		if err := rename(filepath.Join(staging, rel), target); err != nil {
			if m.replaced {
				_ = rename(filepath.Join(backup, rel), target)
			}
			rollback()
			return fmt.Errorf("commit %s: %w", rel, err)
		}
		done = append(done, m)
	}
	return nil
}

// stage copies the migratable files of src into staging and returns their
// paths relative to the data directory.
func stage(src, staging string) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(staging, notesDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create staging notes: %w", err)
	}

	var staged []string

	entries, err := os.ReadDir(filepath.Join(src, notesDirName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("list source notes: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || isTempName(e.Name()) {
			continue
		}
		rel := filepath.Join(notesDirName, e.Name())
		if err := copyFile(filepath.Join(src, rel), filepath.Join(staging, rel)); err != nil {
			return nil, err
		}
		staged = append(staged, rel)
	}

	statePath := filepath.Join(src, stateFileName)
	if _, err := os.Stat(statePath); err == nil {
		if err := copyFile(statePath, filepath.Join(staging, stateFileName)); err != nil {
			return nil, err
		}
		staged = append(staged, stateFileName)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat source state: %w", err)
	}

	return staged, nil
}
