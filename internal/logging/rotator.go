package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileRotator is an io.Writer that rotates its file once it grows past
// Config.MaxSizeBytes. Rotated files are renamed with a timestamp suffix,
// optionally gzipped, and pruned by count and age.
type FileRotator struct {
	config *Config
	mu     sync.Mutex
	file   *os.File
	size   int64
	now    func() time.Time
}

// NewFileRotator creates a new FileRotator.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	r := &FileRotator{config: cfg, now: time.Now}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := r.openFile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) openFile() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file = file
	r.size = info.Size()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.openFile(); err != nil {
			return 0, err
		}
	}

	if limit := r.config.MaxSizeBytes; limit > 0 && r.size > 0 && r.size+int64(len(p)) > limit {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate moves the current file aside and opens a fresh one.
func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close current log: %w", err)
	}
	r.file = nil

	dir, name, ext := r.parts()
	rotated := filepath.Join(dir, fmt.Sprintf("%s-%s%s", name, r.now().Format("20060102-150405.000"), ext))
	if err := os.Rename(r.config.FilePath, rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}

	if r.config.Compress {
		if err := compressFile(rotated); err != nil {
			return err
		}
	}
	if err := r.openFile(); err != nil {
		return err
	}
	r.cleanup()
	return nil
}

func (r *FileRotator) parts() (dir, name, ext string) {
	base := filepath.Base(r.config.FilePath)
	ext = filepath.Ext(base)
	return filepath.Dir(r.config.FilePath), strings.TrimSuffix(base, ext), ext
}

// compressFile replaces path with path.gz.
func compressFile(path string) error {
	input, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open rotated log: %w", err)
	}
	defer input.Close()

	output, err := os.Create(path + ".gz")
	if err != nil {
		return fmt.Errorf("create compressed log: %w", err)
	}

	gz := gzip.NewWriter(output)
	gz.Name = filepath.Base(path)
	if _, err := io.Copy(gz, input); err != nil {
		gz.Close()
		output.Close()
		os.Remove(path + ".gz")
		return fmt.Errorf("compress log: %w", err)
	}
	if err := gz.Close(); err != nil {
		output.Close()
		os.Remove(path + ".gz")
		return fmt.Errorf("compress log: %w", err)
	}
	if err := output.Close(); err != nil {
		return fmt.Errorf("close compressed log: %w", err)
	}
	return os.Remove(path)
}

// Backups returns the rotated files, oldest first.
func (r *FileRotator) Backups() ([]string, error) {
	dir, name, ext := r.parts()
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*"+ext+"*"))
	if err != nil {
		return nil, err
	}
	// The timestamp suffix sorts chronologically.
	sort.Strings(matches)
	return matches, nil
}

// cleanup removes rotated files beyond MaxBackups or older than MaxAgeDays.
func (r *FileRotator) cleanup() {
	files, err := r.Backups()
	if err != nil {
		return
	}
	if keep := r.config.MaxBackups; keep > 0 && len(files) > keep {
		for _, f := range files[:len(files)-keep] {
			os.Remove(f)
		}
		files = files[len(files)-keep:]
	}
	if r.config.MaxAgeDays > 0 {
		cutoff := r.now().AddDate(0, 0, -r.config.MaxAgeDays)
		for _, f := range files {
			if info, err := os.Stat(f); err == nil && info.ModTime().Before(cutoff) {
				os.Remove(f)
			}
		}
	}
}

// Close closes the rotator and its underlying file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}
