package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/anatolykoptev/go_dyut/internal/engine"
)

// JSONFile keeps all records as one JSON array in a file. Writes go to a
// temp file that is renamed over the original.
type JSONFile struct {
	path     string
	mu       sync.Mutex
	readFile func(string) ([]byte, error)
}

// OpenJSONFile creates the file (and its directory) if missing.
func OpenJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, errors.New("store: json file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}
	s := &JSONFile{path: path, readFile: os.ReadFile}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// load reads all records. A missing or corrupt file reads as empty; any
// other read failure is returned so callers never write over the file.
func (s *JSONFile) load() ([]*engine.Record, error) {
	data, err := s.readFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read history: %w", err)
	}
	var records []*engine.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("store: history file unreadable, treating as empty", slog.String("path", s.path), slog.Any("error", err))
		return nil, nil
	}
	return records, nil
}

func (s *JSONFile) write(records []*engine.Record) error {
	if records == nil {
		records = []*engine.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode history: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: write history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write history: %w", err)
	}
	return nil
}

func (s *JSONFile) Save(_ context.Context, r *engine.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return "", err
	}
	stamp(r)
	if err := s.write(append(records, r)); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *JSONFile) Get(_ context.Context, id string) (*engine.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, engine.ErrNotFound
}

func (s *JSONFile) List(_ context.Context) ([]engine.Summary, error) {
	s.mu.Lock()
	records, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]engine.Summary, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i].Summarize())
	}
	return out, nil
}

func (s *JSONFile) Close() error { return nil }
