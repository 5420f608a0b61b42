package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileArea stores a Record as a JSON object in a single file with 0600
// permissions. Writes go through a temporary file and a rename, so readers
// see either the old or the new contents.
type FileArea struct {
	path string
	mu   sync.Mutex
}

// NewFileArea returns an area backed by path. The file is created on the
// first write.
func NewFileArea(path string) *FileArea {
	return &FileArea{path: path}
}

// Path returns the backing file path.
func (a *FileArea) Path() string {
	return a.path
}

// Get implements Area.
func (a *FileArea) Get(ctx context.Context, keys ...string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	all, err := a.load()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return all, nil
	}
	out := make(Record, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set implements Area.
func (a *FileArea) Set(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	all, err := a.load()
	if err != nil {
		return err
	}
	for k, v := range rec {
		all[k] = v
	}
	return a.save(all)
}

func (a *FileArea) load() (Record, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Record), nil
		}
		return nil, fmt.Errorf("reading %s: %w", a.path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.path, err)
	}
	if rec == nil {
		rec = make(Record)
	}
	return rec, nil
}

func (a *FileArea) save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, a.path); err != nil {
		return fmt.Errorf("replacing %s: %w", a.path, err)
	}
	return nil
}
