package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Stores the document as a JSON file.
type Filesystem struct {
	Path string
}

func NewFilesystem(path string) *Filesystem {
	return &Filesystem{Path: path}
}

func (f *Filesystem) Load() (*Document, error) {
	_, err := os.Stat(f.Path)
	if os.IsNotExist(err) {
		return NewDocument(), nil
	}

	buf, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	doc := NewDocument()
	err = json.Unmarshal(buf, doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}

	return doc, nil
}

// Writes via a temporary file in the same directory, so that a crash
// mid-write doesn't leave a truncated document behind. The directory
// is created if missing.
func (f *Filesystem) Save(doc *Document) error {
	buf, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling: %w", err)
	}

	dir := filepath.Dir(f.Path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(buf)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("closing: %w", err)
	}

	err = os.Rename(tmp.Name(), f.Path)
	if err != nil {
		return fmt.Errorf("renaming: %w", err)
	}

	return nil
}
