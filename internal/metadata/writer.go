package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SummaryFile is the collection-wide metadata document name.
const SummaryFile = "_metadata.json"

// Writer writes metadata documents into one directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for dir. The directory must exist.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteEdition writes <edition>.json.
func (w *Writer) WriteEdition(m Metadata) error {
	return w.write(strconv.Itoa(m.Edition)+".json", m)
}

// WriteAll writes the summary document listing every edition. Call it only
// after a complete run.
func (w *Writer) WriteAll(list []Metadata) error {
	if list == nil {
		list = []Metadata{}
	}
	return w.write(SummaryFile, list)
}

func (w *Writer) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
