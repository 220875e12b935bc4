package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes window stats to windows.csv in its directory.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir           string
	file          *os.File
	headerWritten bool
}

// NewOutputManager creates dir and opens windows.csv. It returns nil when
// dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		return nil, fmt.Errorf("create windows.csv: %w", err)
	}
	return &OutputManager{dir: dir, file: f}, nil
}

// WriteWindow appends one window record.
func (om *OutputManager) WriteWindow(ws WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{ws}
	if !om.headerWritten {
		if err := gocsv.Marshal(records, om.file); err != nil {
			return fmt.Errorf("write window: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.file); err != nil {
		return fmt.Errorf("write window: %w", err)
	}
	return nil
}

// Dir returns the output directory, or "" when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.file.Close()
}
