package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// TurnRecord is one row of turns.csv.
type TurnRecord struct {
	Level      string `csv:"level"`
	Turn       uint64 `csv:"turn"`
	PlayerMove string `csv:"player_move"`
	Moved      int    `csv:"moved"`
	Pushed     int    `csv:"pushed"`
	Consumed   int    `csv:"consumed"`
	Leashed    int    `csv:"leashed"`
	Entities   int    `csv:"entities"`
	State      string `csv:"state"`
}

// OutputManager appends turn records to turns.csv in the output directory.
type OutputManager struct {
	dir       string
	turnsFile *os.File

	headerWritten bool
}

// NewOutputManager opens (or creates) turns.csv under dir.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, "turns.csv")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening turns.csv: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat turns.csv: %w", err)
	}

	// an existing file already has its header
	return &OutputManager{dir: dir, turnsFile: f, headerWritten: info.Size() > 0}, nil
}

// WriteTurn appends one record to turns.csv.
func (om *OutputManager) WriteTurn(rec TurnRecord) error {
	if om == nil {
		return nil
	}

	records := []TurnRecord{rec}

	if !om.headerWritten {
		if err := gocsv.Marshal(records, om.turnsFile); err != nil {
			return fmt.Errorf("writing turn: %w", err)
		}
		om.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.turnsFile); err != nil {
			return fmt.Errorf("writing turn: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes turns.csv.
func (om *OutputManager) Close() error {
	if om == nil || om.turnsFile == nil {
		return nil
	}
	return om.turnsFile.Close()
}
