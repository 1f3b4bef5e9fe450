package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
)

// FormatVersion is written into every saved room.
const FormatVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported file version")

type savedRoom struct {
	Version int `json:"version"`
	board.Snapshot
}

// Save writes s as indented JSON.
func Save(w io.Writer, s board.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(savedRoom{Version: FormatVersion, Snapshot: s}); err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	return nil
}

// Load reads a room written by Save.
func Load(r io.Reader) (board.Snapshot, error) {
	var saved savedRoom
	if err := json.NewDecoder(r).Decode(&saved); err != nil {
		return board.Snapshot{}, fmt.Errorf("decode room: %w", err)
	}
	if saved.Version != FormatVersion {
		return board.Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, saved.Version)
	}
	return saved.Snapshot, nil
}

// SaveFile writes s to path, replacing any existing file.
func SaveFile(path string, s board.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Save(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a room saved at path.
func LoadFile(path string) (board.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
