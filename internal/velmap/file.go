// Public domain.

package velmap

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Mfn is the default map file name.
const Mfn = "rotmap.vmap"

// WriteFile writes a prepared map as a gob encoded file.
func WriteFile(fn string, m *Map) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encoding map file: %w", err)
	}
	return f.Close()
}

// ReadFile reads a map written by WriteFile.
func ReadFile(fn string) (*Map, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m Map
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding map file %s: %w", fn, err)
	}
	if len(m.Data) != len(m.Xaxis)*len(m.Yaxis) ||
		len(m.Sigma) != len(m.Data) {
		return nil, fmt.Errorf("map file %s: grid shape does not match axes", fn)
	}
	return &m, nil
}
