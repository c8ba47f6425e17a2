package field

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileOwner is the owner name used for events loaded from a fields file.
const FileOwner = "file"

// fileDoc is the on-disk layout of a fields file:
//
//	events:
//	  spring-fair:
//	    event_start_date: "June 1, 2024 2:00 pm"
//	    event_end_date: "June 1, 2024 4:00 pm"
//	    all_day_event: ["No"]
type fileDoc struct {
	Events map[string]Fields `yaml:"events"`
}

// Decode reads a fields document.
func Decode(r io.Reader) (map[string]Fields, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Fields{}, nil
		}
		return nil, fmt.Errorf("field: decode: %w", err)
	}
	if doc.Events == nil {
		doc.Events = map[string]Fields{}
	}
	for id, fields := range doc.Events {
		if fields == nil {
			doc.Events[id] = Fields{}
		}
	}
	return doc.Events, nil
}

// LoadFile reads the fields file at path into store under FileOwner and
// returns the number of events loaded.
func LoadFile(store *MemoryStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("field: open %s: %w", path, err)
	}
	defer f.Close()

	events, err := Decode(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	store.Replace(FileOwner, events)
	return len(events), nil
}
