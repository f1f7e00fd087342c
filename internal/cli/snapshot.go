package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Snapshot is the JSON document written by the save command.
type Snapshot struct {
	Mode     string          `json:"mode"`
	Capacity int             `json:"capacity"`
	Count    int             `json:"count"`
	Slots    []SnapshotEntry `json:"slots"`
}

// SnapshotEntry is one occupied slot, in storage order.
type SnapshotEntry struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

func takeSnapshot(t table) Snapshot {
	snap := Snapshot{
		Mode:     t.mode(),
		Capacity: t.capacity(),
		Count:    t.count(),
		Slots:    []SnapshotEntry{},
	}

	for i, v := range t.entries() {
		snap.Slots = append(snap.Slots, SnapshotEntry{Index: int(i), Value: v})
	}

	return snap
}

// writeSnapshot replaces path with the encoded snapshot. Readers see either
// the old file or the complete new one.
func writeSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	data = append(data, '\n')

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	return nil
}
