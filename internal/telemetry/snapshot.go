package telemetry

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/blocklink/worldindex/internal/spatial"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a dump of blockmap occupancy at one tick.
type Snapshot struct {
	Version int    `msgpack:"version"`
	Level   string `msgpack:"level"`
	Tick    uint64 `msgpack:"tick"`
	Width   int    `msgpack:"width"`
	Height  int    `msgpack:"height"`

	// Cells holds the number of actors linked into each cell, row-major.
	Cells  []uint16     `msgpack:"cells"`
	Actors []ActorState `msgpack:"actors"`
}

// ActorState is one linked actor in a snapshot.
type ActorState struct {
	Serial uint32  `msgpack:"serial"`
	ID     uint64  `msgpack:"id"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"radius"`
	Sector int     `msgpack:"sector"` // -1 when not in a sector
	Cells  []int   `msgpack:"cells"`
}

// TakeSnapshot records the occupancy of ix. actors lists the objects to
// describe; unlinked ones are skipped.
func TakeSnapshot(ix *spatial.Index, level string, tick uint64, actors []*spatial.Actor) *Snapshot {
	g := ix.Grid()
	s := &Snapshot{
		Version: SnapshotVersion,
		Level:   level,
		Tick:    tick,
		Width:   g.Width,
		Height:  g.Height,
		Cells:   make([]uint16, g.Width*g.Height),
	}
	for cy := 0; cy < g.Height; cy++ {
		for cx := 0; cx < g.Width; cx++ {
			s.Cells[g.Index(cx, cy)] = uint16(len(ix.CellActors(cx, cy)))
		}
	}
	for _, a := range actors {
		if a.State() != spatial.Linked {
			continue
		}
		st := ActorState{
			Serial: a.Serial(),
			ID:     a.ID,
			X:      a.X.Float(),
			Y:      a.Y.Float(),
			Radius: a.Radius.Float(),
			Sector: -1,
			Cells:  ix.ActorCells(a),
		}
		if a.Flags&spatial.NoSector == 0 && a.Sector() != nil {
			st.Sector = a.Sector().Index
		}
		s.Actors = append(s.Actors, st)
	}
	return s
}

// WriteSnapshot encodes s as msgpack to path.
func WriteSnapshot(path string, s *Snapshot) error {
	raw, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var s Snapshot
	if err := msgpack.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s: version %d, want %d", path, s.Version, SnapshotVersion)
	}
	return &s, nil
}
