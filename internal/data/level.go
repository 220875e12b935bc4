package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// KindTemplate holds static data for a map object type.
type KindTemplate struct {
	Name   string `yaml:"name"`
	Radius int    `yaml:"radius"`
	Height int    `yaml:"height"`
	Health int    `yaml:"health"`
	Speed  int    `yaml:"speed"`  // map units per tick
	Damage int    `yaml:"damage"` // per sighted tick
	Hunter bool   `yaml:"hunter"` // searches for targets
	Team   int    `yaml:"team"`
	// Flags: no_sector, no_blockmap, fix_pos.
	Flags []string `yaml:"flags"`
}

// ThingSpawn places Count objects of a kind around (X,Y).
type ThingSpawn struct {
	Kind    string `yaml:"kind"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Count   int    `yaml:"count"`
	RandomX int    `yaml:"randomx"`
	RandomY int    `yaml:"randomy"`
	Angle   int    `yaml:"angle"` // degrees, 0 = east
}

type blockmapEntry struct {
	OrgX   int `yaml:"org_x"`
	OrgY   int `yaml:"org_y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type sectorEntry struct {
	Name    string `yaml:"name"`
	Floor   int    `yaml:"floor"`
	Ceiling int    `yaml:"ceiling"`
}

type lineEntry struct {
	V1    int      `yaml:"v1"`
	V2    int      `yaml:"v2"`
	Front int      `yaml:"front"`
	Back  *int     `yaml:"back"` // omitted for one-sided lines
	Flags []string `yaml:"flags"`
}

type polyEntry struct {
	ID    int   `yaml:"id"`
	Lines []int `yaml:"lines"`
}

type childEntry struct {
	Node      *int `yaml:"node"`
	Subsector *int `yaml:"subsector"`
}

type nodeEntry struct {
	X     int        `yaml:"x"`
	Y     int        `yaml:"y"`
	Dx    int        `yaml:"dx"`
	Dy    int        `yaml:"dy"`
	Front childEntry `yaml:"front"`
	Back  childEntry `yaml:"back"`
}

type levelFile struct {
	Name       string         `yaml:"name"`
	Blockmap   *blockmapEntry `yaml:"blockmap"`
	Vertices   [][2]int       `yaml:"vertices"`
	Sectors    []sectorEntry  `yaml:"sectors"`
	Lines      []lineEntry    `yaml:"lines"`
	Polys      []polyEntry    `yaml:"polyobjects"`
	Subsectors []int          `yaml:"subsectors"` // sector index per leaf
	Nodes      []nodeEntry    `yaml:"nodes"`
	Kinds      []KindTemplate `yaml:"kinds"`
	Things     []ThingSpawn   `yaml:"things"`
}

// LevelData is a built level plus the objects to spawn into it.
type LevelData struct {
	Name   string
	Level  *level.Level
	Kinds  map[string]*KindTemplate
	Things []ThingSpawn
}

var lineFlagNames = map[string]level.LineFlags{
	"blocking":       level.LineBlocking,
	"block_monsters": level.LineBlockMonsters,
}

// LoadLevel reads a YAML level file and compiles its blockmap.
func LoadLevel(path string) (*LevelData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	ld, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", path, err)
	}
	return ld, nil
}

// ParseLevel builds a level from YAML bytes.
func ParseLevel(raw []byte) (*LevelData, error) {
	var f levelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}

	b := level.NewBuilder()
	if bm := f.Blockmap; bm != nil {
		b.Grid(bm.OrgX, bm.OrgY, bm.Width, bm.Height)
	}
	for _, v := range f.Vertices {
		b.Vertex(v[0], v[1])
	}
	for _, s := range f.Sectors {
		b.Sector(s.Name, s.Floor, s.Ceiling)
	}
	for i, l := range f.Lines {
		var flags level.LineFlags
		for _, name := range l.Flags {
			fl, ok := lineFlagNames[name]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown flag %q", i, name)
			}
			flags |= fl
		}
		back := -1
		if l.Back != nil {
			back = *l.Back
		}
		b.Line(l.V1, l.V2, l.Front, back, flags)
	}
	for _, p := range f.Polys {
		b.Poly(p.ID, p.Lines...)
	}
	leaves := make([]level.NodeChild, len(f.Subsectors))
	for i, sec := range f.Subsectors {
		leaves[i] = b.Subsector(sec)
	}
	for i, n := range f.Nodes {
		front, err := n.Front.resolve(leaves)
		if err != nil {
			return nil, fmt.Errorf("node %d front: %w", i, err)
		}
		back, err := n.Back.resolve(leaves)
		if err != nil {
			return nil, fmt.Errorf("node %d back: %w", i, err)
		}
		b.Node(n.X, n.Y, n.Dx, n.Dy, front, back)
	}

	lvl, err := b.Build()
	if err != nil {
		return nil, err
	}

	kinds := make(map[string]*KindTemplate, len(f.Kinds))
	for i := range f.Kinds {
		k := &f.Kinds[i]
		if _, dup := kinds[k.Name]; dup {
			return nil, fmt.Errorf("duplicate kind %q", k.Name)
		}
		kinds[k.Name] = k
	}
	for i := range f.Things {
		t := &f.Things[i]
		if _, ok := kinds[t.Kind]; !ok {
			return nil, fmt.Errorf("thing %d: unknown kind %q", i, t.Kind)
		}
		if !spawnInRange(t) {
			return nil, fmt.Errorf("thing %d: coordinate (%d,%d) out of range", i, t.X, t.Y)
		}
		if t.Count <= 0 {
			t.Count = 1
		}
	}

	return &LevelData{
		Name:   f.Name,
		Level:  lvl,
		Kinds:  kinds,
		Things: f.Things,
	}, nil
}

func (c childEntry) resolve(leaves []level.NodeChild) (level.NodeChild, error) {
	switch {
	case c.Node != nil && c.Subsector != nil:
		return 0, fmt.Errorf("both node and subsector set")
	case c.Node != nil:
		return level.NodeChild(*c.Node), nil
	case c.Subsector != nil:
		if *c.Subsector < 0 || *c.Subsector >= len(leaves) {
			return 0, fmt.Errorf("subsector %d out of range", *c.Subsector)
		}
		return leaves[*c.Subsector], nil
	}
	return 0, fmt.Errorf("empty child")
}

// spawnInRange reports whether every jittered spawn point fits a Fixed.
func spawnInRange(t *ThingSpawn) bool {
	rx, ry := max(t.RandomX, 0), max(t.RandomY, 0)
	return geom.InRange(t.X-rx) && geom.InRange(t.X+rx) &&
		geom.InRange(t.Y-ry) && geom.InRange(t.Y+ry)
}

// SpawnCount is the total number of objects the level spawns.
func (d *LevelData) SpawnCount() int {
	n := 0
	for _, t := range d.Things {
		n += t.Count
	}
	return n
}
