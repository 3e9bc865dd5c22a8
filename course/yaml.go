package course

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed example.yaml
var exampleYAML []byte

// fileCourse is the on-disk YAML layout of a Course.
type fileCourse struct {
	Start      Point          `yaml:"start"`
	Final      Point          `yaml:"final"`
	Speed      float64        `yaml:"speed"`
	TimeBudget float64        `yaml:"time_budget"`
	Tables     []fileTable    `yaml:"tables,omitempty"`
	Obstacles  []fileObstacle `yaml:"obstacles"`
}

// fileTable overrides the default time/points of a single obstacle type.
type fileTable struct {
	Type   ObstacleType `yaml:"type"`
	Time   *float64     `yaml:"time,omitempty"`
	Points *float64     `yaml:"points,omitempty"`
}

// fileObstacle is one catalog row; a missing exit means a point obstacle.
type fileObstacle struct {
	Type  ObstacleType `yaml:"type"`
	Entry Point        `yaml:"entry"`
	Exit  *Point       `yaml:"exit,omitempty"`
	Uses  int          `yaml:"uses"`
}

// UnmarshalYAML accepts either the numeric table index or the display name.
func (t *ObstacleType) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidObstacleType, value.Line)
	}
	if value.ShortTag() == "!!int" {
		n, err := strconv.Atoi(value.Value)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidObstacleType, value.Line, err)
		}
		*t = ObstacleType(n)

		return nil
	}
	parsed, err := ParseObstacleType(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = parsed

	return nil
}

// MarshalYAML writes the display name for known types and the raw index otherwise.
func (t ObstacleType) MarshalYAML() (interface{}, error) {
	if !t.Valid() {
		return int(t), nil
	}

	return t.String(), nil
}

// Load decodes a YAML course from r and validates it. Unknown fields are
// rejected. Tables not listed in the file keep DefaultTables values.
func Load(r io.Reader) (Course, error) {
	var fc fileCourse
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return Course{}, fmt.Errorf("%w: empty course document", ErrInvalidParameter)
		}
		return Course{}, fmt.Errorf("course: decode: %w", err)
	}

	c := Course{
		Start:      fc.Start,
		Final:      fc.Final,
		Speed:      fc.Speed,
		TimeBudget: fc.TimeBudget,
		Tables:     DefaultTables(),
		Obstacles:  make([]Obstacle, 0, len(fc.Obstacles)),
	}
	for _, ft := range fc.Tables {
		if !ft.Type.Valid() {
			return Course{}, fmt.Errorf("%w: table override for type %d", ErrInvalidObstacleType, int(ft.Type))
		}
		if ft.Time != nil {
			c.Tables.Time[ft.Type] = *ft.Time
		}
		if ft.Points != nil {
			c.Tables.Points[ft.Type] = *ft.Points
		}
	}
	for _, fo := range fc.Obstacles {
		o := Obstacle{Type: fo.Type, Entry: fo.Entry, Exit: fo.Entry, Uses: fo.Uses}
		if fo.Exit != nil {
			o.Exit = *fo.Exit
		}
		c.Obstacles = append(c.Obstacles, o)
	}

	if err := c.Validate(); err != nil {
		return Course{}, err
	}

	return c, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) (Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return Course{}, fmt.Errorf("course: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Encode writes c in the YAML layout accepted by Load. Every table entry
// is written so the document is self-contained.
func Encode(w io.Writer, c Course) error {
	fc := fileCourse{
		Start:      c.Start,
		Final:      c.Final,
		Speed:      c.Speed,
		TimeBudget: c.TimeBudget,
		Tables:     make([]fileTable, 0, NumObstacleTypes),
		Obstacles:  make([]fileObstacle, 0, len(c.Obstacles)),
	}
	var i int
	for i = 0; i < NumObstacleTypes; i++ {
		tm, pt := c.Tables.Time[i], c.Tables.Points[i]
		fc.Tables = append(fc.Tables, fileTable{Type: ObstacleType(i), Time: &tm, Points: &pt})
	}
	for _, o := range c.Obstacles {
		fo := fileObstacle{Type: o.Type, Entry: o.Entry, Uses: o.Uses}
		if o.IsLong() {
			exit := o.Exit
			fo.Exit = &exit
		}
		fc.Obstacles = append(fc.Obstacles, fo)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&fc); err != nil {
		return fmt.Errorf("course: encode: %w", err)
	}

	return enc.Close()
}

// Example returns the reference demo course: fourteen obstacles, a 30 s
// budget, speed 14.5 and the finish at (25, 52).
func Example() Course {
	c, err := Load(bytes.NewReader(exampleYAML))
	if err != nil {
		// The embedded document is part of the build.
		panic(err)
	}

	return c
}
