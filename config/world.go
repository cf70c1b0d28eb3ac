package config

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lixenwraith/tankarena/core"
	"github.com/lixenwraith/tankarena/dyncolor"
	"github.com/lixenwraith/tankarena/vars"
)

// World is the TOML description of an arena: variables and dynamic colors
type World struct {
	Vars   map[string]any `toml:"vars"`
	Colors []ColorDef     `toml:"dyncolor"`
}

// ColorDef describes one dynamic color
type ColorDef struct {
	Name        string   `toml:"name"`
	Variable    string   `toml:"variable"`
	VarTiming   *float64 `toml:"var_timing"`
	VarUseAlpha bool     `toml:"var_use_alpha"`

	Red   *ChannelDef `toml:"red"`
	Green *ChannelDef `toml:"green"`
	Blue  *ChannelDef `toml:"blue"`
	Alpha *ChannelDef `toml:"alpha"`
}

// ChannelDef describes the functions of one channel
// Triples are period, offset and weight (sinusoid) or width (clamps)
type ChannelDef struct {
	Limits    []float64    `toml:"limits"`
	Sinusoid  [][]float64  `toml:"sinusoid"`
	ClampUp   [][]float64  `toml:"clampup"`
	ClampDown [][]float64  `toml:"clampdown"`
	Sequence  *SequenceDef `toml:"sequence"`
}

// SequenceDef is a stepped waveform; values are 0 (min), 1 (pass) or 2 (max)
type SequenceDef struct {
	Period float64 `toml:"period"`
	Offset float64 `toml:"offset"`
	Values []int   `toml:"values"`
}

// DecodeWorld parses a world from r; unknown keys are an error
func DecodeWorld(r io.Reader) (*World, error) {
	var w World
	md, err := toml.NewDecoder(r).Decode(&w)
	if err != nil {
		return nil, errors.Wrap(err, "decode world")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("decode world: unknown keys %s", strings.Join(keys, ", "))
	}
	return &w, nil
}

// LoadWorld reads a world file
func LoadWorld(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open world")
	}
	defer f.Close()

	w, err := DecodeWorld(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return w, nil
}

// varString renders a TOML scalar as a variable value
func varString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// ApplyVars writes the world variables into store in name order
func (w *World) ApplyVars(store *vars.Store) error {
	names := make([]string, 0, len(w.Vars))
	for name := range w.Vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := varString(w.Vars[name])
		if !ok {
			return errors.Errorf("variable %q: unsupported value %v", name, w.Vars[name])
		}
		store.Set(name, value)
	}
	return nil
}

// BuildColors creates and registers every color of the world in order
// Stops at the first invalid definition; earlier colors stay registered
func (w *World) BuildColors(m *dyncolor.Manager) error {
	for i := range w.Colors {
		def := &w.Colors[i]
		c := m.NewColor()
		if err := def.configure(c); err != nil {
			return errors.Wrapf(err, "dyncolor %d (%q)", i, def.Name)
		}
		c.Finalize()
		m.AddColor(c)
	}
	return nil
}

func (def *ColorDef) configure(c *dyncolor.DynamicColor) error {
	if def.Name != "" && !c.SetName(def.Name) {
		return errors.Errorf("invalid name %q", def.Name)
	}
	c.SetVariableName(def.Variable)
	c.SetVariableUseAlpha(def.VarUseAlpha)
	if def.VarTiming != nil {
		c.SetVariableTiming(float32(*def.VarTiming))
	}

	channels := [4]*ChannelDef{core.Red: def.Red, core.Green: def.Green, core.Blue: def.Blue, core.Alpha: def.Alpha}
	for ch, cd := range channels {
		if cd == nil {
			continue
		}
		if err := cd.configure(c, ch); err != nil {
			return errors.Wrap(err, channelName(ch))
		}
	}
	return nil
}

func channelName(ch int) string {
	return [4]string{"red", "green", "blue", "alpha"}[ch]
}

func (cd *ChannelDef) configure(c *dyncolor.DynamicColor, ch int) error {
	if cd.Limits != nil {
		if len(cd.Limits) != 2 {
			return errors.Errorf("limits need 2 values, got %d", len(cd.Limits))
		}
		c.SetLimits(ch, float32(cd.Limits[0]), float32(cd.Limits[1]))
	}

	for _, f := range cd.Sinusoid {
		if len(f) != 3 {
			return errors.Errorf("sinusoid needs period, offset, weight; got %v", f)
		}
		c.AddSinusoid(ch, float32(f[0]), float32(f[1]), float32(f[2]))
	}
	for _, f := range cd.ClampUp {
		if len(f) != 3 {
			return errors.Errorf("clampup needs period, offset, width; got %v", f)
		}
		c.AddClampUp(ch, float32(f[0]), float32(f[1]), float32(f[2]))
	}
	for _, f := range cd.ClampDown {
		if len(f) != 3 {
			return errors.Errorf("clampdown needs period, offset, width; got %v", f)
		}
		c.AddClampDown(ch, float32(f[0]), float32(f[1]), float32(f[2]))
	}

	if seq := cd.Sequence; seq != nil {
		list := make([]uint8, len(seq.Values))
		for i, v := range seq.Values {
			switch {
			case v < int(dyncolor.SeqMin):
				list[i] = dyncolor.SeqMin
			case v > int(dyncolor.SeqMax):
				list[i] = dyncolor.SeqMax
			default:
				list[i] = uint8(v)
			}
		}
		c.SetSequence(ch, float32(seq.Period), float32(seq.Offset), list)
	}
	return nil
}
