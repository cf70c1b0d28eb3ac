package dyncolor

import (
	"math"
	"reflect"
	"testing"

	"github.com/lixenwraith/tankarena/core"
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
)

type fakeClock struct {
	tick float64
	step float64
}

func (c *fakeClock) Tick() float64     { return c.tick }
func (c *fakeClock) StepTime() float64 { return c.step }

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func nearColor(a, b core.RGBA) bool {
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

// configured builds a color exercising every channel function
func configured() *DynamicColor {
	d := New(nil, nil)
	d.SetName("pulse")
	d.SetLimits(core.Red, 0.2, 0.9)
	d.AddSinusoid(core.Red, 2, 0.5, 0.75)
	d.AddSinusoid(core.Red, 3, 0, 0.25)
	d.AddClampUp(core.Green, 1, 0.1, 0.3)
	d.AddClampDown(core.Green, 4, 0, 1)
	d.SetSequence(core.Blue, 0.5, 0.25, []uint8{SeqMin, SeqMid, SeqMax})
	d.SetLimits(core.Alpha, 0, 1)
	d.SetSequence(core.Alpha, 1, 0, []uint8{SeqMin, SeqMax})
	d.Finalize()
	return d
}

func TestNewDefaults(t *testing.T) {
	d := New(nil, nil)
	if d.Color() != core.White {
		t.Errorf("initial color = %v, want white", d.Color())
	}
	for c := 0; c < 4; c++ {
		ch := d.Channel(c)
		if ch.Min != 0 || ch.Max != 1 {
			t.Errorf("channel %d limits = %v,%v want 0,1", c, ch.Min, ch.Max)
		}
	}
	if d.VariableTiming() != 1 {
		t.Errorf("default timing = %v, want 1", d.VariableTiming())
	}

	d.Finalize()
	d.Update(12.3)
	if d.Color() != core.White {
		t.Errorf("static color = %v, want white", d.Color())
	}
	if d.PossibleAlpha() {
		t.Errorf("static opaque color reported possible alpha")
	}
}

func TestSetName(t *testing.T) {
	d := New(nil, nil)
	if !d.SetName("beacon") || d.Name() != "beacon" {
		t.Errorf("valid name rejected")
	}
	if d.SetName("9lives") || d.Name() != "" {
		t.Errorf("digit-leading name accepted: %q", d.Name())
	}
	d.SetName("beacon")
	if d.SetName("") || d.Name() != "" {
		t.Errorf("empty name did not clear")
	}
}

func TestSetLimitsSaturates(t *testing.T) {
	d := New(nil, nil)
	d.SetLimits(core.Green, -3, 7)
	ch := d.Channel(core.Green)
	if ch.Min != 0 || ch.Max != 1 {
		t.Errorf("limits = %v,%v want 0,1", ch.Min, ch.Max)
	}
	d.SetLimits(core.Green, 1.5, -0.5)
	ch = d.Channel(core.Green)
	if ch.Min != 1 || ch.Max != 0 {
		t.Errorf("limits = %v,%v want 1,0", ch.Min, ch.Max)
	}
	// out of range channel is ignored
	d.SetLimits(7, 0.5, 0.5)
	d.AddSinusoid(-1, 1, 0, 1)
}

func TestInvalidFunctionsDropped(t *testing.T) {
	d := New(nil, nil)
	d.AddSinusoid(core.Red, 0.005, 0, 1)
	d.AddSinusoid(core.Red, 1, 0, 0)
	d.AddClampUp(core.Red, 0.001, 0, 0.5)
	d.AddClampUp(core.Red, 1, 0, 0)
	d.AddClampDown(core.Red, 1, 0, -1)
	d.SetSequence(core.Red, 0.001, 0, []uint8{SeqMax})

	ch := d.Channel(core.Red)
	if len(ch.Sinusoids)+len(ch.ClampUps)+len(ch.ClampDowns)+len(ch.Sequence.List) != 0 {
		t.Errorf("invalid entries kept: %+v", ch)
	}

	d.AddSinusoid(core.Red, MinPeriod, 0, 0.1)
	if len(d.Channel(core.Red).Sinusoids) != 1 {
		t.Errorf("sinusoid at MinPeriod rejected")
	}

	d.SetSequence(core.Red, 1, 0, []uint8{SeqMax, SeqMin})
	d.SetSequence(core.Red, 0.001, 0, []uint8{SeqMax})
	if len(d.Channel(core.Red).Sequence.List) != 0 {
		t.Errorf("invalid SetSequence did not clear previous sequence")
	}
}

func TestChannelCopyDoesNotAlias(t *testing.T) {
	d := configured()
	ch := d.Channel(core.Blue)
	ch.Sequence.List[0] = SeqMax
	if d.Channel(core.Blue).Sequence.List[0] != SeqMin {
		t.Errorf("Channel returned aliased sequence")
	}
}

func TestSequenceWrap(t *testing.T) {
	d := New(nil, nil)
	d.SetSequence(core.Red, 1, 0, []uint8{SeqMin, SeqMax, SeqMid})
	d.Finalize()

	for _, ts := range []float64{0, 0.25, 1.5, 2.75, -0.4, -2.2} {
		d.Update(ts)
		a := d.Color()
		d.Update(ts + 3)
		b := d.Color()
		if a != b {
			t.Errorf("t=%v: color %v differs from one cycle later %v", ts, a, b)
		}
	}

	d.Update(0.5)
	if d.Color()[core.Red] != 0 {
		t.Errorf("min symbol red = %v, want 0", d.Color()[core.Red])
	}
	d.Update(1.5)
	if d.Color()[core.Red] != 1 {
		t.Errorf("max symbol red = %v, want 1", d.Color()[core.Red])
	}
	// negative time lands on the last symbol of the previous cycle
	d.Update(-0.5)
	if d.Color()[core.Red] != 1 {
		t.Errorf("mid symbol without sinusoids red = %v, want static 1", d.Color()[core.Red])
	}
	d.Update(-1.5)
	if d.Color()[core.Red] != 1 {
		t.Errorf("t=-1.5 red = %v, want max symbol 1", d.Color()[core.Red])
	}
}

func TestWrapStaysInRange(t *testing.T) {
	for _, v := range []float64{-0.5, -1, -1e-12, -7.25, 0, 0.999, 1, 3.5} {
		w := wrap(v, 1)
		if w < 0 || w >= 1 {
			t.Errorf("wrap(%v, 1) = %v outside [0,1)", v, w)
		}
	}
	if w := wrap(-0.5, 1); w != 0.5 {
		t.Errorf("wrap(-0.5, 1) = %v, want floored 0.5", w)
	}
}

func TestClampNegativeTime(t *testing.T) {
	d := New(nil, nil)
	d.SetLimits(core.Red, 0.25, 0.75)
	d.AddClampUp(core.Red, 1, 0, 0.3)
	d.Finalize()

	tests := []struct {
		t      float64
		active bool
	}{
		{-0.8, true},  // wraps to 0.2
		{-0.5, false}, // wraps to 0.5
		{-1, true},    // wraps to 0
		{0.1, true},
		{0.4, false},
		{5.05, true},
	}
	// an always-on clamp-down makes the clamp-up window observable as a tie
	d.AddClampDown(core.Red, 1, 0, 1)
	for _, tt := range tests {
		d.Update(tt.t)
		got := d.Color()[core.Red]
		want := float32(0.25)
		if tt.active {
			want = 0.5 // tie between up and down
		}
		if !near(got, want) {
			t.Errorf("t=%v: red = %v, want %v (active=%v)", tt.t, got, want, tt.active)
		}
	}
}

func TestClampPriority(t *testing.T) {
	d := New(nil, nil)
	d.AddClampUp(core.Green, 2, 0, 0.5)
	d.AddSinusoid(core.Green, 1, 0, 1)
	d.Finalize()

	d.Update(0.25)
	if d.Color()[core.Green] != 1 {
		t.Errorf("clamp-up should override sinusoid, got %v", d.Color()[core.Green])
	}
	d.Update(1.5)
	if !near(d.Color()[core.Green], 0) {
		t.Errorf("sinusoid trough green = %v, want 0", d.Color()[core.Green])
	}
}

func TestSequenceOverridesOtherFunctions(t *testing.T) {
	d := New(nil, nil)
	d.AddSinusoid(core.Blue, 1, 0, 1)
	d.AddClampUp(core.Blue, 1, 0, 1)
	d.SetSequence(core.Blue, 1, 0, []uint8{SeqMin, SeqMin})
	d.Finalize()

	for _, ts := range []float64{0, 0.3, 0.9, 1.4} {
		d.Update(ts)
		if d.Color()[core.Blue] != 0 {
			t.Errorf("t=%v: blue = %v, want sequence min 0", ts, d.Color()[core.Blue])
		}
	}

	// a mid symbol falls through to sinusoids, never to clamps
	d.SetSequence(core.Blue, 1, 0, []uint8{SeqMid})
	d.Update(0.5)
	if !near(d.Color()[core.Blue], 0) {
		t.Errorf("mid symbol blue = %v, want sinusoid trough 0", d.Color()[core.Blue])
	}
}

func TestSinusoid(t *testing.T) {
	d := New(nil, nil)
	d.SetLimits(core.Red, 0.2, 0.6)
	d.AddSinusoid(core.Red, 2, 0, 1)
	d.Finalize()

	tests := []struct {
		t    float64
		want float32
	}{
		{0, 0.6},
		{1, 0.2},
		{0.5, 0.4},
		{-1, 0.2},
		{4, 0.6},
	}
	for _, tt := range tests {
		d.Update(tt.t)
		if got := d.Color()[core.Red]; !near(got, tt.want) {
			t.Errorf("t=%v: red = %v, want %v", tt.t, got, tt.want)
		}
	}

	// summed weights saturate
	d.AddSinusoid(core.Red, 2, 0, 1)
	d.Update(0)
	if got := d.Color()[core.Red]; !near(got, 0.6) {
		t.Errorf("saturated red = %v, want 0.6", got)
	}
}

func TestFinalizeAlphaClassification(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *DynamicColor)
		want  bool
	}{
		{"default opaque", func(d *DynamicColor) {}, false},
		{"opaque limits with functions", func(d *DynamicColor) {
			d.SetLimits(core.Alpha, 1, 1)
			d.AddSinusoid(core.Alpha, 1, 0, 1)
		}, false},
		{"transparency toggle", func(d *DynamicColor) {
			d.SetSequence(core.Alpha, 1, 0, []uint8{SeqMin, SeqMax, SeqMin, SeqMax})
		}, false},
		{"translucent midpoint", func(d *DynamicColor) {
			d.SetSequence(core.Alpha, 1, 0, []uint8{SeqMin, SeqMid, SeqMax})
		}, true},
		{"toggle with narrowed limits", func(d *DynamicColor) {
			d.SetLimits(core.Alpha, 0, 0.8)
			d.SetSequence(core.Alpha, 1, 0, []uint8{SeqMin, SeqMax})
		}, true},
		{"static translucent max", func(d *DynamicColor) {
			d.SetLimits(core.Alpha, 0, 0.5)
		}, true},
		{"sinusoid alpha", func(d *DynamicColor) {
			d.AddSinusoid(core.Alpha, 1, 0, 1)
		}, true},
		{"midpoint on another channel", func(d *DynamicColor) {
			d.SetSequence(core.Red, 1, 0, []uint8{SeqMid})
			d.SetSequence(core.Alpha, 1, 0, []uint8{SeqMin, SeqMax})
		}, false},
		{"variable without alpha", func(d *DynamicColor) {
			d.SetVariableName("_tint")
			d.AddSinusoid(core.Alpha, 1, 0, 1)
		}, false},
		{"variable with alpha", func(d *DynamicColor) {
			d.SetVariableName("_tint")
			d.SetVariableUseAlpha(true)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(nil, nil)
			tt.setup(d)
			d.Finalize()
			if d.PossibleAlpha() != tt.want {
				t.Errorf("PossibleAlpha = %v, want %v", d.PossibleAlpha(), tt.want)
			}
		})
	}
}

func TestFinalizeSanitizesAndIsIdempotent(t *testing.T) {
	d := New(nil, nil)
	d.SetSequence(core.Green, 1, 0, []uint8{5, 200, SeqMid})
	d.SetSequence(core.Alpha, 1, 0, []uint8{SeqMax, 9})
	d.Finalize()

	if got := d.Channel(core.Green).Sequence.List; !reflect.DeepEqual(got, []uint8{SeqMax, SeqMin, SeqMid}) {
		t.Errorf("sanitized green = %v", got)
	}
	first := d.PossibleAlpha()
	firstAlpha := d.Channel(core.Alpha).Sequence.List

	d.Finalize()
	if d.PossibleAlpha() != first {
		t.Errorf("second Finalize changed PossibleAlpha")
	}
	if !reflect.DeepEqual(d.Channel(core.Alpha).Sequence.List, firstAlpha) {
		t.Errorf("second Finalize changed sequence")
	}
}

func TestPackRoundTrip(t *testing.T) {
	colors := []*DynamicColor{New(nil, nil), configured()}

	bound := New(nil, nil)
	bound.SetName("team")
	bound.SetVariableName("_teamColor")
	bound.SetVariableTiming(2.5)
	bound.SetVariableUseAlpha(true)
	bound.Finalize()
	colors = append(colors, bound)

	for _, src := range colors {
		buf := src.Pack(nil)
		if len(buf) != src.PackSize() {
			t.Errorf("%q: PackSize = %d, packed %d bytes", src.Name(), src.PackSize(), len(buf))
		}

		dst := New(nil, nil)
		r := network.NewReader(buf)
		if err := dst.Unpack(r); err != nil {
			t.Fatalf("%q: Unpack failed: %v", src.Name(), err)
		}
		if r.Len() != 0 {
			t.Errorf("%q: %d trailing bytes", src.Name(), r.Len())
		}

		if dst.Name() != src.Name() || dst.VariableName() != src.VariableName() ||
			dst.VariableTiming() != src.VariableTiming() || dst.VariableUseAlpha() != src.VariableUseAlpha() {
			t.Errorf("%q: header fields differ after round trip", src.Name())
		}
		for c := 0; c < 4; c++ {
			if !reflect.DeepEqual(dst.Channel(c), src.Channel(c)) {
				t.Errorf("%q: channel %d = %+v, want %+v", src.Name(), c, dst.Channel(c), src.Channel(c))
			}
		}
		if dst.PossibleAlpha() != src.PossibleAlpha() {
			t.Errorf("%q: PossibleAlpha not recomputed on unpack", src.Name())
		}
	}
}

func TestUnpackTruncated(t *testing.T) {
	src := configured()
	buf := src.Pack(nil)

	for _, n := range []int{0, 3, len(buf) / 2, len(buf) - 1} {
		dst := New(nil, nil)
		dst.SetName("keep")
		if err := dst.Unpack(network.NewReader(buf[:n])); err == nil {
			t.Errorf("Unpack of %d/%d bytes succeeded", n, len(buf))
		}
		if dst.Name() != "keep" {
			t.Errorf("failed Unpack modified the color")
		}
	}
}

func TestUnpackRejectsHugeCount(t *testing.T) {
	buf := network.PackString(nil, "")
	buf = network.PackString(buf, "")
	buf = network.PackUint8(buf, 0)
	buf = network.PackFloat32(buf, 1)
	buf = network.PackFloat32(buf, 0)
	buf = network.PackFloat32(buf, 1)
	buf = network.PackUint32(buf, 0xFFFFFFF0)

	if err := New(nil, nil).Unpack(network.NewReader(buf)); err == nil {
		t.Fatal("Unpack accepted a sinusoid count larger than the input")
	}
}

func TestVariableBinding(t *testing.T) {
	store := vars.NewStore()
	clock := &fakeClock{tick: 10}
	store.Set("_tint", "red")

	d := New(store, clock)
	d.SetVariableName("_tint")
	d.SetVariableTiming(1)
	d.AddSinusoid(core.Red, 1, 0, 1) // ignored while bound
	d.Finalize()

	d.Update(0)
	if !nearColor(d.Color(), core.RGBA{1, 0, 0, 1}) {
		t.Fatalf("initial bound color = %v, want red", d.Color())
	}
	if store.WatcherCount("_tint") != 1 {
		t.Fatalf("bound color did not subscribe")
	}

	store.Set("_tint", "blue@2")
	clock.tick = 11
	d.Update(0)
	if !nearColor(d.Color(), core.RGBA{0.5, 0, 0.5, 1}) {
		t.Errorf("halfway color = %v, want purple", d.Color())
	}

	clock.tick = 12
	d.Update(0)
	if d.Color() != (core.RGBA{0, 0, 1, 1}) {
		t.Errorf("final color = %v, want exact blue", d.Color())
	}
	clock.tick = 50
	d.Update(0)
	if d.Color() != (core.RGBA{0, 0, 1, 1}) {
		t.Errorf("color drifted after transition: %v", d.Color())
	}

	// malformed timing falls back to the configured default
	store.Set("_tint", "1 1 1 0@soon")
	clock.tick = 50.5
	d.Update(0)
	if !nearColor(d.Color(), core.RGBA{0.5, 0.5, 1, 0.5}) {
		t.Errorf("default-timed halfway = %v", d.Color())
	}
	clock.tick = 51
	d.Update(0)
	if d.Color() != (core.RGBA{1, 1, 1, 0}) {
		t.Errorf("default-timed final = %v", d.Color())
	}

	d.Close()
	if store.WatcherCount("_tint") != 0 {
		t.Errorf("Close did not release the subscription")
	}
	store.Set("_tint", "green")
	d.Close()
}

func TestVariableInitialTiming(t *testing.T) {
	store := vars.NewStore()
	clock := &fakeClock{}
	store.Set("_flag", "lime@0")

	d := New(store, clock)
	d.SetVariableName("_flag")
	d.Finalize()
	d.Update(0)
	defer d.Close()

	// zero duration lands immediately
	store.Set("_flag", "black@0")
	d.Update(0)
	if d.Color() != core.Black {
		t.Errorf("zero-duration transition = %v, want black", d.Color())
	}
}

func TestSplitTiming(t *testing.T) {
	tests := []struct {
		in     string
		expr   string
		timing float32
		ok     bool
	}{
		{"red", "red", 0, false},
		{"red@2", "red", 2, true},
		{"red@ 0.5s", "red", 0.5, true},
		{"red@", "red", 0, false},
		{"red@x", "red", 0, false},
	}
	for _, tt := range tests {
		expr, timing, ok := splitTiming(tt.in)
		if expr != tt.expr || timing != tt.timing || ok != tt.ok {
			t.Errorf("splitTiming(%q) = %q,%v,%v want %q,%v,%v", tt.in, expr, timing, ok, tt.expr, tt.timing, tt.ok)
		}
	}
}

func TestUnpackSanitizesInvalidRecords(t *testing.T) {
	nan := float32(math.NaN())
	seq := []uint8{SeqMin, SeqMax, SeqMid}

	tests := []struct {
		name    string
		channel Channel
		wantMin float32
		wantMax float32
	}{
		{"sequence period zero", Channel{Max: 1, Sequence: Sequence{Period: 0, List: seq}}, 0, 1},
		{"sequence period negative", Channel{Max: 1, Sequence: Sequence{Period: -1, List: seq}}, 0, 1},
		{"sequence period NaN", Channel{Max: 1, Sequence: Sequence{Period: nan, List: seq}}, 0, 1},
		{"sequence offset NaN", Channel{Max: 1, Sequence: Sequence{Period: 1, Offset: nan, List: seq}}, 0, 1},
		{"sinusoid period zero", Channel{Max: 1, Sinusoids: []Sinusoid{{Period: 0, Weight: 1}}}, 0, 1},
		{"sinusoid period NaN", Channel{Max: 1, Sinusoids: []Sinusoid{{Period: nan, Weight: 1}}}, 0, 1},
		{"sinusoid weight zero", Channel{Max: 1, Sinusoids: []Sinusoid{{Period: 1, Weight: 0}}}, 0, 1},
		{"sinusoid weight negative", Channel{Max: 1, Sinusoids: []Sinusoid{{Period: 1, Weight: -2}}}, 0, 1},
		{"sinusoid weight NaN", Channel{Max: 1, Sinusoids: []Sinusoid{{Period: 1, Weight: nan}}}, 0, 1},
		{"clamp width zero", Channel{Max: 1, ClampUps: []Clamp{{Period: 1, Width: 0}}}, 0, 1},
		{"clamp width negative", Channel{Max: 1, ClampDowns: []Clamp{{Period: 1, Width: -1}}}, 0, 1},
		{"clamp period negative", Channel{Max: 1, ClampUps: []Clamp{{Period: -3, Width: 1}}}, 0, 1},
		{"clamp offset NaN", Channel{Max: 1, ClampDowns: []Clamp{{Period: 1, Offset: nan, Width: 1}}}, 0, 1},
		{"limits out of range", Channel{Min: -1, Max: 2}, 0, 1},
		{"limits NaN", Channel{Min: nan, Max: nan}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := New(nil, nil)
			src.channels[core.Red] = tt.channel
			buf := src.Pack(nil)

			dst := New(nil, nil)
			if err := dst.Unpack(network.NewReader(buf)); err != nil {
				t.Fatalf("Unpack failed: %v", err)
			}

			got := dst.Channel(core.Red)
			if got.hasFunctions() {
				t.Errorf("invalid functions kept: %+v", got)
			}
			if got.Min != tt.wantMin || got.Max != tt.wantMax {
				t.Errorf("limits = %v..%v, want %v..%v", got.Min, got.Max, tt.wantMin, tt.wantMax)
			}

			for _, ts := range []float64{-3.7, 0, 2.5, 1e6} {
				dst.Update(ts)
				v := dst.Color()[core.Red]
				if math.IsNaN(float64(v)) || v < got.Min || v > got.Max {
					t.Errorf("t=%v: red = %v, want finite in %v..%v", ts, v, got.Min, got.Max)
				}
			}
		})
	}
}

func TestUnpackKeepsValidEntriesBesideInvalid(t *testing.T) {
	src := New(nil, nil)
	src.channels[core.Green] = Channel{
		Max: 1,
		Sinusoids: []Sinusoid{
			{Period: 0, Weight: 1},
			{Period: 2, Weight: 1},
		},
		ClampUps: []Clamp{
			{Period: 1, Width: -1},
			{Period: 4, Offset: 1, Width: 0.5},
		},
	}

	dst := New(nil, nil)
	if err := dst.Unpack(network.NewReader(src.Pack(nil))); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	got := dst.Channel(core.Green)
	if len(got.Sinusoids) != 1 || got.Sinusoids[0].Period != 2 {
		t.Errorf("sinusoids = %+v, want only the period 2 entry", got.Sinusoids)
	}
	if len(got.ClampUps) != 1 || got.ClampUps[0].Period != 4 {
		t.Errorf("clamp ups = %+v, want only the period 4 entry", got.ClampUps)
	}
}

func TestFactorToleratesUnsanitizedSequence(t *testing.T) {
	for _, period := range []float32{0, -1, float32(math.NaN())} {
		c := Channel{Max: 1, Sequence: Sequence{Period: period, List: []uint8{SeqMin, SeqMax, SeqMid}}}
		f := c.Factor(2.5)
		if math.IsNaN(float64(f)) || f < 0 || f > 1 {
			t.Errorf("period %v: factor = %v, want in [0,1]", period, f)
		}
	}
}
