package dyncolor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lixenwraith/tankarena/core"
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
)

func namedManager(names ...string) *Manager {
	m := NewManager(nil, &fakeClock{})
	for _, n := range names {
		c := m.NewColor()
		c.SetName(n)
		c.Finalize()
		m.AddColor(c)
	}
	return m
}

func TestFindColor(t *testing.T) {
	m := namedManager("red", "green", "blue", "green", "")

	tests := []struct {
		token string
		want  int
	}{
		{"2", 2},
		{"0", 0},
		{"4", 4},
		{"5", -1},
		{"99", -1},
		{"2abc", 2},
		{"007", -1},
		{"", -1},
		{"green", 1},
		{"blue", 2},
		{"purple", -1},
		{"Green", -1},
	}
	for _, tt := range tests {
		if got := m.FindColor(tt.token); got != tt.want {
			t.Errorf("FindColor(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}

	if m.Len() != 5 {
		t.Errorf("Len = %d, want 5", m.Len())
	}
	if m.GetColor(-1) != nil || m.GetColor(5) != nil {
		t.Errorf("GetColor out of range returned a color")
	}
	if m.GetColor(2).Name() != "blue" {
		t.Errorf("GetColor(2) = %q", m.GetColor(2).Name())
	}
}

func TestFindColorLeadingZeros(t *testing.T) {
	m := namedManager("a", "b", "c", "d", "e", "f", "g", "h")
	if got := m.FindColor("007"); got != 7 {
		t.Errorf("FindColor(007) = %d, want 7", got)
	}
	if got := NewManager(nil, nil).FindColor("0"); got != -1 {
		t.Errorf("FindColor on empty manager = %d, want -1", got)
	}
}

func TestManagerUpdateUsesStepTime(t *testing.T) {
	clock := &fakeClock{}
	m := NewManager(nil, clock)
	c := m.NewColor()
	c.SetSequence(core.Red, 1, 0, []uint8{SeqMin, SeqMax})
	c.Finalize()
	m.AddColor(c)

	clock.step = 0.5
	m.Update()
	if c.Color()[core.Red] != 0 {
		t.Errorf("step 0.5 red = %v, want 0", c.Color()[core.Red])
	}
	clock.step = 1.5
	m.Update()
	if c.Color()[core.Red] != 1 {
		t.Errorf("step 1.5 red = %v, want 1", c.Color()[core.Red])
	}

	m.UpdateAt(2.25)
	if c.Color()[core.Red] != 0 {
		t.Errorf("UpdateAt(2.25) red = %v, want 0", c.Color()[core.Red])
	}
}

func TestManagerPackRoundTrip(t *testing.T) {
	src := NewManager(nil, &fakeClock{})
	src.AddColor(configured())
	plain := src.NewColor()
	plain.SetName("plain")
	plain.Finalize()
	src.AddColor(plain)

	buf := src.Pack(nil)
	if len(buf) != src.PackSize() {
		t.Errorf("PackSize = %d, packed %d", src.PackSize(), len(buf))
	}

	dst := NewManager(nil, &fakeClock{})
	if err := dst.Unpack(network.NewReader(buf)); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if dst.Len() != 2 {
		t.Fatalf("Len = %d, want 2", dst.Len())
	}
	if dst.FindColor("pulse") != 0 || dst.FindColor("plain") != 1 {
		t.Errorf("wire order not preserved")
	}

	// repacking yields identical bytes
	if again := dst.Pack(nil); !bytes.Equal(again, buf) {
		t.Errorf("repack differs from first encoding")
	}
}

func TestManagerUnpackRejectsHugeCount(t *testing.T) {
	buf := network.PackUint32(nil, 1<<30)
	buf = append(buf, make([]byte, minRecordSize)...)

	m := NewManager(nil, nil)
	if err := m.Unpack(network.NewReader(buf)); err == nil {
		t.Fatal("Unpack accepted a count larger than the input")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after rejected Unpack", m.Len())
	}
}

func TestManagerClearReleasesSubscriptions(t *testing.T) {
	store := vars.NewStore()
	store.Set("_tint", "red")
	m := NewManager(store, &fakeClock{})

	for i := 0; i < 3; i++ {
		c := m.NewColor()
		c.SetVariableName("_tint")
		c.Finalize()
		m.AddColor(c)
	}
	m.Update()
	if store.WatcherCount("_tint") != 3 {
		t.Fatalf("WatcherCount = %d, want 3", store.WatcherCount("_tint"))
	}

	m.Clear()
	if store.WatcherCount("_tint") != 0 {
		t.Errorf("WatcherCount after Clear = %d, want 0", store.WatcherCount("_tint"))
	}
	if m.Len() != 0 {
		t.Errorf("Len after Clear = %d", m.Len())
	}
}

func TestPrint(t *testing.T) {
	d := New(nil, nil)
	d.SetName("beacon")
	d.SetLimits(core.Red, 0.25, 1)
	d.AddSinusoid(core.Red, 2, 0.5, 1)
	d.AddClampUp(core.Green, 1, 0, 0.25)
	d.AddClampDown(core.Green, 3, 1, 0.5)
	d.SetSequence(core.Alpha, 0.5, 0, []uint8{SeqMin, SeqMax})
	d.Finalize()

	var b strings.Builder
	d.Print(&b, "  ")

	want := "  dynamicColor\n" +
		"    name beacon\n" +
		"    red limits 0.25 1\n" +
		"    red sinusoid 2 0.5 1\n" +
		"    green clampup 1 0 0.25\n" +
		"    green clampdown 3 1 0.5\n" +
		"    alpha sequence 0.5 0 0 2\n" +
		"  end\n\n"
	if b.String() != want {
		t.Errorf("Print =\n%s\nwant\n%s", b.String(), want)
	}
}

func TestPrintVariable(t *testing.T) {
	d := New(nil, nil)
	d.SetVariableName("_teamColor")
	d.SetVariableUseAlpha(true)
	d.SetVariableTiming(0.5)
	d.Finalize()

	var b strings.Builder
	managerWith(d).Print(&b, "")

	out := b.String()
	for _, line := range []string{"variable _teamColor\n", "varUseAlpha\n", "varTiming 0.5\n"} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}
	if strings.Contains(out, "name ") {
		t.Errorf("unnamed color printed a name line")
	}
}

func managerWith(colors ...*DynamicColor) *Manager {
	m := NewManager(nil, nil)
	for _, c := range colors {
		m.AddColor(c)
	}
	return m
}
