package dyncolor

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tankarena/network"
)

// minRecordSize is the smallest possible packed color: empty strings and no functions
const minRecordSize = 2*network.Uint32Size + network.Uint8Size + network.Float32Size +
	4*(2*network.Float32Size+4*network.Uint32Size)

// GameClock adds the shared session step time to the tick clock
type GameClock interface {
	TickClock
	StepTime() float64
}

// Manager owns an ordered list of dynamic colors
// Indices are stable for the lifetime of the list; only Clear removes entries
type Manager struct {
	colors []*DynamicColor
	vars   Variables
	clock  GameClock
}

// NewManager creates an empty manager
// Colors created through it share v and clock
func NewManager(v Variables, clock GameClock) *Manager {
	return &Manager{vars: v, clock: clock}
}

// NewColor creates an unregistered color wired to the manager's store and clock
func (m *Manager) NewColor() *DynamicColor {
	var tick TickClock
	if m.clock != nil {
		tick = m.clock
	}
	return New(m.vars, tick)
}

// AddColor takes ownership of color and returns its index
func (m *Manager) AddColor(color *DynamicColor) int {
	m.colors = append(m.colors, color)
	return len(m.colors) - 1
}

// Len returns the number of managed colors
func (m *Manager) Len() int {
	return len(m.colors)
}

// FindColor resolves a token to an index, -1 when not found
// A token starting with a digit is an index; anything else is matched by name
func (m *Manager) FindColor(token string) int {
	if token == "" {
		return -1
	}
	if token[0] >= '0' && token[0] <= '9' {
		index := 0
		for i := 0; i < len(token) && token[i] >= '0' && token[i] <= '9'; i++ {
			index = index*10 + int(token[i]-'0')
			if index >= len(m.colors) {
				return -1
			}
		}
		return index
	}
	for i, c := range m.colors {
		if c.Name() == token {
			return i
		}
	}
	return -1
}

// GetColor returns the color at id, nil when out of range
func (m *Manager) GetColor(id int) *DynamicColor {
	if id < 0 || id >= len(m.colors) {
		return nil
	}
	return m.colors[id]
}

// Update advances every color to the current session step time
func (m *Manager) Update() {
	if m.clock == nil {
		return
	}
	m.UpdateAt(m.clock.StepTime())
}

// UpdateAt advances every color to time t
func (m *Manager) UpdateAt(t float64) {
	for _, c := range m.colors {
		c.Update(t)
	}
}

// Clear closes and drops every color
func (m *Manager) Clear() {
	for _, c := range m.colors {
		c.Close()
	}
	m.colors = nil
}

// Pack appends the count followed by every color in order
func (m *Manager) Pack(buf []byte) []byte {
	buf = network.PackUint32(buf, uint32(len(m.colors)))
	for _, c := range m.colors {
		buf = c.Pack(buf)
	}
	return buf
}

// Unpack decodes colors from r and appends them in wire order
// Colors decoded before a failure remain registered
func (m *Manager) Unpack(r *network.Reader) error {
	count := r.Uint32()
	if !r.RequireCount(count, minRecordSize) {
		return errors.Wrap(r.Err(), "unpack dynamic colors")
	}
	for i := uint32(0); i < count; i++ {
		c := m.NewColor()
		if err := c.Unpack(r); err != nil {
			return errors.Wrapf(err, "color %d of %d", i, count)
		}
		m.AddColor(c)
	}
	return nil
}

// PackSize returns the exact length of Pack's output
func (m *Manager) PackSize() int {
	size := network.Uint32Size
	for _, c := range m.colors {
		size += c.PackSize()
	}
	return size
}

// Print writes every color in the textual world format
func (m *Manager) Print(w io.Writer, indent string) {
	for _, c := range m.colors {
		c.Print(w, indent)
	}
}
