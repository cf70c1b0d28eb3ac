package dyncolor

import (
	"github.com/pkg/errors"

	"github.com/lixenwraith/tankarena/network"
)

// Wire sizes of the per-channel function entries
const (
	sinusoidPackSize = 3 * network.Float32Size
	clampPackSize    = 3 * network.Float32Size
)

// Pack appends the wire encoding of the color to buf
func (d *DynamicColor) Pack(buf []byte) []byte {
	buf = network.PackString(buf, d.name)

	buf = network.PackString(buf, d.varName)
	useAlpha := uint8(0)
	if d.varUseAlpha {
		useAlpha = 1
	}
	buf = network.PackUint8(buf, useAlpha)
	buf = network.PackFloat32(buf, d.varTiming)

	for c := range d.channels {
		p := &d.channels[c]

		buf = network.PackFloat32(buf, p.Min)
		buf = network.PackFloat32(buf, p.Max)

		buf = network.PackUint32(buf, uint32(len(p.Sinusoids)))
		for _, s := range p.Sinusoids {
			buf = network.PackFloat32(buf, s.Period)
			buf = network.PackFloat32(buf, s.Offset)
			buf = network.PackFloat32(buf, s.Weight)
		}
		buf = packClamps(buf, p.ClampUps)
		buf = packClamps(buf, p.ClampDowns)

		seq := &p.Sequence
		buf = network.PackUint32(buf, uint32(len(seq.List)))
		if len(seq.List) > 0 {
			buf = network.PackFloat32(buf, seq.Period)
			buf = network.PackFloat32(buf, seq.Offset)
			buf = append(buf, seq.List...)
		}
	}

	return buf
}

func packClamps(buf []byte, clamps []Clamp) []byte {
	buf = network.PackUint32(buf, uint32(len(clamps)))
	for _, c := range clamps {
		buf = network.PackFloat32(buf, c.Period)
		buf = network.PackFloat32(buf, c.Offset)
		buf = network.PackFloat32(buf, c.Width)
	}
	return buf
}

// Unpack replaces the configuration from r and finalizes the color
func (d *DynamicColor) Unpack(r *network.Reader) error {
	name := r.String()
	varName := r.String()
	useAlpha := r.Uint8()
	timing := r.Float32()

	var channels [4]Channel
	for c := range channels {
		p := &channels[c]

		p.Min = r.Float32()
		p.Max = r.Float32()

		if n, ok := readCount(r, sinusoidPackSize); ok && n > 0 {
			p.Sinusoids = make([]Sinusoid, n)
			for i := range p.Sinusoids {
				p.Sinusoids[i] = Sinusoid{Period: r.Float32(), Offset: r.Float32(), Weight: r.Float32()}
			}
		}
		p.ClampUps = unpackClamps(r)
		p.ClampDowns = unpackClamps(r)

		if n, ok := readCount(r, 1); ok && n > 0 {
			p.Sequence.Period = r.Float32()
			p.Sequence.Offset = r.Float32()
			if list := r.Bytes(n); list != nil {
				p.Sequence.List = append([]uint8(nil), list...)
			}
		}
	}

	if err := r.Err(); err != nil {
		return errors.Wrap(err, "unpack dynamic color")
	}

	d.name = name
	d.varName = varName
	d.varUseAlpha = useAlpha != 0
	d.varTiming = timing
	d.channels = channels
	d.Finalize()
	return nil
}

// readCount reads an entry count and checks the entries can fit in the remaining input
func readCount(r *network.Reader, entrySize int) (int, bool) {
	n := r.Uint32()
	if !r.RequireCount(n, entrySize) {
		return 0, false
	}
	return int(n), true
}

func unpackClamps(r *network.Reader) []Clamp {
	n, ok := readCount(r, clampPackSize)
	if !ok || n == 0 {
		return nil
	}
	clamps := make([]Clamp, n)
	for i := range clamps {
		clamps[i] = Clamp{Period: r.Float32(), Offset: r.Float32(), Width: r.Float32()}
	}
	return clamps
}

// PackSize returns the exact length of Pack's output
func (d *DynamicColor) PackSize() int {
	size := network.StringPackSize(d.name)
	size += network.StringPackSize(d.varName)
	size += network.Uint8Size   // varUseAlpha
	size += network.Float32Size // varTiming
	for c := range d.channels {
		p := &d.channels[c]
		size += 2 * network.Float32Size // limits
		size += network.Uint32Size + len(p.Sinusoids)*sinusoidPackSize
		size += network.Uint32Size + len(p.ClampUps)*clampPackSize
		size += network.Uint32Size + len(p.ClampDowns)*clampPackSize
		size += network.Uint32Size
		if n := len(p.Sequence.List); n > 0 {
			size += 2*network.Float32Size + n
		}
	}
	return size
}
