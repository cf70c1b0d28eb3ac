package dyncolor

import (
	"fmt"
	"io"
	"strconv"
)

var channelNames = [4]string{"red", "green", "blue", "alpha"}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', 6, 32)
}

// Print writes the color in the textual world format
func (d *DynamicColor) Print(w io.Writer, indent string) {
	fmt.Fprintf(w, "%sdynamicColor\n", indent)

	if d.name != "" {
		fmt.Fprintf(w, "%s  name %s\n", indent, d.name)
	}

	if d.varName != "" {
		fmt.Fprintf(w, "%s  variable %s\n", indent, d.varName)
		if d.varUseAlpha {
			fmt.Fprintf(w, "%s  varUseAlpha\n", indent)
		}
		if d.varTiming != 1 {
			fmt.Fprintf(w, "%s  varTiming %s\n", indent, formatFloat(d.varTiming))
		}
	}

	for c, colorStr := range channelNames {
		p := &d.channels[c]
		if p.Min != 0 || p.Max != 1 {
			fmt.Fprintf(w, "%s  %s limits %s %s\n", indent, colorStr, formatFloat(p.Min), formatFloat(p.Max))
		}
		if seq := &p.Sequence; len(seq.List) > 0 {
			fmt.Fprintf(w, "%s  %s sequence %s %s", indent, colorStr, formatFloat(seq.Period), formatFloat(seq.Offset))
			for _, v := range seq.List {
				fmt.Fprintf(w, " %d", v)
			}
			fmt.Fprintln(w)
		}
		for _, f := range p.Sinusoids {
			fmt.Fprintf(w, "%s  %s sinusoid %s %s %s\n", indent, colorStr,
				formatFloat(f.Period), formatFloat(f.Offset), formatFloat(f.Weight))
		}
		for _, f := range p.ClampUps {
			fmt.Fprintf(w, "%s  %s clampup %s %s %s\n", indent, colorStr,
				formatFloat(f.Period), formatFloat(f.Offset), formatFloat(f.Width))
		}
		for _, f := range p.ClampDowns {
			fmt.Fprintf(w, "%s  %s clampdown %s %s %s\n", indent, colorStr,
				formatFloat(f.Period), formatFloat(f.Offset), formatFloat(f.Width))
		}
	}

	fmt.Fprintf(w, "%send\n\n", indent)
}
