package builder

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wudi/pdfedit/ir/raw"
)

// highlightAppearance creates a form XObject drawing the markup in page
// space, clipped to rect. Highlights fill each quad with a multiply blend;
// the line subtypes stroke under, through or along the bottom of it.
func (a *Annotator) highlightAppearance(rect [4]float64, quad []float64, color []float64, subtype Subtype) (raw.ObjectRef, error) {
	var buf bytes.Buffer
	buf.WriteString("q\n")
	if subtype == SubtypeHighlight {
		buf.WriteString("/GS0 gs\n")
	}
	writeColor(&buf, color, subtype != SubtypeHighlight)
	for i := 0; i+8 <= len(quad); i += 8 {
		q := quad[i : i+8]
		// quad order is upper left, upper right, lower left, lower right
		switch subtype {
		case SubtypeHighlight:
			fmt.Fprintf(&buf, "%s %s m %s %s l %s %s l %s %s l h f\n",
				num(q[4]), num(q[5]), num(q[6]), num(q[7]), num(q[2]), num(q[3]), num(q[0]), num(q[1]))
		case SubtypeStrikeOut:
			fmt.Fprintf(&buf, "%s %s m %s %s l S\n",
				num((q[0]+q[4])/2), num((q[1]+q[5])/2), num((q[2]+q[6])/2), num((q[3]+q[7])/2))
		case SubtypeSquiggly:
			squiggle(&buf, q[4], q[5], q[6])
		default:
			fmt.Fprintf(&buf, "%s %s m %s %s l S\n", num(q[4]), num(q[5]), num(q[6]), num(q[7]))
		}
	}
	buf.WriteString("Q\n")

	dict := raw.Dict()
	dict.Set("Type", raw.NameLiteral("XObject"))
	dict.Set("Subtype", raw.NameLiteral("Form"))
	dict.Set("BBox", raw.Numbers(rect[:]...))
	dict.Set("Length", raw.NumberInt(int64(buf.Len())))
	if subtype == SubtypeHighlight {
		gs := raw.Dict()
		gs.Set("Type", raw.NameLiteral("ExtGState"))
		gs.Set("BM", raw.NameLiteral("Multiply"))
		ext := raw.Dict()
		ext.Set("GS0", gs)
		res := raw.Dict()
		res.Set("ExtGState", ext)
		dict.Set("Resources", res)
	}
	return a.doc.Create(raw.NewStream(dict, buf.Bytes()))
}

func apDict(normal raw.ObjectRef) *raw.DictObj {
	ap := raw.Dict()
	ap.Set("N", raw.RefObj{R: normal})
	return ap
}

func writeColor(buf *bytes.Buffer, color []float64, stroke bool) {
	op := "rg"
	if stroke {
		op = "RG"
	}
	fmt.Fprintf(buf, "%s %s %s %s\n", num(color[0]), num(color[1]), num(color[2]), op)
}

// squiggle strokes a zigzag of amplitude 1 along the baseline from x0 to x1.
func squiggle(buf *bytes.Buffer, x0, y, x1 float64) {
	const step = 2.0
	fmt.Fprintf(buf, "%s %s m\n", num(x0), num(y))
	up := true
	for x := x0 + step; x < x1; x += step {
		dy := -1.0
		if up {
			dy = 1
		}
		fmt.Fprintf(buf, "%s %s l\n", num(x), num(y+dy))
		up = !up
	}
	fmt.Fprintf(buf, "%s %s l S\n", num(x1), num(y))
}

func num(f float64) string {
	f = math.Round(f*1000) / 1000
	return raw.NumberFloat(f).String()
}
