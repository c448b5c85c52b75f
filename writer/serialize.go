package writer

import (
	"bytes"
	"fmt"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/scanner"
)

// Render writes v in PDF syntax. Dictionary keys are sorted, references and
// links render as "N G R", and numbers keep the lexeme they were parsed
// from. Strings are written in the form they were read, so parsing the
// output gives back an equal value.
func Render(v raw.Object) []byte {
	var b bytes.Buffer
	writeValue(&b, v)
	return b.Bytes()
}

// RenderObject writes v as the indirect object ref.
func RenderObject(ref raw.ObjectRef, v raw.Object) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d %d obj\n", ref.Num, ref.Gen)
	writeValue(&b, v)
	b.WriteString("\nendobj\n")
	return b.Bytes()
}

// RenderTrailer writes the "trailer" keyword followed by d.
func RenderTrailer(d *raw.DictObj) []byte {
	var b bytes.Buffer
	b.WriteString("trailer\n")
	writeValue(&b, d)
	b.WriteByte('\n')
	return b.Bytes()
}

func writeValue(b *bytes.Buffer, v raw.Object) {
	switch o := v.(type) {
	case nil:
		b.WriteString("null")
	case raw.NameObj:
		writeName(b, o.Val)
	case raw.NumberObj:
		b.WriteString(o.String())
	case raw.BoolObj:
		if o.V {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case raw.NullObj:
		b.WriteString("null")
	case raw.StringObj:
		b.WriteByte('(')
		b.Write(o.Raw)
		b.WriteByte(')')
	case raw.HexStringObj:
		b.WriteByte('<')
		b.Write(o.Digits)
		b.WriteByte('>')
	case raw.RefObj:
		fmt.Fprintf(b, "%d %d R", o.R.Num, o.R.Gen)
	case raw.LinkObj:
		fmt.Fprintf(b, "%d %d R", o.R.Num, o.R.Gen)
	case *raw.ArrayObj:
		b.WriteByte('[')
		for i, item := range o.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case *raw.DictObj:
		writeDict(b, o)
	case *raw.StreamObj:
		dict := raw.Clone(o.Dict).(*raw.DictObj)
		dict.Set("Length", raw.NumberInt(int64(len(o.Data))))
		writeDict(b, dict)
		b.WriteString("\nstream\n")
		b.Write(o.Data)
		b.WriteString("\nendstream")
	default:
		b.WriteString("null")
	}
}

func writeDict(b *bytes.Buffer, d *raw.DictObj) {
	b.WriteString("<<")
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		b.WriteByte(' ')
		writeName(b, k)
		b.WriteByte(' ')
		writeValue(b, v)
	}
	b.WriteString(" >>")
}

// writeName writes a name. Names read from a file are already in escaped
// form and pass through; bytes that would end the name are written as #xx.
func writeName(b *bytes.Buffer, name string) {
	b.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7E || scanner.IsDelimiter(c) {
			fmt.Fprintf(b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
}
