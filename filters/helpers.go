package filters

import (
	"fmt"

	"github.com/wudi/pdfedit/ir/raw"
)

// ExtractFilters reads Filter and DecodeParms entries from a stream dictionary.
// params has one slot per filter; a slot is nil when the filter has no parameters.
func ExtractFilters(dict *raw.DictObj) ([]string, []*raw.DictObj) {
	var names []string

	filterObj, ok := dict.Get("Filter")
	if !ok {
		return nil, nil
	}

	switch f := filterObj.(type) {
	case raw.NameObj:
		names = append(names, f.Value())
	case *raw.ArrayObj:
		for _, item := range f.Items {
			if n, ok := item.(raw.NameObj); ok {
				names = append(names, n.Value())
			}
		}
	}

	params := make([]*raw.DictObj, len(names))
	if pObj, ok := dict.Get("DecodeParms"); ok && len(names) > 0 {
		switch p := pObj.(type) {
		case *raw.DictObj:
			params[0] = p
		case *raw.ArrayObj:
			for i, item := range p.Items {
				if d, ok := item.(*raw.DictObj); ok && i < len(params) {
					params[i] = d
				}
			}
		}
	}

	return names, params
}

func intParam(params *raw.DictObj, key string, def int) int {
	v, ok := params.Get(key)
	if !ok {
		return def
	}
	if n, ok := v.(raw.NumberObj); ok {
		return int(n.Int())
	}
	return def
}

// applyPredictor undoes a /Predictor from DecodeParms. 1 (or absent) means
// none, 2 is the TIFF horizontal predictor, 10 to 15 are PNG row filters
// where every row carries its own filter type byte.
func applyPredictor(data []byte, params *raw.DictObj) ([]byte, error) {
	predictor := intParam(params, "Predictor", 1)
	if predictor <= 1 {
		return data, nil
	}
	colors := intParam(params, "Colors", 1)
	bpc := intParam(params, "BitsPerComponent", 8)
	columns := intParam(params, "Columns", 1)
	if colors < 1 || bpc < 1 || columns < 1 {
		return nil, fmt.Errorf("bad predictor parameters colors=%d bpc=%d columns=%d", colors, bpc, columns)
	}
	rowLen := (colors*bpc*columns + 7) / 8
	bpp := (colors*bpc + 7) / 8

	switch {
	case predictor == 2:
		if bpc != 8 {
			return nil, fmt.Errorf("TIFF predictor with %d bits per component", bpc)
		}
		out := append([]byte(nil), data...)
		for row := 0; row+rowLen <= len(out); row += rowLen {
			for i := bpp; i < rowLen; i++ {
				out[row+i] += out[row+i-bpp]
			}
		}
		return out, nil
	case predictor >= 10 && predictor <= 15:
		return pngUnfilter(data, rowLen, bpp)
	}
	return nil, fmt.Errorf("unknown predictor %d", predictor)
}

func pngUnfilter(data []byte, rowLen, bpp int) ([]byte, error) {
	out := make([]byte, 0, len(data))
	prev := make([]byte, rowLen)
	for pos := 0; pos < len(data); pos += rowLen + 1 {
		ft := data[pos]
		end := pos + 1 + rowLen
		if end > len(data) {
			end = len(data)
		}
		row := append([]byte(nil), data[pos+1:end]...)
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch ft {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("bad PNG filter type %d", ft)
			}
		}
		out = append(out, row...)
		copy(prev, row)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
