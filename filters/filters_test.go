package filters

import (
	"bytes"
	"compress/flate"
	"compress/lzw"
	"compress/zlib"
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/security"
)

// zlib output of a short content stream, as a PDF producer would write it.
const contentFixture = "789c730a51d0773354303452084953d0f048cdc9c9d75408c952700d010054a906b6"

func fixture(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(contentFixture)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestFlateDecodeFixture(t *testing.T) {
	dec := NewFlateDecoder(0)
	data := append([]byte("\r\n"), fixture(t)...)
	data = append(data, '\n')
	out, err := dec.Decode(context.Background(), data, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "BT /F1 12 Tf (Hello) Tj ET" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFlateDecodeRawDeflate(t *testing.T) {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestSpeed)
	w.Write([]byte("hello world"))
	w.Close()

	out, err := NewFlateDecoder(0).Decode(context.Background(), buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFlateDecodeLimit(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(bytes.Repeat([]byte("a"), 4096))
	w.Close()

	_, err := NewFlateDecoder(1024).Decode(context.Background(), buf.Bytes(), nil)
	var de *recovery.DecodeError
	if !errors.As(err, &de) || de.Filter != "FlateDecode" {
		t.Fatalf("expected decode error for oversized output, got %v", err)
	}
}

func TestFlateDecodeRawDeflateLimit(t *testing.T) {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestSpeed)
	w.Write(bytes.Repeat([]byte("a"), 4096))
	w.Close()

	_, err := NewFlateDecoder(1024).Decode(context.Background(), buf.Bytes(), nil)
	var de *recovery.DecodeError
	if !errors.As(err, &de) || !errors.Is(err, errTooLarge) {
		t.Fatalf("expected size limit error from the raw deflate path, got %v", err)
	}
}

func TestDecodeStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, dec := range []Decoder{NewFlateDecoder(0), NewLZWDecoder(0)} {
		_, err := dec.Decode(ctx, fixture(t), nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", dec.Name(), err)
		}
	}
}

func TestFlateDecodeWithPredictor(t *testing.T) {
	var comp bytes.Buffer
	w := zlib.NewWriter(&comp)
	// Two PNG rows: Sub then Up.
	w.Write([]byte{1, 10, 12, 20, 2, 1, 1, 1})
	w.Close()

	params := raw.Dict()
	params.Set("Predictor", raw.NumberInt(12))
	params.Set("Colors", raw.NumberInt(1))
	params.Set("BitsPerComponent", raw.NumberInt(8))
	params.Set("Columns", raw.NumberInt(3))

	out, err := NewFlateDecoder(0).Decode(context.Background(), comp.Bytes(), params)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	want := []byte{10, 22, 42, 11, 23, 43}
	if !bytes.Equal(out, want) {
		t.Fatalf("predictor output mismatch: got %v want %v", out, want)
	}
}

func TestTIFFPredictor(t *testing.T) {
	params := raw.Dict()
	params.Set("Predictor", raw.NumberInt(2))
	params.Set("Columns", raw.NumberInt(4))
	out, err := applyPredictor([]byte{5, 1, 1, 1}, params)
	if err != nil {
		t.Fatalf("predictor: %v", err)
	}
	if !bytes.Equal(out, []byte{5, 6, 7, 8}) {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestLZWDecodeEarlyChangeZero(t *testing.T) {
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	input := []byte("hello hello hello")
	w.Write(input)
	w.Close()

	params := raw.Dict()
	params.Set("EarlyChange", raw.NumberInt(0))
	out, err := NewLZWDecoder(0).Decode(context.Background(), buf.Bytes(), params)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunLengthDecode(t *testing.T) {
	// literal run of 3 bytes (len=2), then repeat 'A' 2 times (len=255 => count=2), then EOD 128
	data := []byte{2, 'h', 'i', '!', 255, 'A', 128}
	out, err := NewRunLengthDecoder().Decode(context.Background(), data, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "hi!AA" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestASCII85Decode(t *testing.T) {
	out, err := NewASCII85Decoder().Decode(context.Background(), []byte("<~87cURD_*#4DfTZ)+T~>"), nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "Hello, World!" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestASCIIHexDecode(t *testing.T) {
	out, err := NewASCIIHexDecoder().Decode(context.Background(), []byte("68656c6c6f 20776f726c6>"), nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "hello worl`" {
		t.Fatalf("unexpected output: %q", out)
	}
	out, err = NewASCIIHexDecoder().Decode(context.Background(), []byte("\n <4e 6f>\n"), nil)
	if err != nil || string(out) != "No" {
		t.Fatalf("bracketed input: %q, %v", out, err)
	}
}

func TestPipelineChain(t *testing.T) {
	p := Default(security.DefaultLimits())
	in := []byte(hex.EncodeToString(fixture(t)) + ">")
	out, err := p.Decode(context.Background(), in, []string{"ASCIIHexDecode", "FlateDecode"}, nil)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if string(out) != "BT /F1 12 Tf (Hello) Tj ET" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPipelineUnsupportedFilter(t *testing.T) {
	p := Default(security.Limits{})
	out, err := p.Decode(context.Background(), []byte("4142>"), []string{"ASCIIHexDecode", "JBIG2Decode", "FlateDecode"}, nil)
	if !errors.Is(err, recovery.ErrUnsupportedFilter) {
		t.Fatalf("expected unsupported filter, got %v", err)
	}
	if string(out) != "AB" {
		t.Fatalf("expected data decoded before the unknown filter, got %q", out)
	}
}

func TestPipelineCorruptData(t *testing.T) {
	p := Default(security.Limits{})
	out, err := p.Decode(context.Background(), []byte("not compressed at all"), []string{"FlateDecode"}, nil)
	var de *recovery.DecodeError
	if !errors.As(err, &de) || out != nil {
		t.Fatalf("expected decode error and no data, got %q, %v", out, err)
	}
}

func TestExtractFilters(t *testing.T) {
	d := raw.Dict()
	if names, params := ExtractFilters(d); names != nil || params != nil {
		t.Fatalf("expected no filters")
	}
	parms := raw.Dict()
	parms.Set("Predictor", raw.NumberInt(12))
	d.Set("Filter", raw.NewArray(raw.NameLiteral("ASCII85Decode"), raw.NameLiteral("FlateDecode")))
	d.Set("DecodeParms", raw.NewArray(raw.NullObj{}, parms))
	names, params := ExtractFilters(d)
	if len(names) != 2 || names[1] != "FlateDecode" {
		t.Fatalf("unexpected names %v", names)
	}
	if params[0] != nil || params[1] != parms {
		t.Fatalf("params not aligned with filters: %v", params)
	}
}
