package filters

import (
	"bytes"
	"compress/flate"
	stdlzw "compress/lzw"
	"compress/zlib"
	"context"
	stdascii85 "encoding/ascii85"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	tifflzw "golang.org/x/image/tiff/lzw"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/security"
)

type Decoder interface {
	Name() string
	Decode(ctx context.Context, input []byte, params *raw.DictObj) ([]byte, error)
}

type Pipeline struct {
	decoders []Decoder
	limits   Limits
}

// NewPipeline constructs a pipeline with provided decoders and limits.
func NewPipeline(decoders []Decoder, limits Limits) *Pipeline {
	return &Pipeline{decoders: decoders, limits: limits}
}

type Limits struct {
	MaxDecompressedSize int64
	MaxDecodeTime       time.Duration
}

// Default returns a pipeline with every built-in decoder, bounded by l.
func Default(l security.Limits) *Pipeline {
	limits := Limits{MaxDecompressedSize: l.MaxDecompressedSize, MaxDecodeTime: l.MaxDecodeTime}
	return NewPipeline([]Decoder{
		NewFlateDecoder(limits.MaxDecompressedSize),
		NewLZWDecoder(limits.MaxDecompressedSize),
		NewASCII85Decoder(),
		NewASCIIHexDecoder(),
		NewRunLengthDecoder(),
	}, limits)
}

func (p *Pipeline) findDecoder(name string) Decoder {
	for _, d := range p.decoders {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Decode applies the named filters in order. When a filter has no decoder
// the chain stops there and the data decoded so far is returned together
// with an error wrapping recovery.ErrUnsupportedFilter; callers may keep
// that data. Any other failure returns nil data.
func (p *Pipeline) Decode(ctx context.Context, input []byte, filterNames []string, params []*raw.DictObj) ([]byte, error) {
	if p.limits.MaxDecodeTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.limits.MaxDecodeTime)
		defer cancel()
	}
	data := input
	for i, name := range filterNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dec := p.findDecoder(name)
		if dec == nil {
			return data, fmt.Errorf("%w: %s", recovery.ErrUnsupportedFilter, name)
		}
		var param *raw.DictObj
		if i < len(params) {
			param = params[i]
		}
		out, err := dec.Decode(ctx, data, param)
		if err != nil {
			var de *recovery.DecodeError
			if errors.As(err, &de) {
				return nil, err
			}
			return nil, &recovery.DecodeError{Filter: name, Err: err}
		}
		if p.limits.MaxDecompressedSize > 0 && int64(len(out)) > p.limits.MaxDecompressedSize {
			return nil, &recovery.DecodeError{Filter: name, Err: errTooLarge}
		}
		data = out
	}
	return data, nil
}

var errTooLarge = errors.New("decompressed size exceeds limit")

// ctxReader fails reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// readLimited drains r, failing once more than max bytes come out or when
// ctx is done.
func readLimited(ctx context.Context, r io.Reader, max int64) ([]byte, error) {
	r = ctxReader{ctx: ctx, r: r}
	if max <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return out, err
	}
	if int64(len(out)) > max {
		return nil, errTooLarge
	}
	return out, nil
}

type flateDecoder struct{ max int64 }

func (flateDecoder) Name() string { return "FlateDecode" }

// NewFlateDecoder returns a FlateDecode decoder producing at most max bytes.
func NewFlateDecoder(max int64) Decoder { return flateDecoder{max: max} }

// Decode inflates zlib-wrapped data, falling back to raw deflate when the
// zlib header is missing. A truncated stream yields what was inflated.
func (d flateDecoder) Decode(ctx context.Context, in []byte, params *raw.DictObj) ([]byte, error) {
	in = bytes.Trim(in, "\r\n")
	var out []byte
	zr, err := zlib.NewReader(bytes.NewReader(in))
	if err == nil {
		out, err = readLimited(ctx, zr, d.max)
		zr.Close()
		if errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0 {
			err = nil
		}
	}
	if err != nil && !errors.Is(err, errTooLarge) && ctx.Err() == nil {
		fr := flate.NewReader(bytes.NewReader(in))
		defer fr.Close()
		inflated, rerr := readLimited(ctx, fr, d.max)
		if rerr != nil && (!errors.Is(rerr, io.ErrUnexpectedEOF) || len(inflated) == 0) {
			return nil, &recovery.DecodeError{Filter: d.Name(), Err: fmt.Errorf("inflate: %w", rerr)}
		}
		out, err = inflated, nil
	}
	if err != nil {
		return nil, &recovery.DecodeError{Filter: d.Name(), Err: err}
	}
	return applyPredictor(out, params)
}

type lzwDecoder struct{ max int64 }

func (lzwDecoder) Name() string { return "LZWDecode" }

func NewLZWDecoder(max int64) Decoder { return lzwDecoder{max: max} }

// Decode honours /EarlyChange: the default of 1 widens codes one code early,
// which is the variant TIFF uses.
func (d lzwDecoder) Decode(ctx context.Context, in []byte, params *raw.DictObj) ([]byte, error) {
	var r io.ReadCloser
	if intParam(params, "EarlyChange", 1) == 0 {
		r = stdlzw.NewReader(bytes.NewReader(in), stdlzw.MSB, 8)
	} else {
		r = tifflzw.NewReader(bytes.NewReader(in), tifflzw.MSB, 8)
	}
	defer r.Close()
	out, err := readLimited(ctx, r, d.max)
	if err != nil {
		return nil, err
	}
	return applyPredictor(out, params)
}

type ascii85Decoder struct{}

func (ascii85Decoder) Name() string { return "ASCII85Decode" }
func (ascii85Decoder) Decode(ctx context.Context, in []byte, params *raw.DictObj) ([]byte, error) {
	trimmed := bytes.TrimSpace(in)
	trimmed = bytes.TrimPrefix(trimmed, []byte("<~"))
	if i := bytes.Index(trimmed, []byte("~>")); i >= 0 {
		trimmed = trimmed[:i]
	}
	out := make([]byte, len(trimmed)*4+4)
	n, _, err := stdascii85.Decode(out, trimmed, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
func NewASCII85Decoder() Decoder { return ascii85Decoder{} }

type asciiHexDecoder struct{}

func (asciiHexDecoder) Name() string { return "ASCIIHexDecode" }
func (asciiHexDecoder) Decode(ctx context.Context, in []byte, params *raw.DictObj) ([]byte, error) {
	in = bytes.TrimPrefix(bytes.TrimLeft(in, "\x00\t\n\f\r "), []byte("<"))
	digits := make([]byte, 0, len(in))
	for _, c := range in {
		if c == '>' {
			break
		}
		switch c {
		case ' ', '\t', '\r', '\n', '\f', 0:
			continue
		}
		digits = append(digits, c)
	}
	// an odd final digit is followed by an implied 0
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	result := make([]byte, hex.DecodedLen(len(digits)))
	n, err := hex.Decode(result, digits)
	if err != nil {
		return nil, err
	}
	return result[:n], nil
}
func NewASCIIHexDecoder() Decoder { return asciiHexDecoder{} }

type runLengthDecoder struct{}

func (runLengthDecoder) Name() string { return "RunLengthDecode" }
func (runLengthDecoder) Decode(ctx context.Context, in []byte, params *raw.DictObj) ([]byte, error) {
	var out bytes.Buffer
	for i := 0; i < len(in); {
		n := int(in[i])
		i++
		switch {
		case n == 128:
			return out.Bytes(), nil
		case n < 128:
			end := i + n + 1
			if end > len(in) {
				return nil, io.ErrUnexpectedEOF
			}
			out.Write(in[i:end])
			i = end
		default:
			if i >= len(in) {
				return nil, io.ErrUnexpectedEOF
			}
			out.Write(bytes.Repeat(in[i:i+1], 257-n))
			i++
		}
	}
	return out.Bytes(), nil
}
func NewRunLengthDecoder() Decoder { return runLengthDecoder{} }
