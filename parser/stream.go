package parser

import (
	"context"
	"errors"
	"strings"

	"github.com/wudi/pdfedit/filters"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/scanner"
)

// ParseObjectBody parses the text between "N G obj" and "endobj".
func ParseObjectBody(body string, cfg Config) (raw.Object, []error, error) {
	p := &valueParser{cfg: cfg.withDefaults()}
	t := scanner.Normalize(body)
	v, err := p.parse(t, scanner.Classify(t))
	return v, p.warnings, err
}

func (p *valueParser) stream(text string) (raw.Object, error) {
	head, portion, ok := scanner.SplitStream(text)
	if !ok {
		return nil, invalid("stream", text, errors.New("no stream keyword"))
	}
	dict, err := p.dict(head)
	if err != nil {
		return nil, err
	}
	length := int64(-1)
	if l, ok := dict.Get("Length"); ok {
		if n, ok := l.(raw.NumberObj); ok && n.IsInteger() {
			length = n.Int()
		}
	}
	data, err := streamPayload(portion, length)
	if err != nil {
		return nil, invalid("stream", text, err)
	}
	if limit := p.cfg.Limits.MaxStreamLength; limit > 0 && int64(len(data)) > limit {
		return nil, invalid("stream", text, errors.New("stream too long"))
	}
	s := raw.NewStream(dict, data)
	if p.cfg.DecodeStreams {
		p.decode(s)
	}
	return s, nil
}

// decode runs the payload through the filter pipeline. Failures are kept as
// warnings and leave Decoded unset; an unsupported filter keeps the payload
// as it was when the unknown filter was reached.
func (p *valueParser) decode(s *raw.StreamObj) {
	names, params := filters.ExtractFilters(s.Dict)
	out, err := p.cfg.Filters.Decode(context.Background(), s.Data, names, params)
	switch {
	case err == nil:
		s.Decoded = out
	case errors.Is(err, recovery.ErrUnsupportedFilter):
		s.Decoded = out
		p.warnings = append(p.warnings, err)
	default:
		p.warnings = append(p.warnings, err)
	}
}

// streamPayload extracts the bytes between "stream" and "endstream". One end
// of line after the keyword and one before "endstream" are not payload. A
// direct /Length is used when it lands on "endstream".
func streamPayload(portion string, length int64) ([]byte, error) {
	i := len("stream")
	if strings.HasPrefix(portion[i:], "\r\n") {
		i += 2
	} else if i < len(portion) && (portion[i] == '\n' || portion[i] == '\r') {
		i++
	}
	if length >= 0 && int64(i)+length <= int64(len(portion)) {
		end := i + int(length)
		rest := strings.TrimLeft(portion[end:], "\r\n \t")
		if strings.HasPrefix(rest, "endstream") {
			return []byte(portion[i:end]), nil
		}
	}
	end := strings.LastIndex(portion, "endstream")
	if end < i {
		return nil, errors.New("endstream not found")
	}
	data := portion[i:end]
	switch {
	case strings.HasSuffix(data, "\r\n"):
		data = data[:len(data)-2]
	case strings.HasSuffix(data, "\n"), strings.HasSuffix(data, "\r"):
		data = data[:len(data)-1]
	}
	return []byte(data), nil
}
