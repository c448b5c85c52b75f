package security

import "time"

// Limits defines security boundaries for parsing and processing PDFs.
// A zero field means "use the default"; see WithDefaults.
type Limits struct {
	// Maximum decompressed stream size (prevent zip bombs). Default: 100 MB.
	MaxDecompressedSize int64

	// Maximum chain of links followed by a single dereference. Default: 100.
	MaxIndirectDepth int

	// Maximum nesting of arrays and dictionaries inside one value. Default: 256.
	MaxNestingDepth int

	// Maximum XRef chain depth (Prev entries). Default: 50.
	MaxXRefDepth int

	// Maximum string length (bytes). Default: 10 MB.
	MaxStringLength int64

	// Maximum raw stream length (bytes). Default: 50 MB.
	MaxStreamLength int64

	// Maximum decode time per stream. Default: 30s.
	MaxDecodeTime time.Duration
}

// DefaultLimits returns a Limits struct with safe default values.
func DefaultLimits() Limits {
	return Limits{
		MaxDecompressedSize: 100 * 1024 * 1024, // 100 MB
		MaxIndirectDepth:    100,
		MaxNestingDepth:     256,
		MaxXRefDepth:        50,
		MaxStringLength:     10 * 1024 * 1024, // 10 MB
		MaxStreamLength:     50 * 1024 * 1024, // 50 MB
		MaxDecodeTime:       30 * time.Second,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDecompressedSize == 0 {
		l.MaxDecompressedSize = d.MaxDecompressedSize
	}
	if l.MaxIndirectDepth == 0 {
		l.MaxIndirectDepth = d.MaxIndirectDepth
	}
	if l.MaxNestingDepth == 0 {
		l.MaxNestingDepth = d.MaxNestingDepth
	}
	if l.MaxXRefDepth == 0 {
		l.MaxXRefDepth = d.MaxXRefDepth
	}
	if l.MaxStringLength == 0 {
		l.MaxStringLength = d.MaxStringLength
	}
	if l.MaxStreamLength == 0 {
		l.MaxStreamLength = d.MaxStreamLength
	}
	if l.MaxDecodeTime == 0 {
		l.MaxDecodeTime = d.MaxDecodeTime
	}
	return l
}
