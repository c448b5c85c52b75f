package filters

import (
	"context"
	"strings"
	"testing"

	"github.com/wudi/pdfedit/security"
)

// FuzzFilters runs arbitrary payloads through comma-separated filter chains.
// A successful decode never exceeds the decompression limit.
func FuzzFilters(f *testing.F) {
	f.Add([]byte("78 9c 4b 4c 4a 06 00 02 4d 01 27>"), "ASCIIHexDecode,FlateDecode")
	f.Add([]byte("87cURD]i,\"Ebo80~>"), "ASCII85Decode")
	f.Add([]byte{2, 'a', 'b', 'c', 0xfe, 'x', 0x80}, "RunLengthDecode")
	f.Add([]byte{0x80, 0x0b, 0x60, 0x50}, "LZWDecode,Unknown")

	const limit = 64 * 1024
	p := Default(security.Limits{MaxDecompressedSize: limit})
	f.Fuzz(func(t *testing.T, data []byte, chain string) {
		out, err := p.Decode(context.Background(), data, strings.Split(chain, ","), nil)
		if err == nil && len(out) > limit {
			t.Fatalf("decoded %d bytes past the %d byte limit", len(out), limit)
		}
	})
}
