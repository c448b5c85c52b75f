package security

import (
	"testing"
	"time"
)

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	l := Limits{MaxNestingDepth: 4, MaxDecodeTime: time.Second}.WithDefaults()
	d := DefaultLimits()
	if l.MaxNestingDepth != 4 || l.MaxDecodeTime != time.Second {
		t.Fatalf("explicit values overwritten: %+v", l)
	}
	if l.MaxDecompressedSize != d.MaxDecompressedSize || l.MaxXRefDepth != d.MaxXRefDepth || l.MaxIndirectDepth != d.MaxIndirectDepth {
		t.Fatalf("zero values not defaulted: %+v", l)
	}
	if (Limits{}).WithDefaults() != d {
		t.Fatalf("zero Limits should equal DefaultLimits")
	}
}
