package observability

import (
	"strings"
	"testing"
)

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		got := sampler(tt.ratio).Description()
		if !strings.HasPrefix(got, "ParentBased{root:") || !strings.Contains(got, tt.want) {
			t.Fatalf("ratio %v: got %q, want root %s", tt.ratio, got, tt.want)
		}
	}
}
