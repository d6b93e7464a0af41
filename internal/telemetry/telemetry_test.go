package telemetry

import (
	"context"
	"testing"
)

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{-3, "AlwaysOnSampler"},
	}

	for _, tt := range tests {
		if got := sampler(tt.ratio).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}

	if got := sampler(0.25).Description(); got == "AlwaysOnSampler" {
		t.Errorf("sampler(0.25) should sample by ratio, got %q", got)
	}
}

func TestTracerWithoutSetup(t *testing.T) {
	_, span := Tracer("test").Start(context.Background(), "noop")
	defer span.End()

	if span.SpanContext().IsSampled() {
		t.Error("Spans before Setup should not be recorded")
	}
}
