package config

import "testing"

func TestDeferredFlagsThresholdClamping(t *testing.T) {
	restore := GetDeferredFlagsThreshold()
	defer SetDeferredFlagsThreshold(restore)

	SetDeferredFlagsThreshold(100)
	if got := GetDeferredFlagsThreshold(); got != 100 {
		t.Errorf("threshold = %d, want 100", got)
	}
	SetDeferredFlagsThreshold(0)
	if got := GetDeferredFlagsThreshold(); got != 1 {
		t.Errorf("threshold clamped to %d, want 1", got)
	}
	SetDeferredFlagsThreshold(1 << 20)
	if got := GetDeferredFlagsThreshold(); got != 4096 {
		t.Errorf("threshold clamped to %d, want 4096", got)
	}
}

func TestFPSLimitClamping(t *testing.T) {
	restore := GetFPSLimit()
	defer SetFPSLimit(restore)

	SetFPSLimit(-5)
	if got := GetFPSLimit(); got != 0 {
		t.Errorf("limit = %d, want 0", got)
	}
	SetFPSLimit(1000)
	if got := GetFPSLimit(); got != 480 {
		t.Errorf("limit = %d, want 480", got)
	}
}
