package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()

	stop := Track("test.section")
	time.Sleep(2 * time.Millisecond)
	stop()

	stop = Track("test.section")
	stop()

	ss := Snapshot()
	if d, ok := ss["test.section"]; !ok || d < 2*time.Millisecond {
		t.Fatalf("tracked duration = %v, want >= 2ms", d)
	}

	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatal("ResetFrame did not clear totals")
	}
}

func TestTopN(t *testing.T) {
	ResetFrame()
	defer ResetFrame()

	stop := Track("slow")
	time.Sleep(3 * time.Millisecond)
	stop()
	stop = Track("fast")
	stop()

	top := TopN(1)
	if !strings.HasPrefix(top, "slow:") {
		t.Errorf("TopN(1) = %q, want the slow section first", top)
	}
	if TopN(0) != "" {
		t.Errorf("TopN(0) = %q, want empty", TopN(0))
	}

	// Asking for more entries than tracked is not an error
	both := TopN(10)
	if !strings.Contains(both, "slow:") || !strings.Contains(both, "fast:") {
		t.Errorf("TopN(10) = %q", both)
	}
}
