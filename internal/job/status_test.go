package job

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		if !Valid(s) {
			t.Fatalf("expected %s valid", s)
		}
	}
	for _, s := range []Status{"", "QUEUE", "shipped", "completed"} {
		if Valid(s) {
			t.Fatalf("expected %q invalid", s)
		}
	}
}

func TestCanTransitionIsFlat(t *testing.T) {
	// 扁平策略：任意合法状态间都允许流转，包括从 done 回退。
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if !CanTransition(from, to) {
				t.Fatalf("expected %s -> %s allowed", from, to)
			}
		}
	}
	if CanTransition(StatusQueue, Status("shipped")) {
		t.Fatalf("expected transition to unknown status rejected")
	}
	if CanTransition(Status("unknown"), StatusDone) {
		t.Fatalf("expected transition from unknown status rejected")
	}
}
