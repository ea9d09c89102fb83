package model

import "testing"

func TestEvaluateTransition(t *testing.T) {
	cases := []struct {
		name    string
		current DeliveryStatus
		next    DeliveryStatus
		want    TransitionOutcome
	}{
		{"pending to sent", StatusPending, StatusSent, TransitionApplied},
		{"sent to delivered", StatusSent, StatusDelivered, TransitionApplied},
		{"delivered to opened", StatusDelivered, StatusOpened, TransitionApplied},
		{"opened to clicked", StatusOpened, StatusClicked, TransitionApplied},
		{"forward skip pending to delivered", StatusPending, StatusDelivered, TransitionApplied},
		{"forward skip sent to clicked", StatusSent, StatusClicked, TransitionApplied},
		{"forward skip pending to clicked", StatusPending, StatusClicked, TransitionApplied},
		{"delivered skippable sent to opened", StatusSent, StatusOpened, TransitionApplied},

		{"duplicate sent", StatusSent, StatusSent, TransitionNoop},
		{"duplicate clicked", StatusClicked, StatusClicked, TransitionNoop},
		{"duplicate bounced", StatusBounced, StatusBounced, TransitionNoop},

		{"regression delivered to sent", StatusDelivered, StatusSent, TransitionRejected},
		{"regression opened to delivered", StatusOpened, StatusDelivered, TransitionRejected},
		{"anything back to pending", StatusSent, StatusPending, TransitionRejected},

		{"bounce from pending", StatusPending, StatusBounced, TransitionApplied},
		{"bounce from sent", StatusSent, StatusBounced, TransitionApplied},
		{"bounce from delivered", StatusDelivered, StatusBounced, TransitionApplied},
		{"bounce after opened", StatusOpened, StatusBounced, TransitionRejected},
		{"bounce after clicked", StatusClicked, StatusBounced, TransitionRejected},

		{"fail from pending", StatusPending, StatusFailed, TransitionApplied},
		{"fail from sent", StatusSent, StatusFailed, TransitionApplied},
		{"fail after delivered", StatusDelivered, StatusFailed, TransitionRejected},

		{"live after bounced", StatusBounced, StatusSent, TransitionRejected},
		{"live after failed", StatusFailed, StatusOpened, TransitionRejected},
		{"clicked after failed", StatusFailed, StatusClicked, TransitionRejected},
		{"bounce after failed", StatusFailed, StatusBounced, TransitionRejected},
		{"live after clicked", StatusClicked, StatusSent, TransitionRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvaluateTransition(tc.current, tc.next); got != tc.want {
				t.Errorf("EvaluateTransition(%s, %s) = %v, want %v", tc.current, tc.next, got, tc.want)
			}
		})
	}
}

func TestMilestonesReached(t *testing.T) {
	sent, opened, clicked := MilestonesReached(StatusSent, StatusClicked)
	if sent {
		t.Error("sent milestone was already reached")
	}
	if !opened || !clicked {
		t.Errorf("clicked on a sent record must cross opened and clicked, got opened=%v clicked=%v", opened, clicked)
	}

	sent, opened, clicked = MilestonesReached(StatusPending, StatusSent)
	if !sent || opened || clicked {
		t.Errorf("pending to sent crosses only the sent milestone, got %v %v %v", sent, opened, clicked)
	}

	sent, _, _ = MilestonesReached(StatusPending, StatusBounced)
	if sent {
		t.Error("a bounce does not cross the sent milestone")
	}
}

func TestParseDeliveryStatus(t *testing.T) {
	if _, err := ParseDeliveryStatus("opened"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseDeliveryStatus("exploded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
