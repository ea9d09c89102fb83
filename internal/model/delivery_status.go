package model

import "fmt"

type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "pending"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusOpened    DeliveryStatus = "opened"
	StatusClicked   DeliveryStatus = "clicked"
	StatusBounced   DeliveryStatus = "bounced"
	StatusFailed    DeliveryStatus = "failed"
)

// AllDeliveryStatuses lists every status; progress reports carry a count for
// each of these keys even when zero.
var AllDeliveryStatuses = []DeliveryStatus{
	StatusPending,
	StatusSent,
	StatusDelivered,
	StatusOpened,
	StatusClicked,
	StatusBounced,
	StatusFailed,
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	for _, st := range AllDeliveryStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown delivery status %q", s)
}

// livePathRank orders the live delivery path. Bounced and failed sit outside
// the path and rank -1.
func livePathRank(s DeliveryStatus) int {
	switch s {
	case StatusPending:
		return 0
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusOpened:
		return 3
	case StatusClicked:
		return 4
	}
	return -1
}

type TransitionOutcome int

const (
	TransitionRejected TransitionOutcome = iota
	TransitionNoop
	TransitionApplied
)

// EvaluateTransition decides whether moving a record from current to next is
// a forward transition, a duplicate callback, or a contradiction.
//
// Providers report out of order, so any forward jump along
// pending -> sent -> delivered -> opened -> clicked is accepted and implies
// every skipped milestone. Bounces are accepted up to delivered (a bounce
// callback can outrun the worker marking sent); failures only from pending or
// sent. Once a record is bounced, failed, or clicked, only the exact same
// status is tolerated again (as a noop).
func EvaluateTransition(current, next DeliveryStatus) TransitionOutcome {
	if next == current {
		return TransitionNoop
	}
	if current == StatusBounced || current == StatusFailed {
		return TransitionRejected
	}

	switch next {
	case StatusBounced:
		if livePathRank(current) <= livePathRank(StatusDelivered) {
			return TransitionApplied
		}
		return TransitionRejected
	case StatusFailed:
		if current == StatusPending || current == StatusSent {
			return TransitionApplied
		}
		return TransitionRejected
	default:
		if livePathRank(next) > livePathRank(current) {
			return TransitionApplied
		}
		return TransitionRejected
	}
}

// MilestonesReached reports which first-time milestones an applied transition
// crosses. A clicked event on a record still at sent crosses both the opened
// and clicked milestones.
func MilestonesReached(current, next DeliveryStatus) (sent, opened, clicked bool) {
	cur, nxt := livePathRank(current), livePathRank(next)
	if nxt < 0 {
		return false, false, false
	}
	sent = cur < livePathRank(StatusSent) && nxt >= livePathRank(StatusSent)
	opened = cur < livePathRank(StatusOpened) && nxt >= livePathRank(StatusOpened)
	clicked = nxt >= livePathRank(StatusClicked)
	return sent, opened, clicked
}
