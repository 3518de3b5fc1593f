package client

import "strconv"

// Priority selects how an outbound line is scheduled.
type Priority int

const (
	Low Priority = iota
	BelowMedium
	Medium
	AboveMedium
	High

	// Critical lines skip the queues and are written immediately by the
	// calling goroutine.
	Critical
)

// numScheduled is the number of priorities that go through the queues
// (Low..High).
const numScheduled = int(High) + 1

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case BelowMedium:
		return "below_medium"
	case Medium:
		return "medium"
	case AboveMedium:
		return "above_medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "priority(" + strconv.Itoa(int(p)) + ")"
	}
}

func (p Priority) scheduled() bool {
	return p >= Low && p <= High
}
