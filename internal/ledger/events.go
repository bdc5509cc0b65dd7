package ledger

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

type EventType string

const (
	EventStaked          EventType = "Staked"
	EventUnstaked        EventType = "Unstaked"
	EventWithdrawn       EventType = "Withdrawn"
	EventClaimed         EventType = "Claimed"
	EventEraSynced       EventType = "EraSynced"
	EventRevenueWithdraw EventType = "RevenueWithdrawn"
	EventTransfer        EventType = "Transfer"
)

// Event is a domain event emitted by a successful mutation. To is only set
// on transfers.
type Event struct {
	Type      EventType      `json:"type"`
	Era       uint64         `json:"era"`
	User      common.Address `json:"user"`
	To        common.Address `json:"to"`
	Amount    sdkmath.Int    `json:"amount"`
	Immediate bool           `json:"immediate,omitempty"`
	Utility   string         `json:"utility,omitempty"`
	RequestID *uint64        `json:"request_id,omitempty"`
}

// EventLog buffers events until the caller drains them.
type EventLog struct {
	pending []Event
}

func (l *EventLog) Append(e Event) {
	l.pending = append(l.pending, e)
}

// Drain returns the buffered events in emission order and clears the buffer.
func (l *EventLog) Drain() []Event {
	out := l.pending
	l.pending = nil
	return out
}

func (l *EventLog) Len() int {
	return len(l.pending)
}
