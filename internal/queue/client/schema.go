package client

const (
	EraSyncEventType EventType = "era_sync"
	EraShotEventType EventType = "era_shot"
	LedgerEventType  EventType = "ledger_event"
)

type EventType string

type EventMessage interface {
	GetEventType() EventType
}

// EraSyncEvent asks the engine to catch up to Era. Zero means the current
// era of the staking module.
type EraSyncEvent struct {
	EventType EventType `json:"event_type"`
	Era       uint64    `json:"era"`
}

func (e EraSyncEvent) GetEventType() EventType {
	return EraSyncEventType
}

func NewEraSyncEvent(era uint64) EraSyncEvent {
	return EraSyncEvent{
		EventType: EraSyncEventType,
		Era:       era,
	}
}

type EraShotEvent struct {
	EventType EventType `json:"event_type"`
	User      string    `json:"user"`
	Utility   string    `json:"utility"`
	Dnt       string    `json:"dnt"`
}

func (e EraShotEvent) GetEventType() EventType {
	return EraShotEventType
}

func NewEraShotEvent(user, utility, dnt string) EraShotEvent {
	return EraShotEvent{
		EventType: EraShotEventType,
		User:      user,
		Utility:   utility,
		Dnt:       dnt,
	}
}

// LedgerEvent is a domain event published after it was persisted.
type LedgerEvent struct {
	EventType EventType `json:"event_type"`
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Type      string    `json:"type"`
	Era       uint64    `json:"era"`
	User      string    `json:"user"`
	To        string    `json:"to,omitempty"`
	Amount    string    `json:"amount"`
	Immediate bool      `json:"immediate,omitempty"`
	Utility   string    `json:"utility,omitempty"`
	RequestID *uint64   `json:"request_id,omitempty"`
	CreatedAt int64     `json:"created_at"`
}

func (e LedgerEvent) GetEventType() EventType {
	return LedgerEventType
}
