package model

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

const LedgerEventCollection = "ledger_events"

type LedgerEventDocument struct {
	ID        string  `bson:"_id"`
	Seq       uint64  `bson:"seq"`
	Type      string  `bson:"type"`
	Era       uint64  `bson:"era"`
	User      string  `bson:"user"`
	To        string  `bson:"to,omitempty"`
	Amount    string  `bson:"amount"`
	Immediate bool    `bson:"immediate,omitempty"`
	Utility   string  `bson:"utility,omitempty"`
	RequestID *uint64 `bson:"request_id,omitempty"`
	CreatedAt int64   `bson:"created_at"`
}

// LedgerEventCursor resumes a listing after the event with Seq. It travels
// as an opaque url-safe token.
type LedgerEventCursor struct {
	Seq uint64 `json:"seq"`
}

func BuildLedgerEventPaginationToken(d LedgerEventDocument) (string, error) {
	raw, err := json.Marshal(LedgerEventCursor{Seq: d.Seq})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeLedgerEventPaginationToken(token string) (*LedgerEventCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var cursor LedgerEventCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, err
	}
	// sequence numbers start at one
	if cursor.Seq == 0 {
		return nil, errors.New("empty ledger event cursor")
	}
	return &cursor, nil
}
