package model

const (
	LedgerStateCollection = "ledger_state"
	// LedgerStateID is the id of the single ledger state document.
	LedgerStateID = "ledger"
)

// LedgerStateDocument holds the serialized ledger. Version increases by one
// on every save and guards against concurrent writers.
type LedgerStateDocument struct {
	ID            string `bson:"_id"`
	Version       uint64 `bson:"version"`
	LastSyncedEra uint64 `bson:"last_synced_era"`
	EventSeq      uint64 `bson:"event_seq"`
	State         string `bson:"state"`
	UpdatedAt     int64  `bson:"updated_at"`
}
