package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	EraCollection     = "eras"
	EraShotCollection = "era_shots"
)

// EraDocument is one synced era. Amounts are decimal strings.
type EraDocument struct {
	Era               uint64 `bson:"_id"`
	Reward            string `bson:"reward"`
	Fee               string `bson:"fee"`
	Distributed       string `bson:"distributed"`
	Dust              string `bson:"dust"`
	TotalAllocated    string `bson:"total_allocated"`
	AccRewardPerToken string `bson:"acc_reward_per_token"`
	CreatedAt         int64  `bson:"created_at"`
}

// EraShotDocument is one balance snapshot of a user in a utility. The id is
// assigned on insert and orders the shots of a user.
type EraShotDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      string             `bson:"user"`
	Utility   string             `bson:"utility"`
	Era       uint64             `bson:"era"`
	Balance   string             `bson:"balance"`
	Rewards   string             `bson:"rewards"`
	CreatedAt int64              `bson:"created_at"`
}

// LedgerRecords is what one ledger change appends next to its new state.
type LedgerRecords struct {
	Events   []LedgerEventDocument
	Eras     []EraDocument
	EraShots []EraShotDocument
}
