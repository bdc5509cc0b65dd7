package stakingmodule

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

type JournalOp string

const (
	OpBond   JournalOp = "bond"
	OpUnbond JournalOp = "unbond"
)

type JournalEntry struct {
	Op     JournalOp
	Amount sdkmath.Int
}

// Journal records the bond and unbond calls that reached the wrapped module.
// A remote module keeps its funds when the ledger change that caused a call
// is thrown away, so the caller undoes the recorded calls with Compensate.
// It is not safe for concurrent use.
type Journal struct {
	Module
	entries []JournalEntry
}

func NewJournal(m Module) *Journal {
	return &Journal{Module: m}
}

func (j *Journal) Bond(ctx context.Context, amount sdkmath.Int) error {
	if err := j.Module.Bond(ctx, amount); err != nil {
		return err
	}
	j.entries = append(j.entries, JournalEntry{Op: OpBond, Amount: amount})
	return nil
}

func (j *Journal) Unbond(ctx context.Context, amount sdkmath.Int) error {
	if err := j.Module.Unbond(ctx, amount); err != nil {
		return err
	}
	j.entries = append(j.entries, JournalEntry{Op: OpUnbond, Amount: amount})
	return nil
}

// Reset forgets the recorded calls once their ledger change is committed.
func (j *Journal) Reset() {
	j.entries = nil
}

func (j *Journal) Entries() []JournalEntry {
	return append([]JournalEntry(nil), j.entries...)
}

// Compensate undoes the recorded calls newest first. On failure the calls
// that are still not undone stay recorded and are returned with the error.
func (j *Journal) Compensate(ctx context.Context) ([]JournalEntry, error) {
	for len(j.entries) > 0 {
		last := j.entries[len(j.entries)-1]
		var err error
		switch last.Op {
		case OpBond:
			err = j.Module.Unbond(ctx, last.Amount)
		case OpUnbond:
			err = j.Module.Bond(ctx, last.Amount)
		}
		if err != nil {
			return j.Entries(), fmt.Errorf("undo %s of %s: %w", last.Op, last.Amount, err)
		}
		j.entries = j.entries[:len(j.entries)-1]
	}
	return nil, nil
}
