package db

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/algem/liquid-staking-service/internal/db/model"
)

func (db *Database) LoadLedgerState(ctx context.Context) (*model.LedgerStateDocument, error) {
	client := db.collection(model.LedgerStateCollection)
	var state model.LedgerStateDocument
	err := client.FindOne(ctx, bson.M{"_id": model.LedgerStateID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.LedgerStateID,
				Message: "Ledger state not found",
			}
		}
		return nil, err
	}
	return &state, nil
}

// SaveLedgerState replaces the ledger document of version state.Version-1
// and appends the records in the same transaction. Version 1 creates the
// document.
func (db *Database) SaveLedgerState(
	ctx context.Context, state *model.LedgerStateDocument, records *model.LedgerRecords,
) error {
	stateClient := db.collection(model.LedgerStateCollection)
	if records == nil {
		records = &model.LedgerRecords{}
	}

	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		if state.Version <= 1 {
			if _, err := stateClient.InsertOne(sessCtx, state); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return nil, &VersionConflictError{Expected: 0}
				}
				return nil, err
			}
		} else {
			filter := bson.M{"_id": state.ID, "version": state.Version - 1}
			result, err := stateClient.ReplaceOne(sessCtx, filter, state)
			if err != nil {
				return nil, err
			}
			if result.MatchedCount == 0 {
				return nil, &VersionConflictError{Expected: state.Version - 1}
			}
		}

		if err := insertAll(sessCtx, db.collection(model.LedgerEventCollection), records.Events); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, &DuplicateKeyError{Key: records.Events[0].ID, Message: "ledger event already exists"}
			}
			return nil, err
		}
		if err := insertAll(sessCtx, db.collection(model.EraCollection), records.Eras); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, &DuplicateKeyError{
					Key:     strconv.FormatUint(records.Eras[0].Era, 10),
					Message: "era already exists",
				}
			}
			return nil, err
		}
		if err := insertAll(sessCtx, db.collection(model.EraShotCollection), records.EraShots); err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, err := TxWithRetries(ctx, &dbTransactionClient{db.Client}, transactionWork)
	return err
}

func insertAll[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, d)
	}
	_, err := coll.InsertMany(ctx, batch)
	return err
}
