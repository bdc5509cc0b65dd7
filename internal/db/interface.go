package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/algem/liquid-staking-service/internal/db/model"
)

type DBClient interface {
	Ping(ctx context.Context) error
	// LoadLedgerState returns a NotFoundError when no ledger was saved yet.
	LoadLedgerState(ctx context.Context) (*model.LedgerStateDocument, error)
	// SaveLedgerState stores the state and appends the records atomically.
	// A VersionConflictError means another writer saved first.
	SaveLedgerState(
		ctx context.Context, state *model.LedgerStateDocument, records *model.LedgerRecords,
	) error
	FindLedgerEvents(
		ctx context.Context, filter LedgerEventFilter, paginationToken string,
	) (*DbResultMap[model.LedgerEventDocument], error)
	// FindEra returns a NotFoundError for an era that was not synced.
	FindEra(ctx context.Context, era uint64) (*model.EraDocument, error)
	FindEraShots(ctx context.Context, user, utility string) ([]model.EraShotDocument, error)
	SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error
	// FindUnprocessableMessages returns saved messages oldest first.
	FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error)
	// DeleteUnprocessableMessage returns a NotFoundError for an unknown receipt.
	DeleteUnprocessableMessage(ctx context.Context, receipt string) error
}

type LedgerEventFilter struct {
	User string
	Type string
}

type DBTransactionClient interface {
	StartSession(opts ...*options.SessionOptions) (DBSession, error)
}

type DBSession interface {
	EndSession(ctx context.Context)
	WithTransaction(
		ctx context.Context,
		fn func(sessCtx mongo.SessionContext) (interface{}, error),
		opts ...*options.TransactionOptions,
	) (interface{}, error)
}
