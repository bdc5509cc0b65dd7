package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/algem/liquid-staking-service/internal/config"
)

type Database struct {
	DbName string
	Client *mongo.Client
	cfg    config.DbConfig
}

// DbResultMap is one page of a listing. PaginationToken is empty on the
// last page.
type DbResultMap[T any] struct {
	Data            []T    `json:"data"`
	PaginationToken string `json:"paginationToken"`
}

func New(ctx context.Context, cfg config.DbConfig) (*Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Address))
	if err != nil {
		return nil, err
	}

	return &Database{
		DbName: cfg.DbName,
		Client: client,
		cfg:    cfg,
	}, nil
}

// Ping checks the primary, since every ledger write is a transaction.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

func (db *Database) collection(name string) *mongo.Collection {
	return db.Client.Database(db.DbName).Collection(name)
}

// pageLimit is what a listing query should fetch: one more than the page
// size, so the extra document tells whether a next page exists.
func (db *Database) pageLimit() int64 {
	return db.cfg.MaxPaginationLimit + 1
}

// toResultMapWithPaginationToken trims a result fetched with pageLimit to
// one page and sets the token only when more documents follow.
func toResultMapWithPaginationToken[T any](
	cfg config.DbConfig, result []T, paginationKeyBuilder func(T) (string, error),
) (*DbResultMap[T], error) {
	if int64(len(result)) <= cfg.MaxPaginationLimit {
		return &DbResultMap[T]{Data: result}, nil
	}

	page := result[:cfg.MaxPaginationLimit]
	paginationToken, err := paginationKeyBuilder(page[len(page)-1])
	if err != nil {
		return nil, err
	}
	return &DbResultMap[T]{
		Data:            page,
		PaginationToken: paginationToken,
	}, nil
}
