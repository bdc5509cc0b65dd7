package model

import (
	"context"
	"fmt"
	"time"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// index keys are ordered: compound indexes depend on field order.
type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	LedgerEventCollection: {
		{Keys: bson.D{{Key: "seq", Value: 1}}, Unique: true},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "seq", Value: 1}}},
	},
	EraShotCollection: {
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "utility", Value: 1}, {Key: "_id", Value: 1}}},
	},
	UnprocessableMsgCollection: {
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "receipt", Value: 1}}},
	},
	EraCollection:         nil,
	LedgerStateCollection: nil,
}

// Setup creates the collections and their indexes. It is idempotent: an
// existing collection is left alone and identical indexes are no-ops.
func Setup(ctx context.Context, cfg *config.Config) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Db.Address))
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect setup client")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.Db.DbName)
	for name, idxs := range collections {
		if err := ensureCollection(ctx, database, name); err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, database.Collection(name), idxs); err != nil {
			return fmt.Errorf("indexes on %s: %w", name, err)
		}
	}

	log.Info().Int("collections", len(collections)).Msg("database setup complete")
	return nil
}

func ensureCollection(ctx context.Context, database *mongo.Database, name string) error {
	names, err := database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return nil
	}
	if err := database.CreateCollection(ctx, name); err != nil {
		return err
	}
	log.Debug().Str("collection", name).Msg("collection created")
	return nil
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection, idxs []index) error {
	models := make([]mongo.IndexModel, 0, len(idxs))
	for _, idx := range idxs {
		if len(idx.Keys) == 0 {
			continue
		}
		models = append(models, mongo.IndexModel{
			Keys:    idx.Keys,
			Options: options.Index().SetUnique(idx.Unique),
		})
	}
	if len(models) == 0 {
		return nil
	}
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Debug().Str("collection", coll.Name()).Strs("indexes", names).Msg("indexes ensured")
	return nil
}
