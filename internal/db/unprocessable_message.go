package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/algem/liquid-staking-service/internal/db/model"
)

func (db *Database) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	doc := model.NewUnprocessableMessageDocument(messageBody, receipt, time.Now())
	_, err := db.collection(model.UnprocessableMsgCollection).InsertOne(ctx, doc)
	return err
}

// FindUnprocessableMessages returns the saved messages oldest first, so a
// replay keeps the order in which they failed.
func (db *Database) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := db.collection(model.UnprocessableMsgCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []model.UnprocessableMessageDocument
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (db *Database) DeleteUnprocessableMessage(ctx context.Context, receipt string) error {
	res, err := db.collection(model.UnprocessableMsgCollection).DeleteOne(ctx, bson.M{"receipt": receipt})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{Key: receipt, Message: "unprocessable message not found"}
	}
	return nil
}
