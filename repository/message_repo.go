package repository

import (
	"context"
	"time"

	"github.com/bizpilot/bizpilot-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MessageRepo interface {
	CreateMessage(ctx context.Context, message *types.Message) error
	GetMessage(ctx context.Context, id string) (*types.Message, error)
	ListMessages(ctx context.Context, status types.MessageStatus, limit int64) ([]*types.Message, error)
	UpdateStatus(ctx context.Context, id string, status types.MessageStatus) error
	ApplyEdit(ctx context.Context, id, subject, body string) error
	MarkSent(ctx context.Context, id, sentVia, externalID string) error
}

type messageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepo(collection *mongo.Collection) MessageRepo {
	return &messageRepo{
		collection: collection,
	}
}

func mongoFindOptions(limit int64) options.Lister[options.FindOptions] {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	return opts
}

func (r *messageRepo) CreateMessage(ctx context.Context, message *types.Message) error {
	now := time.Now().Unix()
	message.CreatedAt = now
	message.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

func (r *messageRepo) GetMessage(ctx context.Context, id string) (*types.Message, error) {
	var message types.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepo) ListMessages(ctx context.Context, status types.MessageStatus, limit int64) ([]*types.Message, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, mongoFindOptions(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*types.Message
	for cursor.Next(ctx) {
		var message types.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}
	return messages, nil
}

func (r *messageRepo) UpdateStatus(ctx context.Context, id string, status types.MessageStatus) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().Unix(),
		},
	})
	return err
}

func (r *messageRepo) ApplyEdit(ctx context.Context, id, subject, body string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"subject":      subject,
			"body":         body,
			"status":       types.MessageEdited,
			"human_edited": true,
			"updated_at":   time.Now().Unix(),
		},
		"$inc": bson.M{"edit_count": 1},
	})
	return err
}

func (r *messageRepo) MarkSent(ctx context.Context, id, sentVia, externalID string) error {
	now := time.Now().Unix()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":      types.MessageSent,
			"sent_at":     now,
			"sent_via":    sentVia,
			"external_id": externalID,
			"updated_at":  now,
		},
	})
	return err
}
