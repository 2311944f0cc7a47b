package repository

import (
	"context"
	"time"

	"github.com/bizpilot/bizpilot-be/types"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ModelLogRepo is the audit trail for model calls.
type ModelLogRepo interface {
	CreateLog(ctx context.Context, log *types.ModelLog) error
	ListLogs(ctx context.Context, operation string, limit int64) ([]*types.ModelLog, error)
}

type modelLogRepo struct {
	collection *mongo.Collection
}

func NewModelLogRepo(collection *mongo.Collection) ModelLogRepo {
	return &modelLogRepo{
		collection: collection,
	}
}

func (r *modelLogRepo) CreateLog(ctx context.Context, log *types.ModelLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = time.Now().Unix()
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *modelLogRepo) ListLogs(ctx context.Context, operation string, limit int64) ([]*types.ModelLog, error) {
	filter := bson.M{}
	if operation != "" {
		filter["operation"] = operation
	}
	cursor, err := r.collection.Find(ctx, filter, mongoFindOptions(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*types.ModelLog
	for cursor.Next(ctx) {
		var log types.ModelLog
		if err := cursor.Decode(&log); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, nil
}
