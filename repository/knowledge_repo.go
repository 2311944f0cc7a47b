package repository

import (
	"context"
	"time"

	"github.com/bizpilot/bizpilot-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type KnowledgeRepo interface {
	CreateDocument(ctx context.Context, doc *types.KnowledgeDocument) error
	ListActive(ctx context.Context) ([]*types.KnowledgeDocument, error)
	Count(ctx context.Context) (int64, error)
	SetEmbeddingID(ctx context.Context, id, embeddingID string) error
	SetActive(ctx context.Context, id string, active bool) error
	DeleteDocument(ctx context.Context, id string) error
}

type knowledgeRepo struct {
	collection *mongo.Collection
}

func NewKnowledgeRepo(collection *mongo.Collection) KnowledgeRepo {
	return &knowledgeRepo{
		collection: collection,
	}
}

func (r *knowledgeRepo) CreateDocument(ctx context.Context, doc *types.KnowledgeDocument) error {
	now := time.Now().Unix()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *knowledgeRepo) ListActive(ctx context.Context) ([]*types.KnowledgeDocument, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*types.KnowledgeDocument
	for cursor.Next(ctx) {
		var doc types.KnowledgeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

func (r *knowledgeRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *knowledgeRepo) SetEmbeddingID(ctx context.Context, id, embeddingID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"embedding_id": embeddingID,
			"updated_at":   time.Now().Unix(),
		},
	})
	return err
}

func (r *knowledgeRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"active":     active,
			"updated_at": time.Now().Unix(),
		},
	})
	return err
}

func (r *knowledgeRepo) DeleteDocument(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
