package repository

import (
	"context"
	"time"

	"github.com/bizpilot/bizpilot-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type LeadRepo interface {
	CreateLead(ctx context.Context, lead *types.Lead) error
	GetLead(ctx context.Context, id string) (*types.Lead, error)
	ListLeads(ctx context.Context, intent types.LeadIntent, limit int64) ([]*types.Lead, error)
	UpdateClassification(ctx context.Context, id string, c types.Classification) error
	TouchLastContact(ctx context.Context, id string) error
}

type leadRepo struct {
	collection *mongo.Collection
}

func NewLeadRepo(collection *mongo.Collection) LeadRepo {
	return &leadRepo{
		collection: collection,
	}
}

func (r *leadRepo) CreateLead(ctx context.Context, lead *types.Lead) error {
	now := time.Now().Unix()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, lead)
	return err
}

func (r *leadRepo) GetLead(ctx context.Context, id string) (*types.Lead, error) {
	var lead types.Lead
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lead)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) ListLeads(ctx context.Context, intent types.LeadIntent, limit int64) ([]*types.Lead, error) {
	filter := bson.M{}
	if intent != "" {
		filter["intent"] = intent
	}
	opts := mongoFindOptions(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []*types.Lead
	for cursor.Next(ctx) {
		var lead types.Lead
		if err := cursor.Decode(&lead); err != nil {
			return nil, err
		}
		leads = append(leads, &lead)
	}
	return leads, nil
}

func (r *leadRepo) UpdateClassification(ctx context.Context, id string, c types.Classification) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"intent":                c.Intent,
			"intent_confidence":     c.Confidence,
			"classification_reason": c.Reason,
			"updated_at":            time.Now().Unix(),
		},
	})
	return err
}

func (r *leadRepo) TouchLastContact(ctx context.Context, id string) error {
	now := time.Now().Unix()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"last_contact_at": now,
			"updated_at":      now,
		},
	})
	return err
}
