package resumes

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resume-intel/internal/engine"
	"resume-intel/internal/shared/storage/mongodb"
)

// MongoRepo implements Repo on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo binds the repository to the resumes collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection(mongodb.ResumesCollection)}
}

func (r *MongoRepo) Create(ctx context.Context, res Resume) error {
	if res.JobRecommendations == nil {
		res.JobRecommendations = []engine.JobRecommendation{}
	}
	_, err := r.col.InsertOne(ctx, res)
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	var res Resume
	err := r.col.FindOne(ctx, bson.M{"_id": resumeID, "user_id": userID}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	return res, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	out := []Resume{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID, resumeID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": resumeID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MongoRepo)(nil)
