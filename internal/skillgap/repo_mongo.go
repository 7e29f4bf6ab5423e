package skillgap

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resume-intel/internal/shared/storage/mongodb"
)

const seqCounter = "skill_gap_seq"

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}

// MongoRepo implements Repo on a MongoDB collection. Sequence numbers come
// from the shared counters collection.
type MongoRepo struct {
	db  *mongo.Database
	col *mongo.Collection
}

// NewMongoRepo binds the repository to the skill-gap collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{db: db, col: db.Collection(mongodb.SkillGapCollection)}
}

func (r *MongoRepo) Create(ctx context.Context, a Analysis) (Analysis, error) {
	seq, err := mongodb.NextSequence(ctx, r.db, seqCounter)
	if err != nil {
		return Analysis{}, err
	}
	a.Seq = seq
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

func (r *MongoRepo) LatestForRole(ctx context.Context, userID, resumeID, roleKey string) (Analysis, error) {
	filter := bson.M{"user_id": userID, "resume_id": resumeID, "role_key": roleKey}
	return r.one(ctx, filter, options.FindOne().SetSort(newestFirst))
}

func (r *MongoRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	return r.one(ctx, bson.M{"_id": analysisID, "user_id": userID})
}

func (r *MongoRepo) one(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (Analysis, error) {
	var a Analysis
	err := r.col.FindOne(ctx, filter, opts...).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, err
	}
	return a, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	opts := options.Find().SetSort(newestFirst)
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
	out := []Analysis{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID, analysisID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": analysisID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MongoRepo)(nil)
