package conversations

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resume-intel/internal/shared/storage/mongodb"
)

// MongoRepo implements Repo with one document per conversation. A turn is
// appended with a single $push, which MongoDB applies atomically.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo binds the repository to the conversations collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection(mongodb.ConversationsCollection)}
}

func (r *MongoRepo) Create(ctx context.Context, c Conversation) error {
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, userID, conversationID string) (Conversation, error) {
	var c Conversation
	err := r.col.FindOne(ctx, bson.M{"_id": conversationID, "user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	return c, nil
}

func (r *MongoRepo) AppendTurn(ctx context.Context, userID, conversationID string, turn Turn, at time.Time) (Conversation, error) {
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": []Message{turn.User, turn.Assistant}}},
		"$set":  bson.M{"updated_at": at.UTC()},
	}
	var c Conversation
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": conversationID, "user_id": userID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	return c, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(offset)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.M{
		"user_id":       1,
		"resume_id":     1,
		"title":         1,
		"created_at":    1,
		"updated_at":    1,
		"message_count": bson.M{"$size": "$messages"},
	}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID           string    `bson:"_id"`
		UserID       string    `bson:"user_id"`
		ResumeID     string    `bson:"resume_id"`
		Title        string    `bson:"title"`
		MessageCount int       `bson:"message_count"`
		CreatedAt    time.Time `bson:"created_at"`
		UpdatedAt    time.Time `bson:"updated_at"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		out = append(out, Summary{
			ID:           d.ID,
			UserID:       d.UserID,
			ResumeID:     d.ResumeID,
			Title:        d.Title,
			MessageCount: d.MessageCount,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		})
	}
	return out, nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID, conversationID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": conversationID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MongoRepo)(nil)
