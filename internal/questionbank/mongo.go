package questionbank

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBank reads questions from a MongoDB collection.
type MongoBank struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongoBank(ctx context.Context, uri, database string) (*MongoBank, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	col := client.Database(database).Collection("questions")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "stage", Value: 1}, {Key: "difficulty", Value: 1}},
	})

	return &MongoBank{client: client, col: col}, nil
}

// Seed inserts the given questions when the collection is empty.
func (b *MongoBank) Seed(ctx context.Context, questions []Question) (int, error) {
	count, err := b.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		docs[i] = q
	}
	res, err := b.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (b *MongoBank) Next(ctx context.Context, q Query) (*Question, error) {
	passes := []bson.D{
		filter(q.Stage, q.Difficulty, q.Exclude),
		filter(q.Stage, "", q.Exclude),
		filter("", q.Difficulty, q.Exclude),
		filter("", "", q.Exclude),
	}
	for _, f := range passes {
		var out Question
		err := b.col.FindOne(ctx, f, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&out)
		if err == nil {
			return &out, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}
	return nil, ErrNoQuestion
}

func (b *MongoBank) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

func filter(stage, difficulty string, exclude []string) bson.D {
	f := bson.D{}
	if stage != "" {
		f = append(f, bson.E{Key: "stage", Value: stage})
	}
	if difficulty != "" {
		f = append(f, bson.E{Key: "difficulty", Value: difficulty})
	}
	if len(exclude) > 0 {
		f = append(f, bson.E{Key: "text", Value: bson.M{"$nin": exclude}})
	}
	return f
}
