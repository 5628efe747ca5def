package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type slotDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoSlot struct {
	collection *mongo.Collection
}

func NewMongoSlot(db *mongo.Database) *MongoSlot {
	return &MongoSlot{
		collection: db.Collection("cart_slots"),
	}
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m *MongoSlot) Load(ctx context.Context, key string) ([]byte, error) {
	var doc slotDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEmptySlot
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return doc.Data, nil
}

func (m *MongoSlot) Save(ctx context.Context, key string, data []byte) error {
	doc := slotDocument{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

func (m *MongoSlot) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// CreateIndexes expires slots untouched for ttl.
func (m *MongoSlot) CreateIndexes(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if ttl.Seconds() > math.MaxInt32 {
		return fmt.Errorf("slot ttl %s exceeds the index limit", ttl)
	}
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	}
	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
