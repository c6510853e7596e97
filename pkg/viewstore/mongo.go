package viewstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps views in a MongoDB collection, keyed by view name.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // defaults to "driftview"
	Collection string // defaults to "views"
}

// mongoEntry is the stored document shape.
type mongoEntry struct {
	Name string `bson:"_id"`
	View View   `bson:"view"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "driftview"
	}
	if cfg.Collection == "" {
		cfg.Collection = "views"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo %s: %w", cfg.URI, err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Save stores a view under a name, replacing any previous view.
func (s *MongoStore) Save(ctx context.Context, name string, v View) error {
	_, err := s.collection.ReplaceOne(
		ctx,
		bson.M{"_id": name},
		mongoEntry{Name: name, View: v},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Load retrieves a view by name.
func (s *MongoStore) Load(ctx context.Context, name string) (View, error) {
	var entry mongoEntry
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, err
	}
	return entry.View, nil
}

// Delete removes a view. Deleting an absent view is not an error.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": name})
	return err
}

// List returns the stored view names.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cursor.Err()
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
