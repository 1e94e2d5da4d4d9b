package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "maps"

// MongoStore persists documents in a mongodb collection, keyed by the
// unique "name" field. The zero value is not usable - use
// [NewMongoStore].
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to the mongodb deployment described by cfg
// and verifies the connection before returning.
func NewMongoStore(ctx context.Context, cfg Config) (*MongoStore, error) {
	uri := cfg.URI
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	db := cfg.Database
	if db == "" {
		db = "nest"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	coll := client.Database(db).Collection(mongoCollection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ensuring name index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Load retrieves a document by name.
func (s *MongoStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading map %q: %w", name, err)
	}
	return &doc, nil
}

// Save stores a document, overwriting any previous version.
func (s *MongoStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateName(doc.Name); err != nil {
		return err
	}
	doc.UpdatedAt = time.Now().UTC()
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"name": doc.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("writing map %q: %w", doc.Name, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent name is a no-op.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("deleting map %q: %w", name, err)
	}
	return nil
}

// List returns summaries of all stored documents, sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	defer cur.Close(ctx)

	infos := make([]Info, 0)
	for cur.Next(ctx) {
		var doc Document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding listing: %w", err)
		}
		infos = append(infos, Info{
			Name:      doc.Name,
			UpdatedAt: doc.UpdatedAt,
			Nodes:     len(doc.Map.Nodes),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close disconnects from mongodb.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
