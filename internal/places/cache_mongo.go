package places

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pantryscout-discovery/internal/model"
)

// MongoCache is the default places cache, a collection keyed by
// fingerprint with a TTL index so Mongo reaps expired entries itself
// instead of the core having to sweep for them.
type MongoCache struct {
	coll *mongo.Collection
}

type cacheDoc struct {
	Fingerprint string            `bson:"_id"`
	Candidates  []model.Candidate `bson:"candidates"`
	CreatedAt   time.Time         `bson:"created_at"`
	ExpiresAt   time.Time         `bson:"expires_at"`
}

// NewMongoCache ensures the TTL index on expires_at exists before
// returning, so a missed call site can't accidentally skip it.
func NewMongoCache(ctx context.Context, client *mongo.Client, database string) (*MongoCache, error) {
	coll := client.Database(database).Collection("places_cache")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("places cache: ensure ttl index: %w", err)
	}
	return &MongoCache{coll: coll}, nil
}

func (c *MongoCache) Get(ctx context.Context, fingerprint string) (model.CandidateSet, bool, error) {
	var doc cacheDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": fingerprint}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return model.CandidateSet{}, false, nil
	}
	if err != nil {
		return model.CandidateSet{}, false, fmt.Errorf("places cache: get %s: %w", fingerprint, err)
	}
	if time.Now().After(doc.ExpiresAt) {
		return model.CandidateSet{}, false, nil
	}
	return model.CandidateSet{Fingerprint: doc.Fingerprint, Candidates: doc.Candidates, CreatedAt: doc.CreatedAt}, true, nil
}

func (c *MongoCache) Set(ctx context.Context, set model.CandidateSet, ttl time.Duration) error {
	doc := cacheDoc{
		Fingerprint: set.Fingerprint,
		Candidates:  set.Candidates,
		CreatedAt:   set.CreatedAt,
		ExpiresAt:   set.CreatedAt.Add(ttl),
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": set.Fingerprint}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("places cache: set %s: %w", set.Fingerprint, err)
	}
	return nil
}
