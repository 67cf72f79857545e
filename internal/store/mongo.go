package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pantryscout-discovery/internal/model"
)

// geoPoint is the GeoJSON shape Mongo's 2dsphere index requires;
// model.Point stays a plain (lng, lat) pair everywhere else in the
// core and only gets wrapped into this at the store boundary.
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

func toGeoPoint(p model.Point) geoPoint {
	return geoPoint{Type: "Point", Coordinates: []float64{p.Lng, p.Lat}}
}

func (g geoPoint) toPoint() model.Point {
	if len(g.Coordinates) != 2 {
		return model.Point{}
	}
	return model.Point{Lng: g.Coordinates[0], Lat: g.Coordinates[1]}
}

// pantryDoc is the Mongo-facing document shape: identical to
// model.Pantry except Point is replaced by a 2dsphere-indexable
// Location field.
type pantryDoc struct {
	ID               string               `bson:"_id,omitempty"`
	PlaceID          string               `bson:"place_id"`
	Name             string               `bson:"name"`
	Address          string               `bson:"address"`
	City             string               `bson:"city,omitempty"`
	State            string               `bson:"state,omitempty"`
	Location         geoPoint             `bson:"location"`
	Status           model.Status         `bson:"status"`
	HoursNotes       string               `bson:"hours_notes"`
	HoursToday       string               `bson:"hours_today"`
	EligibilityRules []string             `bson:"eligibility_rules"`
	IsIDRequired     bool                 `bson:"is_id_required"`
	ResidencyReq     *string              `bson:"residency_req,omitempty"`
	SpecialNotes     *string              `bson:"special_notes,omitempty"`
	Confidence       int                  `bson:"confidence"`
	InventoryStatus  model.InventoryStatus `bson:"inventory_status"`
	SourceURL        *string              `bson:"source_url,omitempty"`
	ScrapeMethod     string               `bson:"scrape_method,omitempty"`
	ScrapedAt        *time.Time           `bson:"scraped_at,omitempty"`
	LastUpdated      time.Time            `bson:"last_updated"`
}

func toDoc(p model.Pantry) pantryDoc {
	return pantryDoc{
		ID:               p.ID,
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		Address:          p.Address,
		City:             p.City,
		State:            p.State,
		Location:         toGeoPoint(p.Point),
		Status:           p.Status,
		HoursNotes:       p.HoursNotes,
		HoursToday:       p.HoursToday,
		EligibilityRules: p.EligibilityRules,
		IsIDRequired:     p.IsIDRequired,
		ResidencyReq:     p.ResidencyReq,
		SpecialNotes:     p.SpecialNotes,
		Confidence:       p.Confidence,
		InventoryStatus:  p.InventoryStatus,
		SourceURL:        p.SourceURL,
		ScrapeMethod:     p.ScrapeMethod,
		ScrapedAt:        p.ScrapedAt,
		LastUpdated:      p.LastUpdated,
	}
}

func fromDoc(d pantryDoc) model.Pantry {
	return model.Pantry{
		ID:               d.ID,
		PlaceID:          d.PlaceID,
		Name:             d.Name,
		Address:          d.Address,
		City:             d.City,
		State:            d.State,
		Point:            d.Location.toPoint(),
		Status:           d.Status,
		HoursNotes:       d.HoursNotes,
		HoursToday:       d.HoursToday,
		EligibilityRules: d.EligibilityRules,
		IsIDRequired:     d.IsIDRequired,
		ResidencyReq:     d.ResidencyReq,
		SpecialNotes:     d.SpecialNotes,
		Confidence:       d.Confidence,
		InventoryStatus:  d.InventoryStatus,
		SourceURL:        d.SourceURL,
		ScrapeMethod:     d.ScrapeMethod,
		ScrapedAt:        d.ScrapedAt,
		LastUpdated:      d.LastUpdated,
	}
}

// MongoStore is the default Store, backed by a single "pantries"
// collection with a 2dsphere index on location.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore connects to uri and ensures the geospatial index
// exists. ensureIndexes is idempotent and safe to call on every boot.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return NewMongoStoreFromClient(ctx, client, database)
}

// NewMongoStoreFromClient builds a store on an already-connected
// client, letting a caller share one client between this store and
// the places cache instead of opening two connections to the same
// cluster.
func NewMongoStoreFromClient(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	coll := client.Database(database).Collection("pantries")
	s := &MongoStore{coll: coll}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Client exposes the underlying mongo.Client so a caller can build
// other collections (like the places cache) against the same
// connection.
func (s *MongoStore) Client() *mongo.Client {
	return s.coll.Database().Client()
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "place_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("store: ensure indexes: %w", err)
	}
	return nil
}

// Upsert merges p into the existing record by PlaceID, preferring p's
// non-empty fields but never letting a zero value clobber data the
// store already has. Two concurrent inserts for a PlaceID neither side
// has seen yet race on the unique index; the loser retries once,
// re-reading the winner's record and merging into it instead of
// surfacing the duplicate-key error.
func (s *MongoStore) Upsert(ctx context.Context, p model.Pantry) (bool, error) {
	_, err := s.Get(ctx, p.PlaceID)
	if err == ErrNotFound {
		p.LastUpdated = time.Now()
		doc := toDoc(p)
		if _, err := s.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return s.mergeInto(ctx, p)
			}
			return false, fmt.Errorf("store: insert %s: %w", p.PlaceID, err)
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return s.mergeInto(ctx, p)
}

// mergeInto merges p into whatever record currently sits at p.PlaceID
// and replaces it. Used both by the normal merge path and by Upsert's
// duplicate-key retry.
func (s *MongoStore) mergeInto(ctx context.Context, p model.Pantry) (bool, error) {
	existing, err := s.Get(ctx, p.PlaceID)
	if err != nil {
		return false, fmt.Errorf("store: re-read %s after conflict: %w", p.PlaceID, err)
	}

	merged := mergeNonEmpty(existing, p)
	merged.LastUpdated = time.Now()
	doc := toDoc(merged)
	// Leave _id out of the replacement: the stored _id is an ObjectId
	// that reads back as a hex string, and replacing it with that string
	// would alter the immutable _id.
	doc.ID = ""
	_, err = s.coll.ReplaceOne(ctx, bson.M{"place_id": p.PlaceID}, doc)
	if err != nil {
		return false, fmt.Errorf("store: replace %s: %w", p.PlaceID, err)
	}
	return false, nil
}

// mergeNonEmpty keeps every field of base except where next supplies a
// non-zero value, implementing the "never overwrite with null" rule.
// Exceptions: a next status of UNKNOWN never replaces base's status,
// IsIDRequired always takes next's value, and InventoryStatus always
// keeps base's value.
func mergeNonEmpty(base, next model.Pantry) model.Pantry {
	out := base
	if next.Name != "" {
		out.Name = next.Name
	}
	if next.Address != "" {
		out.Address = next.Address
	}
	if next.City != "" {
		out.City = next.City
	}
	if next.State != "" {
		out.State = next.State
	}
	if next.Point.Lat != 0 || next.Point.Lng != 0 {
		out.Point = next.Point
	}
	if next.Status != "" && next.Status != model.StatusUnknown {
		out.Status = next.Status
	}
	if next.HoursNotes != "" {
		out.HoursNotes = next.HoursNotes
	}
	if next.HoursToday != "" {
		out.HoursToday = next.HoursToday
	}
	if len(next.EligibilityRules) > 0 {
		out.EligibilityRules = next.EligibilityRules
	}
	out.IsIDRequired = next.IsIDRequired
	if next.ResidencyReq != nil {
		out.ResidencyReq = next.ResidencyReq
	}
	if next.SpecialNotes != nil {
		out.SpecialNotes = next.SpecialNotes
	}
	if next.Confidence > 0 {
		out.Confidence = next.Confidence
	}
	if next.SourceURL != nil {
		out.SourceURL = next.SourceURL
	}
	if next.ScrapeMethod != "" {
		out.ScrapeMethod = next.ScrapeMethod
	}
	if next.ScrapedAt != nil {
		out.ScrapedAt = next.ScrapedAt
	}
	return out
}

func (s *MongoStore) Get(ctx context.Context, placeID string) (model.Pantry, error) {
	var doc pantryDoc
	err := s.coll.FindOne(ctx, bson.M{"place_id": placeID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return model.Pantry{}, ErrNotFound
	}
	if err != nil {
		return model.Pantry{}, fmt.Errorf("store: get %s: %w", placeID, err)
	}
	return fromDoc(doc), nil
}

func (s *MongoStore) Nearby(ctx context.Context, center model.Point, radiusMeters float64, limit int) ([]model.Pantry, error) {
	filter := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    toGeoPoint(center),
				"$maxDistance": radiusMeters,
			},
		},
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: nearby: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.Pantry
	for cur.Next(ctx) {
		var doc pantryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("store: decode nearby result: %w", err)
		}
		out = append(out, fromDoc(doc))
	}
	return out, cur.Err()
}

func (s *MongoStore) CountNear(ctx context.Context, center model.Point, radiusMeters float64) (int, error) {
	// CountDocuments runs its filter as an aggregation $match, which
	// rejects $nearSphere; $geoWithin/$centerSphere selects the same
	// circle. $centerSphere takes its radius in radians.
	const earthRadiusMeters = 6378100.0
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{center.Lng, center.Lat}, radiusMeters / earthRadiusMeters},
			},
		},
	}
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("store: count near: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) ListCities(ctx context.Context) ([]CityAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "city", Value: "$city"}, {Key: "state", Value: "$state"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_lng", Value: bson.D{{Key: "$avg", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$location.coordinates", 0}}}}}},
			{Key: "avg_lat", Value: bson.D{{Key: "$avg", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$location.coordinates", 1}}}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("store: list cities: %w", err)
	}
	defer cur.Close(ctx)

	var out []CityAggregate
	for cur.Next(ctx) {
		var row struct {
			ID struct {
				City  string `bson:"city"`
				State string `bson:"state"`
			} `bson:"_id"`
			Count  int     `bson:"count"`
			AvgLng float64 `bson:"avg_lng"`
			AvgLat float64 `bson:"avg_lat"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("store: decode city aggregate: %w", err)
		}
		if row.ID.City == "" {
			continue
		}
		out = append(out, CityAggregate{
			City:     row.ID.City,
			State:    row.ID.State,
			Count:    row.Count,
			Centroid: model.Point{Lng: row.AvgLng, Lat: row.AvgLat},
		})
	}
	return out, cur.Err()
}

// ListPantries returns every stored pantry matching the given city/state
// filter, either of which may be left empty to mean "any".
func (s *MongoStore) ListPantries(ctx context.Context, city, state string) ([]model.Pantry, error) {
	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}
	if state != "" {
		filter["state"] = state
	}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("store: list pantries: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.Pantry
	for cur.Next(ctx) {
		var doc pantryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("store: decode pantry: %w", err)
		}
		out = append(out, fromDoc(doc))
	}
	return out, cur.Err()
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}
