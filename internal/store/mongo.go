package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/daycast/backend/internal/models"
)

// ErrNoDocument is returned by single-document reads when nothing
// matches the filter. Callers translate it into their own not-found
// error so existence never leaks past the ownership filter.
var ErrNoDocument = errors.New("store: no matching document")

// YearMonthCount is one bucket of the year/month aggregation.
type YearMonthCount struct {
	Year  int `bson:"year"`
	Month int `bson:"month"`
	Count int `bson:"count"`
}

// MongoStore handles event CRUD and aggregation in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("events")}
}

// Insert persists a new event and returns it with its assigned id.
func (s *MongoStore) Insert(ctx context.Context, ev *models.Event) (*models.Event, error) {
	res, err := s.col.InsertOne(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	ev.ID = res.InsertedID.(primitive.ObjectID)
	return ev, nil
}

// FindMany returns all events matching the filter, optionally sorted and
// limited. A nil sort leaves order unspecified; limit <= 0 means no limit.
func (s *MongoStore) FindMany(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.Event, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return events, nil
}

// FindOne returns the single event matching the filter, or ErrNoDocument.
func (s *MongoStore) FindOne(ctx context.Context, filter bson.M) (*models.Event, error) {
	var ev models.Event
	err := s.col.FindOne(ctx, filter).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	return &ev, nil
}

// UpdateOne applies a $set patch to the event matching the filter and
// returns the updated document, or ErrNoDocument if nothing matched.
func (s *MongoStore) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*models.Event, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ev models.Event
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update: %w", err)
	}
	return &ev, nil
}

// DeleteOne removes the event matching the filter. Returns ErrNoDocument
// when nothing matched.
func (s *MongoStore) DeleteOne(ctx context.Context, filter bson.M) error {
	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// Count returns the number of events matching the filter.
func (s *MongoStore) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo count: %w", err)
	}
	return n, nil
}

// FindPreviews returns matching events projected to (title, start,
// location), sorted start-ascending and limited.
func (s *MongoStore) FindPreviews(ctx context.Context, filter bson.M, limit int64) ([]models.EventPreview, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"title": 1, "start": 1, "location": 1})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find previews: %w", err)
	}
	defer cur.Close(ctx)

	var previews []models.EventPreview
	if err := cur.All(ctx, &previews); err != nil {
		return nil, fmt.Errorf("mongo decode previews: %w", err)
	}
	return previews, nil
}

// GroupByYearMonth tallies matching events into (year, month) buckets of
// the given date field, ascending chronologically.
func (s *MongoStore) GroupByYearMonth(ctx context.Context, filter bson.M, dateField string) ([]YearMonthCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$" + dateField},
				"month": bson.M{"$month": "$" + dateField},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"count": 1,
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo aggregate: %w", err)
	}
	defer cur.Close(ctx)

	var buckets []YearMonthCount
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("mongo decode buckets: %w", err)
	}
	return buckets, nil
}
