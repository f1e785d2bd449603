package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Result is one evaluation iteration ready for long-term storage. RunID
// groups all iterations of one `topdag eval` invocation.
type Result struct {
	RunID     string    `bson:"run_id" json:"run_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	TreeSize  int       `bson:"tree_size" json:"tree_size"`
	NumLabels int       `bson:"num_labels" json:"num_labels"`
	Seed      int64     `bson:"seed" json:"seed"`
	RePair    bool      `bson:"repair" json:"repair"`
	Info      DebugInfo `bson:"info" json:"info"`
}

// NewRunID returns a fresh identifier for an evaluation run.
func NewRunID() string { return uuid.NewString() }

// ResultSink receives evaluation results. Implementations must tolerate
// concurrent Record calls from evaluation workers.
type ResultSink interface {
	Record(ctx context.Context, r Result) error
	Close(ctx context.Context) error
}

// NullSink discards all results.
type NullSink struct{}

func (NullSink) Record(context.Context, Result) error { return nil }
func (NullSink) Close(context.Context) error          { return nil }

// MongoSink stores results in a MongoDB collection, one document per
// recorded result, for comparing evaluation batches over time.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to the given MongoDB URI and targets
// database/collection.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Record inserts one result document.
func (s *MongoSink) Record(ctx context.Context, r Result) error {
	_, err := s.coll.InsertOne(ctx, r)
	return err
}

// Close disconnects from MongoDB.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
