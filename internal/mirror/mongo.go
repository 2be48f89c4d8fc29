package mirror

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/example/facts/config"
	"github.com/example/facts/internal/record"
)

// Mongo mirrors ingested records into a MongoDB database, one collection per
// record kind. Mirroring is best-effort and fully independent of the JSON
// store: a write failure is reported per request, a connection failure at
// startup disables the mirror for the process lifetime.
type Mongo struct {
	client      *mongo.Client
	database    string
	collections map[record.Kind]*mongo.Collection
	logger      *log.Logger
	enabled     bool
}

// timestampLayouts are tried in order when coercing a wire timestamp string
// to a native time.Time. The naive layout covers clients that omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// New connects the mirror when it is enabled in the configuration. A failed
// connect or ping logs once and yields a disabled mirror; there is no
// reconnect loop, a restart is required to re-enable mirroring.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) *Mongo {
	m := &Mongo{logger: logger, database: cfg.MongoDB}
	if !cfg.MongoEnabled {
		return m
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Printf("Failed to connect to MongoDB, mirroring disabled: %v", err)
		return m
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Printf("Failed to ping MongoDB, mirroring disabled: %v", err)
		_ = client.Disconnect(ctx)
		return m
	}

	db := client.Database(cfg.MongoDB)
	m.client = client
	m.collections = map[record.Kind]*mongo.Collection{
		record.KindSensor:   db.Collection(cfg.MongoSensorCollection),
		record.KindActivity: db.Collection(cfg.MongoCVCollection),
	}
	m.enabled = true
	logger.Printf("Connected to MongoDB: %s (db=%s)", cfg.MongoURI, cfg.MongoDB)
	return m
}

// Enabled reports whether the mirror accepted its startup ping.
func (m *Mongo) Enabled() bool {
	return m.enabled
}

// Database returns the mirror database name, or "" when disabled.
func (m *Mongo) Database() string {
	if !m.enabled {
		return ""
	}
	return m.database
}

// Save inserts rec into the kind's collection. Each submission produces a
// new document; there is no upsert or deduplication. Returns false when the
// mirror is disabled or the insert fails.
func (m *Mongo) Save(ctx context.Context, kind record.Kind, rec record.Record) bool {
	if !m.enabled {
		return false
	}
	coll, ok := m.collections[kind]
	if !ok {
		m.logger.Printf("No mirror collection for kind %s", kind)
		return false
	}

	doc := rec.Clone()
	if ts := doc.Timestamp(); ts != "" {
		if t, ok := coerceTimestamp(ts); ok {
			doc["timestamp"] = t
		}
	}

	result, err := coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		m.logger.Printf("Failed to mirror %s record to MongoDB: %v", kind, err)
		return false
	}
	m.logger.Printf("Mirrored %s record to MongoDB with ID: %v", kind, result.InsertedID)
	return true
}

// Status reports the mirror's reachability: "disabled", "connected", or an
// error description.
func (m *Mongo) Status(ctx context.Context) string {
	if !m.enabled {
		return "disabled"
	}
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

// Purge drops all documents from the kind's collection. Used by the purge
// CLI.
func (m *Mongo) Purge(ctx context.Context, kind record.Kind) error {
	if !m.enabled {
		return nil
	}
	coll, ok := m.collections[kind]
	if !ok {
		return nil
	}
	_, err := coll.DeleteMany(ctx, bson.M{})
	return err
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) {
	if m.client != nil {
		_ = m.client.Disconnect(ctx)
	}
}

// coerceTimestamp parses a wire timestamp string into a time.Time. An
// unparseable value reports false and the document keeps the string form;
// coercion never fails a write.
func coerceTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
