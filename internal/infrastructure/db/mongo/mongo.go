package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers    = "users"
	collectionCourses  = "courses"
	collectionStudents = "students"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes every collection relies on. The unique
// username index is what turns a concurrent duplicate registration into
// domain.ErrUsernameTaken.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "centerName", Value: 1}}},
		},
		collectionCourses: {
			{Keys: bson.D{{Key: "centerName", Value: 1}}},
		},
		collectionStudents: {
			{Keys: bson.D{{Key: "centerName", Value: 1}, {Key: "teacherId", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

// tenantFilter matches the records of one center. Legacy documents written
// without a center tag are included only when the scope asks for them.
func tenantFilter(scope ports.TenantScope) bson.M {
	var filter bson.M
	if scope.IncludeUntagged {
		filter = bson.M{"$or": bson.A{
			bson.M{"centerName": scope.CenterName},
			bson.M{"centerName": bson.M{"$exists": false}},
			bson.M{"centerName": nil},
			bson.M{"centerName": ""},
		}}
	} else {
		filter = bson.M{"centerName": scope.CenterName}
	}
	if scope.TeacherID != "" {
		filter["teacherId"] = scope.TeacherID
	}
	return filter
}

// renameCenter retags every document of coll from one center to another.
func renameCenter(ctx context.Context, coll *mongo.Collection, from, to string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := coll.UpdateMany(ctx, bson.M{"centerName": from}, bson.M{"$set": bson.M{"centerName": to}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
