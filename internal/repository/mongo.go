package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/deppfellow/visitor-function/internal/sqlerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepository writes records to a MongoDB collection. It also works
// against Cosmos DB's MongoDB API, which is what the default connection
// secret name refers to.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository connects and, when CreateIfNotExists is set, creates the
// collection if it is missing.
func NewMongoRepository(ctx context.Context, store config.StoreConfig) (*MongoRepository, error) {
	uri := store.ConnectionString()
	if uri == "" {
		return nil, fmt.Errorf("mongo connection string is empty: set %s", store.Connection)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	db := client.Database(store.Database)

	if store.CreateIfNotExists {
		if err := ensureCollection(ctx, db, store.Container); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return &MongoRepository{
		client:     client,
		collection: db.Collection(store.Container),
	}, nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}

	if err := db.CreateCollection(ctx, name); err != nil {
		// Another instance may have created it between list and create.
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
			return nil
		}
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// mongoDocument keys the document by the visitor id, which is also the
// partition key.
func mongoDocument(visitor model.Visitor) bson.D {
	return bson.D{
		{Key: "_id", Value: visitor.ID},
		{Key: "id", Value: visitor.ID},
		{Key: "name", Value: visitor.Name},
	}
}

func (r *MongoRepository) Save(ctx context.Context, visitor model.Visitor) error {
	if _, err := r.collection.InsertOne(ctx, mongoDocument(visitor)); err != nil {
		if converted := sqlerr.ConvertMongoError(err, r.collection.Name()); converted != nil {
			return fmt.Errorf("insert visitor %s: %w", visitor.ID, converted)
		}
		return fmt.Errorf("insert visitor %s: %w", visitor.ID, err)
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Driver() string {
	return config.DriverMongo
}

// redactURI hides credentials in a connection string for logging.
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "<redacted>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
