package mongodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/xshopai/seeder/internal/database/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Adapter struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Connect(ctx context.Context, url string) error {
	clientOpts := options.Client().ApplyURI(url)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	a.client = client
	a.dbName = DatabaseName(url, clientOpts)
	a.database = client.Database(a.dbName)
	return nil
}

// DatabaseName takes the database from the URL path, falling back to the
// auth source and then "test". "admin" is never chosen from the path.
func DatabaseName(url string, opts *options.ClientOptions) string {
	parts := strings.Split(url, "/")
	if len(parts) > 3 {
		dbPart := parts[len(parts)-1]
		if idx := strings.Index(dbPart, "?"); idx >= 0 {
			dbPart = dbPart[:idx]
		}
		if dbPart != "" && dbPart != "admin" {
			return dbPart
		}
	}

	if opts != nil && opts.Auth != nil && opts.Auth.AuthSource != "" && opts.Auth.AuthSource != "admin" {
		return opts.Auth.AuthSource
	}
	return "test"
}

func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Disconnect(context.Background())
	}
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	if a.client == nil {
		return common.ErrNotConnected
	}
	return classify("ping", a.client.Ping(ctx, nil))
}

func (a *Adapter) Database() string { return a.dbName }

func (a *Adapter) Insert(ctx context.Context, collection string, records []common.Record) error {
	if a.database == nil {
		return common.ErrNotConnected
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	// Ordered, so a throttled batch has a stored prefix and nothing after it.
	opts := options.InsertMany().SetOrdered(true)
	if _, err := a.database.Collection(collection).InsertMany(ctx, docs, opts); err != nil {
		return classify("insert into "+collection, err)
	}
	return nil
}

func (a *Adapter) DeleteAll(ctx context.Context, collection string) (int64, error) {
	if a.database == nil {
		return 0, common.ErrNotConnected
	}
	res, err := a.database.Collection(collection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, classify("clear "+collection, err)
	}
	return res.DeletedCount, nil
}

func (a *Adapter) Count(ctx context.Context, collection string) (int64, error) {
	if a.database == nil {
		return 0, common.ErrNotConnected
	}
	n, err := a.database.Collection(collection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, classify("count "+collection, err)
	}
	return n, nil
}

// Update applies $set to every document matching filter and returns the
// number of matched documents.
func (a *Adapter) Update(ctx context.Context, collection string, filter, set common.Record) (int64, error) {
	if a.database == nil {
		return 0, common.ErrNotConnected
	}
	res, err := a.database.Collection(collection).UpdateMany(ctx, bson.M(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, classify("update "+collection, err)
	}
	return res.MatchedCount, nil
}
