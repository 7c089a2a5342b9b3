package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"photodesigner/internal/domain"
)

const defaultMongoDatabase = "photodesigner"

// mongoConnector upserts one document per design into a collection.
type mongoConnector struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func newMongoConnector(t *domain.MirrorTarget, password string) (*mongoConnector, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(buildMongoURI(t, password)).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	dbName := t.Database
	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	return &mongoConnector{
		client: client,
		coll:   client.Database(dbName).Collection(documentsTable),
	}, nil
}

func (c *mongoConnector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.client.Ping(ctx, nil)
}

func (c *mongoConnector) PushDesign(ctx context.Context, state domain.DesignState) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	doc, err := mongoDocument(state)
	if err != nil {
		return err
	}
	_, err = c.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: state.Design.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert design %s: %w", state.Design.ID, err)
	}
	return nil
}

// mongoDocument stores the interchange JSON as a native document so the
// renderer can query it, keyed by design id.
func mongoDocument(state domain.DesignState) (bson.M, error) {
	data, at, err := encode(state)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode design %s: %w", state.Design.ID, err)
	}
	doc["_id"] = state.Design.ID
	doc["updatedAt"] = at
	return doc, nil
}

func (c *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}
