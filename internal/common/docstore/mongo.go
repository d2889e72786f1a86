package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

// MongoStore maps collections one-to-one onto MongoDB collections. Records are
// decoded through their bson tags; the id is stored as _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

func NewMongoStore(ctx context.Context, log *logger.Logger, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetAppName("gym-api").
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, unavailable(fmt.Errorf("failed to connect to MongoDB: %w", err))
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable(fmt.Errorf("failed to ping MongoDB: %w", err))
	}

	log.WithFields(ctx, logger.Fields{
		"database": database,
		"action":   "mongo_connected",
	}).Info("connected to MongoDB")

	return &MongoStore{client: client, db: client.Database(database), log: log}, nil
}

func (s *MongoStore) Driver() string { return "mongo" }

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{name: name, coll: s.db.Collection(name)}
}

func (s *MongoStore) EnsureCollections(ctx context.Context, specs []CollectionSpec) error {
	for _, spec := range specs {
		names, err := s.db.ListCollectionNames(ctx, bson.M{"name": spec.Name})
		if err != nil {
			return fmt.Errorf("list collections: %w", classifyMongo(err))
		}
		if len(names) == 0 {
			if err := s.db.CreateCollection(ctx, spec.Name); err != nil {
				return fmt.Errorf("create collection %s: %w", spec.Name, classifyMongo(err))
			}
		}

		for _, field := range spec.UniqueFields {
			model := mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}},
				Options: options.Index().SetUnique(true).SetName(field + "_unique"),
			}
			if _, err := s.db.Collection(spec.Name).Indexes().CreateOne(ctx, model); err != nil {
				return fmt.Errorf("create unique index %s.%s: %w", spec.Name, field, classifyMongo(err))
			}
		}

		s.log.WithFields(ctx, logger.Fields{
			"collection": spec.Name,
			"driver":     "mongo",
			"action":     "collection_ensured",
		}).Info("collection ready")
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return classifyMongo(s.client.Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	name string
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string { return c.name }

func (c *mongoCollection) Get(ctx context.Context, id string, out any) error {
	return classifyMongo(c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(out))
}

func (c *mongoCollection) Create(ctx context.Context, _ string, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return classifyMongo(err)
}

func (c *mongoCollection) Replace(ctx context.Context, id string, doc any) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return classifyMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classifyMongo(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, out any) error {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cursor, err := c.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return classifyMongo(err)
	}
	defer cursor.Close(ctx)

	return classifyMongo(cursor.All(ctx, out))
}

func classifyMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrConflict, err)
	default:
		return unavailable(err)
	}
}
