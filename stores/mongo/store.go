package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"canva-clone/core"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	DefaultDatabase   = "canva"
	DefaultCollection = "design_kv"
)

// kvDocument is how one key is stored: the key is the document id.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to uri and uses database/collection for storage.
func NewStore(ctx context.Context, uri, database, collection string) (*mongoStore, error) {
	if uri == "" {
		return nil, errors.New("MongoDB URI must be set")
	}
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	logrus.WithFields(logrus.Fields{"database": database, "collection": collection}).Debug("MongoDB store ready")
	return &mongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *mongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		logrus.WithField("key", key).WithError(err).Error("Failed to read value")
		return nil, err
	}
	if doc.Value == nil {
		doc.Value = []byte{}
	}
	return doc.Value, nil
}

func (s *mongoStore) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		logrus.WithField("key", key).WithError(err).Error("Failed to write value")
		return err
	}
	return nil
}

func (s *mongoStore) Remove(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *mongoStore) List(ctx context.Context, prefix string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, listFilter(prefix), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	keys := []string{}
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cursor.Err()
}

func listFilter(prefix string) bson.M {
	if prefix == "" {
		return bson.M{}
	}
	return bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
