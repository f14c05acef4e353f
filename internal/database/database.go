package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name                       = "waterme_db"
	CollectionMicrocontrollers = "microcontrollers"
	CollectionUsers            = "users"
)

type Database struct {
	*mongo.Database
}

var ErrNoDocumentsModified = errors.New("no documents modified")

func ConnectDB(ctx context.Context, dbURI string) (*mongo.Client, error) {
	var c *mongo.Client

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		var err error
		c, err = mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
		if err != nil {
			return err
		}
		return c.Ping(ctx, nil)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to DB at %s after retries", dbURI)
	}

	_, err = c.Database(Name).Collection(CollectionMicrocontrollers).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "mac_address", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionUsers).Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "telegram.user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "microcontrollers", Value: 1}},
				Options: options.Index().SetUnique(false),
			},
		},
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}
