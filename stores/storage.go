package stores

import (
	"context"
	"fmt"

	"canva-clone/config"
	"canva-clone/core"
	"canva-clone/stores/aws"
	"canva-clone/stores/filesystem"
	"canva-clone/stores/memory"
	"canva-clone/stores/mongo"
	"canva-clone/stores/sqlstore"

	"github.com/sirupsen/logrus"
)

// Open returns the key-value backend selected by cfg.Type.
func Open(ctx context.Context, cfg config.Storage) (core.KeyValueStore, error) {
	var (
		store core.KeyValueStore
		err   error
	)

	storageField := logrus.Fields{
		"storageType": cfg.Type,
	}

	switch cfg.Type {
	case "filesystem":
		storageField["basePath"] = cfg.LocalPath
		store, err = filesystem.NewStore(cfg.LocalPath)
	case "sqlite":
		dataSourceName := cfg.DataSourceName
		if dataSourceName == "" {
			dataSourceName = "designs.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store, err = sqlstore.OpenSQLite(dataSourceName)
	case "mysql":
		if cfg.DataSourceName == "" {
			return nil, fmt.Errorf("DATA_SOURCE_NAME must be set for mysql storage type")
		}
		store, err = sqlstore.OpenMySQL(cfg.DataSourceName)
	case "postgres":
		if cfg.DataSourceName == "" {
			return nil, fmt.Errorf("DATA_SOURCE_NAME must be set for postgres storage type")
		}
		store, err = sqlstore.OpenPostgres(cfg.DataSourceName)
	case "s3":
		storageField["bucketName"] = cfg.S3Bucket
		store, err = aws.NewStore(ctx, aws.Options{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
		})
	case "mongo":
		storageField["database"] = cfg.MongoDatabase
		storageField["collection"] = cfg.MongoCollection
		store, err = mongo.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case "", "memory":
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
	if err != nil {
		logrus.WithFields(storageField).WithError(err).Error("Failed to open storage")
		return nil, err
	}

	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
