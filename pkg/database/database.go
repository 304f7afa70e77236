package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendhive/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// OpenGorm opens the relational database selected by cfg.DB.Driver
// (postgres or sqlite) and applies the pool settings
func OpenGorm(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DB.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DB.SQLitePath)
	default:
		return nil, fmt.Errorf("driver %q is not a gorm driver", cfg.DB.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.DB.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	if cfg.DB.Driver == config.DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	log.Info("Database connected successfully",
		zap.String("driver", cfg.DB.Driver),
		zap.String("db_name", cfg.DB.DBName))
	return db, nil
}

// OpenMongo connects to cfg.DB.MongoURI and returns the database named by
// the URI path, falling back to cfg.DB.DBName
func OpenMongo(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(cfg.DB.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("invalid MONGODB_URI: %w", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DB.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	var hello HelloReply
	if err := client.Database("admin").RunCommand(pingCtx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to read mongodb topology: %w", err)
	}
	if err := hello.CheckTransactions(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	name := cs.Database
	if name == "" {
		name = cfg.DB.DBName
	}
	log.Info("MongoDB connected successfully", zap.String("database", name))
	return client.Database(name), nil
}

// ErrNoTransactions is reported for a standalone mongod, which cannot run
// the multi-document transactions used by checkout and reviews
var ErrNoTransactions = errors.New("mongodb must be a replica set or sharded cluster (standalone servers do not support transactions)")

// HelloReply holds the topology fields of the mongodb hello command
type HelloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

// CheckTransactions fails unless the server is a replica set member or a
// mongos router
func (h HelloReply) CheckTransactions() error {
	if h.SetName != "" || h.Msg == "isdbgrid" {
		return nil
	}
	return ErrNoTransactions
}

// OpenRedis returns a client for cfg.Redis after a successful PING
func OpenRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr))
	return rdb, nil
}
