package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Database
	// Redis is nil when REDIS_ADDR is unset.
	Redis *redis.Client

	mongoClient *mongo.Client
	log         *zap.Logger
}

// InitDB initializes and returns the database connections
func InitDB(ctx context.Context, cfg *Config, log *zap.Logger) (*DB, error) {
	postgresDB, err := initPostgres(cfg.Postgres.ConnStr, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("Successfully connected to PostgreSQL")

	mongoClient, err := initMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info("Successfully connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := &DB{
		Postgres:    postgresDB,
		Mongo:       mongoClient.Database(cfg.Mongo.Database),
		mongoClient: mongoClient,
		log:         log,
	}

	if cfg.Redis.Addr != "" {
		rdb, err := initRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		db.Redis = rdb
		log.Info("Successfully connected to Redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("REDIS_ADDR not set, realtime fan-out and app state stay in-process")
	}

	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string, quiet bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if quiet {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Error)
	}
	db, err := gorm.Open(postgres.Open(connStr), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func initRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.Error("Error getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error("Error closing PostgreSQL connection", zap.Error(err))
		} else {
			db.log.Info("PostgreSQL connection closed")
		}
	}

	if db.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.mongoClient.Disconnect(ctx); err != nil {
			db.log.Error("Error closing MongoDB connection", zap.Error(err))
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			db.log.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// Ping checks every open connection and returns the failures by name.
func (db *DB) Ping(ctx context.Context) map[string]error {
	failed := map[string]error{}
	if db.Postgres != nil {
		if sqlDB, err := db.Postgres.DB(); err != nil {
			failed["postgres"] = err
		} else if err := sqlDB.PingContext(ctx); err != nil {
			failed["postgres"] = err
		}
	}
	if db.mongoClient != nil {
		if err := db.mongoClient.Ping(ctx, nil); err != nil {
			failed["mongo"] = err
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			failed["redis"] = err
		}
	}
	return failed
}
