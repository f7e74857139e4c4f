package factory

import (
	"context"
	"database/sql"
	"sync"

	"eventers-ticketing/config"
	"eventers-ticketing/logger"

	"github.com/go-redis/redis"
	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

var db sync.Once
var rc sync.Once

type Factory interface {
	DB(ctx context.Context) *sql.DB
	Redis(ctx context.Context) *redis.Client
}

type factory struct {
	db    *sql.DB
	redis *redis.Client
}

func NewFactory() Factory {
	return &factory{}
}

// DB opens the MySQL pool once. parseTime is required to scan DATETIME columns into time.Time.
func (f *factory) DB(ctx context.Context) *sql.DB {
	db.Do(func() {
		sqlDB, err := sql.Open(config.DriverMySQL, viper.GetString(config.DBURL))
		if err != nil {
			logger.Fatalf(ctx, "Error creating connection pool: %+v", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			logger.Fatalf(ctx, "Could not establish connection to the DB: %+v", err)
		}

		f.db = sqlDB
	})

	return f.db
}

// Redis returns nil when no redis address is configured.
func (f *factory) Redis(ctx context.Context) *redis.Client {
	rc.Do(func() {
		addr := viper.GetString(config.RedisAddress)
		if addr == "" {
			logger.Infof(ctx, "factory: no redis configured, scan cache disabled")
			return
		}

		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString(config.RedisPassword),
			DB:       viper.GetInt(config.RedisDB),
		})
		if err := client.WithContext(ctx).Ping().Err(); err != nil {
			logger.Fatalf(ctx, "Could not establish connection to redis at %s: %+v", addr, err)
		}

		f.redis = client
	})

	return f.redis
}
