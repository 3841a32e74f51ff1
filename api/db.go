package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/redis/go-redis/v9"
)

func (app *application) ConnectToDB() (*sql.DB, error) {
	db, err := openDB(app.cfg.DSN)
	if err != nil {
		return nil, err
	}

	app.Log.Info("database connection established")
	return db, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(15 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConnectToRedis returns nil when no Redis URL is configured.
func (app *application) ConnectToRedis() (*redis.Client, error) {
	if app.cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		opts = &redis.Options{Addr: app.cfg.RedisURL}
	}
	if app.cfg.RedisPassword != "" {
		opts.Password = app.cfg.RedisPassword
	}
	if app.cfg.RedisDB != 0 {
		opts.DB = app.cfg.RedisDB
	}
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.Log.WithField("addr", opts.Addr).Info("redis connection established")
	return client, nil
}
