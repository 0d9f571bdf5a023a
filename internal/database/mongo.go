// Package database はMongoDB接続とインデックス管理を提供する。
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Open はMongoDBクライアントを生成する。
// mongoURLは接続URIを指定する（例: "mongodb://localhost:27017"）。
// Connectは接続を即座に確立しないため、実際の接続確認にはPingを使用すること。
func Open(mongoURL string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open mongodb client: %w", err)
	}
	return client, nil
}

// Ping はプライマリへの到達性を確認する。
func Ping(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// Close はクライアントの接続を切断する。
func Close(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongodb client: %w", err)
	}
	return nil
}
