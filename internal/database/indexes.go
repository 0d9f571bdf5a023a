package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// コレクション名
const (
	CollectionUsers    = "users"
	CollectionSessions = "sessions"
	CollectionProjects = "projects"
)

// userIndexes はusersコレクションのインデックス定義を返す。
// emailはユーザーのビジネスキーとして一意制約を持つ。
func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

// sessionIndexes はsessionsコレクションのインデックス定義を返す。
// expires_atのTTLインデックス（expireAfterSeconds=0）により、
// 期限切れセッションはMongoDBのTTLモニターが非同期に削除する。
// 遅延はあり得るため、期限切れ判定自体は認証解決側でも行う。
func sessionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}
}

// projectIndexes はprojectsコレクションのインデックス定義を返す。
// 所有者スコープの一覧とcreated_at降順のページネーションに対応する。
func projectIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
}

// EnsureIndexes は全コレクションのインデックスを作成する。
// 既存のインデックスと同一定義の場合は何もしない（冪等）。
// serveの起動時およびmigrateサブコマンドから実行される。
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	targets := map[string][]mongo.IndexModel{
		CollectionUsers:    userIndexes(),
		CollectionSessions: sessionIndexes(),
		CollectionProjects: projectIndexes(),
	}

	for coll, models := range targets {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", coll, err)
		}
	}

	return nil
}
