package repository

import (
	"encoding/base64"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/hitoshi/lockin90/internal/model"
)

const (
	// DefaultPageLimit はlimit未指定時のページサイズ。
	DefaultPageLimit = 50
	// MaxPageLimit は1リクエストで返す最大件数。
	MaxPageLimit = 200
	// listAllCap はダッシュボード集計用の全件取得の上限。
	listAllCap = 1000
)

// Page はカーソルベースのページネーション指定を表す。
type Page struct {
	// Cursor は前ページのレスポンスで返されたnext_cursor。先頭ページでは空文字。
	Cursor string
	// Limit は取得件数。0以下はDefaultPageLimit、MaxPageLimit超は切り詰め。
	Limit int
}

// normalize はLimitをデフォルト・上限の範囲に丸めたPageを返す。
func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// EncodeCursor はソートキー（created_at降順、_id降順タイブレーク）を
// opaqueなカーソル文字列にエンコードする。
func EncodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor はカーソル文字列をソートキーに復元する。
// 形式が不正な場合はINVALID_CURSORエラーを返す。
func DecodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", model.NewInvalidCursorError()
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", model.NewInvalidCursorError()
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", model.NewInvalidCursorError()
	}
	return ts, parts[1], nil
}

// cursorFilter はカーソル位置より後ろ（古い側）のドキュメントに絞り込む
// MongoDBフィルタを構築する。
func cursorFilter(cursor string) (bson.M, error) {
	ts, id, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	return bson.M{
		"$or": bson.A{
			bson.M{"created_at": bson.M{"$lt": ts}},
			bson.M{"created_at": ts, "_id": bson.M{"$lt": id}},
		},
	}, nil
}

// pageSort はカーソルページネーションのソート順（created_at降順、_id降順）。
func pageSort() bson.D {
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
}
