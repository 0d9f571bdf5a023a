package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hitoshi/lockin90/internal/database"
	"github.com/hitoshi/lockin90/internal/model"
)

// MongoProjectRepo はMongoDBを使用したプロジェクトリポジトリ。
type MongoProjectRepo struct {
	coll *mongo.Collection
}

// NewMongoProjectRepo はMongoProjectRepoを生成する。
func NewMongoProjectRepo(db *mongo.Database) *MongoProjectRepo {
	return &MongoProjectRepo{coll: db.Collection(database.CollectionProjects)}
}

// Create はプロジェクトを作成する。
func (r *MongoProjectRepo) Create(ctx context.Context, project *model.Project) error {
	if _, err := r.coll.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// ListByUser は指定ユーザーのプロジェクトをcreated_at降順で返す。
// limit+1件取得し、あふれた分があれば次ページのカーソルを返す。
func (r *MongoProjectRepo) ListByUser(ctx context.Context, userID string, page Page) ([]*model.Project, string, error) {
	page = page.normalize()

	filter := bson.M{"user_id": userID}
	if page.Cursor != "" {
		cf, err := cursorFilter(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		filter = bson.M{"$and": bson.A{filter, cf}}
	}

	opts := options.Find().
		SetSort(pageSort()).
		SetLimit(int64(page.Limit) + 1)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list projects: %w", err)
	}

	var projects []*model.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, "", fmt.Errorf("failed to decode projects: %w", err)
	}

	next := ""
	if len(projects) > page.Limit {
		projects = projects[:page.Limit]
		last := projects[len(projects)-1]
		next = EncodeCursor(last.CreatedAt, last.ID)
	}

	return projects, next, nil
}

// ListAllByUser は指定ユーザーの全プロジェクトをcreated_at降順で返す。
// ダッシュボード集計用にlistAllCap件で打ち切る。
func (r *MongoProjectRepo) ListAllByUser(ctx context.Context, userID string) ([]*model.Project, error) {
	opts := options.Find().
		SetSort(pageSort()).
		SetLimit(listAllCap)

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list all projects: %w", err)
	}

	var projects []*model.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

// Update はid AND user_idが一致するプロジェクトにパッチを適用し、更新後のレコードを返す。
// 一致するプロジェクトがない場合はnilを返す。updated_atは常に更新される。
func (r *MongoProjectRepo) Update(ctx context.Context, id, userID string, patch *model.ProjectPatch, updatedAt time.Time) (*model.Project, error) {
	set := bson.M{"updated_at": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.TechStack != nil {
		set["tech_stack"] = patch.TechStack
	}
	if patch.DeployedLink != nil {
		set["deployed_link"] = *patch.DeployedLink
	}
	if patch.GithubLink != nil {
		set["github_link"] = *patch.GithubLink
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	updated := &model.Project{}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return updated, nil
}

// Delete はid AND user_idが一致するプロジェクトを削除する。
func (r *MongoProjectRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// ListExplore は全ユーザーのプロジェクトを作成者情報付きでcreated_at降順で返す。
// usersコレクションとの$lookup + $unwindにより、作成者が存在しない
// プロジェクトは結果から除外される（内部結合）。
func (r *MongoProjectRepo) ListExplore(ctx context.Context, page Page) ([]*model.ExploreProject, string, error) {
	page = page.normalize()

	pipeline := mongo.Pipeline{}

	// カーソルフィルタはprojectsのフィールドのみを参照するため、$lookupの前に適用する
	if page.Cursor != "" {
		cf, err := cursorFilter(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: cf}})
	}

	// $unwindは$limitより前に置く。作成者不在による除外が
	// ページサイズとカーソル計算に影響しないようにするため。
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.CollectionUsers},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "creator"},
		}}},
		bson.D{{Key: "$unwind", Value: "$creator"}},
		bson.D{{Key: "$sort", Value: pageSort()}},
		bson.D{{Key: "$limit", Value: int64(page.Limit) + 1}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "title", Value: 1},
			{Key: "description", Value: 1},
			{Key: "tech_stack", Value: 1},
			{Key: "deployed_link", Value: 1},
			{Key: "github_link", Value: 1},
			{Key: "status", Value: 1},
			{Key: "month", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "creator_name", Value: "$creator.name"},
			{Key: "creator_picture", Value: "$creator.picture"},
		}}},
	)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, "", fmt.Errorf("failed to aggregate explore feed: %w", err)
	}

	var projects []*model.ExploreProject
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, "", fmt.Errorf("failed to decode explore feed: %w", err)
	}

	next := ""
	if len(projects) > page.Limit {
		projects = projects[:page.Limit]
		last := projects[len(projects)-1]
		next = EncodeCursor(last.CreatedAt, last.ID)
	}

	return projects, next, nil
}

// compile-time interface check
var _ ProjectRepository = (*MongoProjectRepo)(nil)
