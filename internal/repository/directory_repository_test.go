package repository

import (
	"context"
	"testing"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("GetUserByID not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.GetUserByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("GetUserByID", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "status", Value: int32(models.UserStatusActive)},
		}))

		user, err := repo.GetUserByID(ctx, id)
		require.NoError(mt, err)
		assert.True(mt, user.IsActive())
	})

	mt.Run("ActiveUsersAmong filters on status", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		active := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{active}}))

		got, err := repo.ActiveUsersAmong(ctx, []primitive.ObjectID{active, primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.Equal(mt, []primitive.ObjectID{active}, got)

		query := mt.GetStartedEvent().Command.Lookup("query").Document()
		assert.Equal(mt, int64(models.UserStatusActive), query.Lookup("status").AsInt64())
	})

	mt.Run("ActiveUsersAmong with no ids skips the query", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		got, err := repo.ActiveUsersAmong(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, got)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestWatcherRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Watch upserts one record per user and target", func(mt *mtest.T) {
		repo := NewWatcherRepository(mt.DB)
		userID, pageID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "user", Value: userID},
			{Key: "targetModel", Value: string(models.TargetModelPage)},
			{Key: "target", Value: pageID},
			{Key: "status", Value: string(models.WatchStatusIgnore)},
		}}))

		w, err := repo.Watch(ctx, userID, models.TargetModelPage, pageID, models.WatchStatusIgnore)
		require.NoError(mt, err)
		assert.Equal(mt, models.WatchStatusIgnore, w.Status)

		cmd := mt.GetStartedEvent().Command
		assert.True(mt, cmd.Lookup("upsert").Boolean())
		query := cmd.Lookup("query").Document()
		assert.Equal(mt, userID, query.Lookup("user").ObjectID())
		assert.Equal(mt, pageID, query.Lookup("target").ObjectID())
	})

	mt.Run("UsersByStatus", func(mt *mtest.T) {
		repo := NewWatcherRepository(mt.DB)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{a, b}}))

		got, err := repo.UsersByStatus(ctx, primitive.NewObjectID(), models.WatchStatusWatch)
		require.NoError(mt, err)
		assert.Equal(mt, []primitive.ObjectID{a, b}, got)
	})
}

func TestPageAndCommentRepositories(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("CreatePage", func(mt *mtest.T) {
		repo := NewPageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		page, err := repo.CreatePage(ctx, &models.Page{Path: "/a", Grant: models.GrantPublic, Creator: primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.False(mt, page.ID.IsZero())
		assert.False(mt, page.CreatedAt.IsZero())
	})

	mt.Run("GetPageByID not found", func(mt *mtest.T) {
		repo := NewPageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.pages", mtest.FirstBatch))

		_, err := repo.GetPageByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("DeletePage not found", func(mt *mtest.T) {
		repo := NewPageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := repo.DeletePage(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("CreatorsByPage", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		a := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{a}}))

		got, err := repo.CreatorsByPage(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, []primitive.ObjectID{a}, got)
	})

	mt.Run("CreateComment", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c, err := repo.CreateComment(ctx, &models.Comment{PageID: primitive.NewObjectID(), Creator: primitive.NewObjectID(), Comment: "hi"})
		require.NoError(mt, err)
		assert.False(mt, c.ID.IsZero())
	})

	mt.Run("DeleteByID", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))

		require.NoError(mt, repo.DeleteByID(ctx, id))
		deletes := mt.GetStartedEvent().Command.Lookup("deletes").Array()
		q, err := deletes.Index(0).Value().Document().LookupErr("q", "_id")
		require.NoError(mt, err)
		assert.Equal(mt, id, q.ObjectID())
	})

	mt.Run("DeleteByID not found", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := repo.DeleteByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}
