package services

import (
	"context"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func argIDs(args mock.Arguments, i int) []primitive.ObjectID {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]primitive.ObjectID)
}

func argActivities(args mock.Arguments, i int) []models.Activity {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]models.Activity)
}

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) CreateActivity(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *mockActivityRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error) {
	args := m.Called(ctx, userID)
	return argActivities(args, 0), args.Error(1)
}

func (m *mockActivityRepo) GetSameActivities(ctx context.Context, targetID primitive.ObjectID, action models.Action, excludeID primitive.ObjectID) ([]models.Activity, error) {
	args := m.Called(ctx, targetID, action, excludeID)
	return argActivities(args, 0), args.Error(1)
}

func (m *mockActivityRepo) FindMatching(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	args := m.Called(ctx, filter)
	return argActivities(args, 0), args.Error(1)
}

func (m *mockActivityRepo) DeleteByIDs(ctx context.Context, idList []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, idList)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockActivityRepo) ExistingIDs(ctx context.Context, idList []primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, idList)
	return argIDs(args, 0), args.Error(1)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Upsert(ctx context.Context, userID primitive.ObjectID, source *models.Activity, activityIDs []primitive.ObjectID) (*models.Notification, error) {
	args := m.Called(ctx, userID, source, activityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) RecipientsOf(ctx context.Context, activityIDs ...primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, activityIDs)
	return argIDs(args, 0), args.Error(1)
}

func (m *mockNotificationRepo) PullActivities(ctx context.Context, activityIDs []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, activityIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) ReferencedActivityIDs(ctx context.Context, after primitive.ObjectID, limit int64) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, after, limit)
	return argIDs(args, 0), args.Error(1)
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsOpened(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type mockPageRepo struct {
	mock.Mock
}

func (m *mockPageRepo) CreatePage(ctx context.Context, page *models.Page) (*models.Page, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *mockPageRepo) GetPageByID(ctx context.Context, id primitive.ObjectID) (*models.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *mockPageRepo) DeletePage(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCommentRepo struct {
	mock.Mock
}

func (m *mockCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	args := m.Called(ctx, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *mockCommentRepo) CreatorsByPage(ctx context.Context, pageID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, pageID)
	return argIDs(args, 0), args.Error(1)
}

func (m *mockCommentRepo) DeleteByPage(ctx context.Context, pageID primitive.ObjectID) error {
	args := m.Called(ctx, pageID)
	return args.Error(0)
}

func (m *mockCommentRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockWatcherRepo struct {
	mock.Mock
}

func (m *mockWatcherRepo) Watch(ctx context.Context, userID primitive.ObjectID, targetModel models.TargetModel, targetID primitive.ObjectID, status models.WatchStatus) (*models.Watcher, error) {
	args := m.Called(ctx, userID, targetModel, targetID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Watcher), args.Error(1)
}

func (m *mockWatcherRepo) UsersByStatus(ctx context.Context, targetID primitive.ObjectID, status models.WatchStatus) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, targetID, status)
	return argIDs(args, 0), args.Error(1)
}

func (m *mockWatcherRepo) DeleteByTarget(ctx context.Context, targetID primitive.ObjectID) error {
	args := m.Called(ctx, targetID)
	return args.Error(0)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) ActiveUsersAmong(ctx context.Context, idList []primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, idList)
	return argIDs(args, 0), args.Error(1)
}

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) Upsert(ctx context.Context, recipient primitive.ObjectID, sameActivities []models.Activity, source *models.Activity) error {
	args := m.Called(ctx, recipient, sameActivities, source)
	return args.Error(0)
}

func (m *mockNotificationStore) Retract(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

type mockAudience struct {
	mock.Mock
}

func (m *mockAudience) Resolve(ctx context.Context, activity *models.Activity) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, activity)
	return argIDs(args, 0), args.Error(1)
}

type mockSameSource struct {
	mock.Mock
}

func (m *mockSameSource) Collect(ctx context.Context, activity *models.Activity) ([]models.Activity, error) {
	args := m.Called(ctx, activity)
	return argActivities(args, 0), args.Error(1)
}

type mockUnreadCounter struct {
	mock.Mock
}

func (m *mockUnreadCounter) Get(ctx context.Context, userID primitive.ObjectID) (int64, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockUnreadCounter) Set(ctx context.Context, userID primitive.ObjectID, count int64) error {
	args := m.Called(ctx, userID, count)
	return args.Error(0)
}

func (m *mockUnreadCounter) Invalidate(ctx context.Context, userIDs ...primitive.ObjectID) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

type mockHook struct {
	mock.Mock
}

func (m *mockHook) AfterCreate(ctx context.Context, activity *models.Activity) {
	m.Called(ctx, activity)
}

func (m *mockHook) BeforeRemove(ctx context.Context, activity *models.Activity) {
	m.Called(ctx, activity)
}

// stubTarget returns fixed interested parties.
type stubTarget []primitive.ObjectID

func (t stubTarget) InterestedParties(context.Context) ([]primitive.ObjectID, error) {
	return t, nil
}

func stubRegistry(parties ...primitive.ObjectID) *TargetRegistry {
	r := NewTargetRegistry()
	r.Register(models.TargetModelPage, TargetLoaderFunc(func(context.Context, primitive.ObjectID) (Target, error) {
		return stubTarget(parties), nil
	}))
	return r
}
