package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/push"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg push.Message) error {
	return m.Called(ctx, msg).Error(0)
}

var _ push.Sender = (*mockSender)(nil)

type fakeUsers struct {
	users map[uint]models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[uint]models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return &u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (f *fakeUsers) GetUserByFirebaseUID(context.Context, string) (*models.User, error) {
	return nil, apperrors.NotFound("user")
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uint) (map[uint]models.User, error) {
	out := map[uint]models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeUsers) GetUsers(context.Context, uint) ([]models.User, error) { return nil, nil }

func (f *fakeUsers) UpdateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) UpdatePushToken(_ context.Context, id uint, token string) error {
	u := f.users[id]
	u.PushToken = token
	f.users[id] = u
	return nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, id uint) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) SearchUsers(context.Context, string) ([]models.User, error) { return nil, nil }

type ackKey struct {
	id     uint
	viewer uint
}

type fakeNotifications struct {
	mu    sync.Mutex
	rows  []models.Notification
	acked map[ackKey]struct{}
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{acked: map[ackKey]struct{}{}}
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uint(len(f.rows) + 1)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotifications) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	for _, n := range f.rows {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, apperrors.NotFound("notification")
}

func (f *fakeNotifications) forReceiver(receiverID uint) []models.Notification {
	var out []models.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].ReceiverID == receiverID {
			out = append(out, f.rows[i])
		}
	}
	return out
}

func (f *fakeNotifications) GetByReceiverID(_ context.Context, receiverID uint, page, limit int) ([]models.Notification, int64, error) {
	all := f.forReceiver(receiverID)
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (f *fakeNotifications) GetSince(_ context.Context, receiverID uint, since time.Time, _ int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.forReceiver(receiverID) {
		if n.CreatedAt.After(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) IDsForReceiver(_ context.Context, receiverID uint) ([]uint, error) {
	var ids []uint
	for _, n := range f.forReceiver(receiverID) {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (f *fakeNotifications) AckedIDs(_ context.Context, viewerID uint, ids []uint) ([]uint, error) {
	var out []uint
	for _, id := range ids {
		if _, ok := f.acked[ackKey{id, viewerID}]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkSeen(_ context.Context, viewerID uint, ids []uint) error {
	for _, id := range ids {
		f.acked[ackKey{id, viewerID}] = struct{}{}
	}
	return nil
}

type fakeMessages struct {
	rows  []models.Message
	acked map[ackKey]struct{}
	clock time.Time
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{acked: map[ackKey]struct{}{}, clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeMessages) CreateMessage(_ context.Context, m *models.Message) error {
	m.ID = uint(len(f.rows) + 1)
	f.clock = f.clock.Add(time.Minute)
	m.CreatedAt = f.clock
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMessages) GetConversation(_ context.Context, conversationID string, _, _ int) ([]models.Message, error) {
	out := []models.Message{}
	for _, m := range f.rows {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) GetInvolving(_ context.Context, userID uint) ([]models.Message, error) {
	out := []models.Message{}
	for _, m := range f.rows {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessages) ReceivedIDs(_ context.Context, conversationID string, receiverID uint) ([]uint, error) {
	var ids []uint
	for _, m := range f.rows {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (f *fakeMessages) AckedIDs(_ context.Context, viewerID uint, ids []uint) ([]uint, error) {
	var out []uint
	for _, id := range ids {
		if _, ok := f.acked[ackKey{id, viewerID}]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkSeen(_ context.Context, viewerID uint, ids []uint) error {
	for _, id := range ids {
		f.acked[ackKey{id, viewerID}] = struct{}{}
	}
	return nil
}

type storyViewKey struct {
	story  string
	viewer uint
}

type fakeStories struct {
	rows  []models.Story
	views map[storyViewKey]struct{}
}

func newFakeStories() *fakeStories {
	return &fakeStories{views: map[storyViewKey]struct{}{}}
}

func (f *fakeStories) CreateStory(_ context.Context, s *models.Story) error {
	s.ID = primitive.NewObjectID()
	f.rows = append(f.rows, *s)
	return nil
}

func (f *fakeStories) GetStoryByID(_ context.Context, id string) (*models.Story, error) {
	for _, s := range f.rows {
		if s.ID.Hex() == id {
			return &s, nil
		}
	}
	return nil, apperrors.NotFound("story")
}

func (f *fakeStories) GetStoriesByUserIDs(_ context.Context, userIDs []uint) ([]models.Story, error) {
	owners := map[uint]bool{}
	for _, id := range userIDs {
		owners[id] = true
	}
	out := []models.Story{}
	for _, s := range f.rows {
		if owners[s.UserID] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStories) DeleteCreatedBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	var kept []models.Story
	var removed []string
	for _, s := range f.rows {
		if s.CreatedAt.Before(cutoff) {
			removed = append(removed, s.ID.Hex())
			continue
		}
		kept = append(kept, s)
	}
	f.rows = kept
	return removed, nil
}

func (f *fakeStories) MarkSeen(_ context.Context, storyID string, viewerID uint) error {
	f.views[storyViewKey{storyID, viewerID}] = struct{}{}
	return nil
}

func (f *fakeStories) HasSeen(_ context.Context, storyID string, viewerID uint) (bool, error) {
	_, ok := f.views[storyViewKey{storyID, viewerID}]
	return ok, nil
}

func (f *fakeStories) GetSeenStoryIDs(_ context.Context, viewerID uint, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if _, ok := f.views[storyViewKey{id, viewerID}]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStories) DeleteViews(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		for k := range f.views {
			if k.story == id {
				delete(f.views, k)
				n++
			}
		}
	}
	return n, nil
}

type fakeFollows struct {
	following map[uint][]uint
}

func (f *fakeFollows) CreateFollow(_ context.Context, fl *models.Follow) (bool, error) {
	f.following[fl.FollowerID] = append(f.following[fl.FollowerID], fl.FollowingID)
	return true, nil
}

func (f *fakeFollows) DeleteFollow(context.Context, uint, uint) error { return nil }

func (f *fakeFollows) IsFollowing(_ context.Context, a, b uint) (bool, error) {
	for _, id := range f.following[a] {
		if id == b {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFollows) GetFollowers(context.Context, uint) ([]models.User, error) { return nil, nil }
func (f *fakeFollows) GetFollowing(context.Context, uint) ([]models.User, error) { return nil, nil }

func (f *fakeFollows) GetCounts(context.Context, uint) (models.FollowCounts, error) {
	return models.FollowCounts{}, nil
}

func (f *fakeFollows) GetFollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	return append([]uint(nil), f.following[userID]...), nil
}

type fakeOrders struct {
	rows map[uint]*models.Order
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	o.ID = uint(len(f.rows) + 1)
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uint) (*models.Order, error) {
	o, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("order")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetByUserID(_ context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.rows {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) GetLast(ctx context.Context, userID uint) (*models.Order, error) {
	var last *models.Order
	for _, o := range f.rows {
		if o.UserID == userID && (last == nil || o.ID > last.ID) {
			last = o
		}
	}
	if last == nil {
		return nil, apperrors.NotFound("order")
	}
	return f.GetByID(ctx, last.ID)
}

func (f *fakeOrders) UpdateStatus(_ context.Context, o *models.Order, _ models.Order) error {
	stored, ok := f.rows[o.ID]
	if !ok {
		return apperrors.NotFound("order")
	}
	stored.Status = o.Status
	stored.DeliveryStatus = o.DeliveryStatus
	return nil
}

type fakeAddresses struct {
	rows map[uint]models.Address
}

func (f *fakeAddresses) Create(_ context.Context, a *models.Address) error {
	a.ID = uint(len(f.rows) + 1)
	f.rows[a.ID] = *a
	return nil
}

func (f *fakeAddresses) GetByID(_ context.Context, id uint) (*models.Address, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("address")
	}
	return &a, nil
}

func (f *fakeAddresses) GetByUserID(_ context.Context, userID uint) ([]models.Address, error) {
	var out []models.Address
	for _, a := range f.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAddresses) Update(_ context.Context, a *models.Address) error {
	f.rows[a.ID] = *a
	return nil
}
