package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/unseen"
)

type StoryService struct {
	stories repositories.StoryRepository
	follows repositories.FollowRepository
	users   repositories.UserRepository
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func NewStoryService(storyRepo repositories.StoryRepository, followRepo repositories.FollowRepository, userRepo repositories.UserRepository, ttl time.Duration, log *zap.Logger) *StoryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StoryService{
		stories: storyRepo,
		follows: followRepo,
		users:   userRepo,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With(zap.String("component", "stories")),
	}
}

func (s *StoryService) Create(ctx context.Context, userID uint, req models.CreateStoryRequest) (*models.Story, error) {
	now := s.now().UTC()
	story := &models.Story{
		UserID:    userID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// Feed returns the stories of everyone the viewer follows plus the viewer's
// own, grouped by owner in order of each owner's oldest story.
func (s *StoryService) Feed(ctx context.Context, viewerID uint) (models.StoryFeed, error) {
	feed := models.StoryFeed{Stories: []models.StoryGroup{}}

	owners, err := s.follows.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return feed, err
	}
	owners = append(owners, viewerID)

	stories, err := s.stories.GetStoriesByUserIDs(ctx, owners)
	if err != nil {
		return feed, err
	}
	if len(stories) == 0 {
		return feed, nil
	}

	groups, err := s.group(ctx, viewerID, stories)
	if err != nil {
		return feed, err
	}
	for i := range groups {
		if groups[i].User.ID == viewerID {
			own := groups[i]
			feed.CurrentUserStory = &own
			continue
		}
		feed.Stories = append(feed.Stories, groups[i])
	}
	return feed, nil
}

// UserStories returns one owner's unexpired stories with the viewer's seen flags.
func (s *StoryService) UserStories(ctx context.Context, viewerID, ownerID uint) (models.StoryGroup, error) {
	stories, err := s.stories.GetStoriesByUserIDs(ctx, []uint{ownerID})
	if err != nil {
		return models.StoryGroup{}, err
	}
	if len(stories) == 0 {
		owner, err := s.users.GetUserByID(ctx, ownerID)
		if err != nil {
			return models.StoryGroup{}, err
		}
		return models.StoryGroup{User: owner.ToCompact(), Stories: []models.StoryItem{}}, nil
	}
	groups, err := s.group(ctx, viewerID, stories)
	if err != nil {
		return models.StoryGroup{}, err
	}
	return groups[0], nil
}

func (s *StoryService) group(ctx context.Context, viewerID uint, stories []models.Story) ([]models.StoryGroup, error) {
	ids := make([]string, len(stories))
	ownerIDs := make([]uint, 0, len(stories))
	for i, st := range stories {
		ids[i] = st.ID.Hex()
		ownerIDs = append(ownerIDs, st.UserID)
	}
	seen, err := s.stories.GetSeenStoryIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	return GroupStories(stories, seen, users), nil
}

// GroupStories groups stories by owner, keeping the input order within and
// across groups.
func GroupStories(stories []models.Story, seenIDs []string, users map[uint]models.User) []models.StoryGroup {
	seenSet := unseen.Set(seenIDs)
	groups := []models.StoryGroup{}
	index := map[uint]int{}
	for _, st := range stories {
		i, ok := index[st.UserID]
		if !ok {
			i = len(groups)
			index[st.UserID] = i
			owner := models.CompactUser{ID: st.UserID}
			if u, found := users[st.UserID]; found {
				owner = u.ToCompact()
			}
			groups = append(groups, models.StoryGroup{User: owner, Stories: []models.StoryItem{}})
		}
		item := models.StoryItem{Story: st, Seen: unseen.Seen(seenSet, st.ID.Hex())}
		groups[i].Stories = append(groups[i].Stories, item)
		if !item.Seen {
			groups[i].UnseenCount++
		}
	}
	return groups
}

func (s *StoryService) Get(ctx context.Context, id string) (*models.Story, error) {
	return s.stories.GetStoryByID(ctx, id)
}

// MarkSeen records the view; repeated calls leave a single row.
func (s *StoryService) MarkSeen(ctx context.Context, storyID string, viewerID uint) error {
	if _, err := s.stories.GetStoryByID(ctx, storyID); err != nil {
		return err
	}
	return s.stories.MarkSeen(ctx, storyID, viewerID)
}

func (s *StoryService) HasSeen(ctx context.Context, storyID string, viewerID uint) (bool, error) {
	return s.stories.HasSeen(ctx, storyID, viewerID)
}

// Sweep deletes stories older than the TTL together with their view rows.
func (s *StoryService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.ttl)
	ids, err := s.stories.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	views, err := s.stories.DeleteViews(ctx, ids)
	if err != nil {
		return len(ids), err
	}
	s.log.Info("expired stories swept", zap.Int("stories", len(ids)), zap.Int64("views", views))
	return len(ids), nil
}
