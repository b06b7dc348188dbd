package relational

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Subscriptions
// ============================================================================

// Subscribe inserts the join row; an existing pair is left untouched
func (s *Store) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	if subscriberID == authorID {
		return apperrors.NewConstraintViolation(store.KindSubscription, "no self-subscription", nil)
	}
	m := subscriptionModel{SubscriberID: subscriberID, AuthorID: authorID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return s.storeError("Subscribe", err)
	}
	return nil
}

func (s *Store) Unsubscribe(ctx context.Context, subscriberID, authorID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&subscriptionModel{})
	if res.Error != nil {
		return false, s.storeError("Unsubscribe", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListSubscriptions(ctx context.Context) ([]store.Subscription, error) {
	var rows []subscriptionModel
	err := s.db.WithContext(ctx).
		Order("created_at, subscriber_id, author_id").
		Find(&rows).Error
	if err != nil {
		return nil, s.storeError("ListSubscriptions", err)
	}
	subs := make([]store.Subscription, 0, len(rows))
	for _, m := range rows {
		subs = append(subs, m.toSubscription())
	}
	return subs, nil
}

// ============================================================================
// Neighborhood
// ============================================================================

// hop maps a direction onto the join relation and the user on its far end
var hop = map[store.Direction][2]string{
	store.SubscribedTo: {"SubscribedTo", "Author"},
	store.SubscribedBy: {"SubscribedBy", "Subscriber"},
}

// preloadPaths turns include into GORM preload paths, e.g.
// SubscribedTo.Author.SubscribedBy.Subscriber
func preloadPaths(include *store.Include) []string {
	var out []string
	for _, path := range include.Paths() {
		segments := make([]string, 0, 2*len(path))
		for _, d := range path {
			segments = append(segments, hop[d][0], hop[d][1])
		}
		out = append(out, strings.Join(segments, "."))
	}
	return out
}

// FetchNeighborhood loads the root with every join row and user include
// names through nested preloads
func (s *Store) FetchNeighborhood(ctx context.Context, rootID string, include *store.Include) (*store.Graph, error) {
	paths := preloadPaths(include)

	q := s.db.WithContext(ctx)
	for _, path := range paths {
		q = q.Preload(path)
	}

	var root userModel
	if err := q.First(&root, "id = ?", rootID).Error; err != nil {
		return nil, s.notFound("FetchNeighborhood", store.KindUser, rootID, err)
	}

	g := store.NewGraph(root.toUser())
	edges := make(map[store.Subscription]subscriptionModel)
	collectNeighborhood(g, edges, &root)

	rows := make([]subscriptionModel, 0, len(edges))
	for _, m := range edges {
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.SubscriberID != b.SubscriberID {
			return a.SubscriberID < b.SubscriberID
		}
		return a.AuthorID < b.AuthorID
	})
	for _, m := range rows {
		g.Subscriptions = append(g.Subscriptions, m.toSubscription())
	}

	s.logger.Debug("Fetched neighborhood",
		zap.String("root_id", rootID),
		zap.Int("preloads", len(paths)),
		zap.Int("users", len(g.Users)),
		zap.Int("edges", len(g.Subscriptions)),
	)
	return g, nil
}

// collectNeighborhood flattens the preloaded tree below u into g
func collectNeighborhood(g *store.Graph, edges map[store.Subscription]subscriptionModel, u *userModel) {
	for _, sub := range u.SubscribedTo {
		edges[sub.toSubscription()] = sub
		if sub.Author != nil {
			g.Users[sub.Author.ID] = sub.Author.toUser()
			collectNeighborhood(g, edges, sub.Author)
		}
	}
	for _, sub := range u.SubscribedBy {
		edges[sub.toSubscription()] = sub
		if sub.Subscriber != nil {
			g.Users[sub.Subscriber.ID] = sub.Subscriber.toUser()
			collectNeighborhood(g, edges, sub.Subscriber)
		}
	}
}
