package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Subscription Operations
// ============================================================================

// Subscribe records that subscriberID follows authorID. Repeated calls
// leave the existing relationship and its created_at untouched.
func (r *Repository) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	if subscriberID == authorID {
		return apperrors.NewConstraintViolation(store.KindSubscription, "no self-subscription", nil)
	}

	query := `
		MATCH (a:User {id: $subscriberId})
		MATCH (b:User {id: $authorId})
		MERGE (a)-[s:SUBSCRIBED_TO]->(b)
		ON CREATE SET s.created_at = datetime()
		RETURN a.id AS subscriber_id
	`

	_, err := r.write(ctx, "Subscribe", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{
			"subscriberId": subscriberID,
			"authorId":     authorID,
		})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewConstraintViolation(store.KindSubscription, "subscription references a missing user", nil)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Subscription recorded",
		zap.String("subscriber_id", subscriberID),
		zap.String("author_id", authorID),
	)
	return nil
}

// Unsubscribe removes the relationship, reporting whether one existed
func (r *Repository) Unsubscribe(ctx context.Context, subscriberID, authorID string) (bool, error) {
	query := `
		MATCH (:User {id: $subscriberId})-[s:SUBSCRIBED_TO]->(:User {id: $authorId})
		DELETE s
		RETURN count(s) AS removed
	`

	out, err := r.write(ctx, "Unsubscribe", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{
			"subscriberId": subscriberID,
			"authorId":     authorID,
		})
		if err != nil {
			return false, err
		}
		return record != nil && getInt64FromRecord(record, "removed") > 0, nil
	})
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

// ListSubscriptions returns every subscription in creation order
func (r *Repository) ListSubscriptions(ctx context.Context) ([]store.Subscription, error) {
	query := `
		MATCH (a:User)-[s:SUBSCRIBED_TO]->(b:User)
		RETURN a.id AS subscriber_id, b.id AS author_id
		ORDER BY s.created_at, a.id, b.id
	`

	records, err := r.read(ctx, "ListSubscriptions", query, nil)
	if err != nil {
		return nil, err
	}
	subs := make([]store.Subscription, 0, len(records))
	for _, record := range records {
		subs = append(subs, store.Subscription{
			SubscriberID: getStringFromRecord(record, "subscriber_id"),
			AuthorID:     getStringFromRecord(record, "author_id"),
		})
	}
	return subs, nil
}
