package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Neighborhood Fetch
// ============================================================================

// neighborhoodQuery matches every undirected SUBSCRIBED_TO path of up to
// %d hops from the root. Relationship uniqueness within a path still
// reaches every edge a directed walk of that length can cross; the extra
// edges are pruned when the tree is built.
const neighborhoodQuery = `
	MATCH (root:User {id: $rootId})
	OPTIONAL MATCH p = (root)-[:SUBSCRIBED_TO*1..%d]-(:User)
	UNWIND CASE WHEN p IS NULL THEN [null] ELSE relationships(p) END AS rel
	WITH root, collect(DISTINCT rel) AS rels
	RETURN root {.id, .name, .balance} AS root,
	       [rel IN rels | {
	           subscriber: startNode(rel) {.id, .name, .balance},
	           author: endNode(rel) {.id, .name, .balance},
	           created_at: rel.created_at
	       }] AS edges
`

type neighborhoodEdge struct {
	subscriber store.User
	author     store.User
	createdAt  time.Time
}

// FetchNeighborhood loads the root and the subscription edges within
// include.Depth() hops in one round trip
func (r *Repository) FetchNeighborhood(ctx context.Context, rootID string, include *store.Include) (*store.Graph, error) {
	depth := include.Depth()
	if depth == 0 {
		root, err := r.GetUser(ctx, rootID)
		if err != nil {
			return nil, err
		}
		return store.NewGraph(*root), nil
	}

	records, err := r.read(ctx, "FetchNeighborhood", fmt.Sprintf(neighborhoodQuery, depth), map[string]interface{}{"rootId": rootID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(store.KindUser, rootID)
	}

	record := records[0]
	g := store.NewGraph(userFromMap(getMapFromRecord(record, "root")))

	raw, _ := record.Get("edges")
	list, _ := raw.([]interface{})
	edges := make([]neighborhoodEdge, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		sub, _ := m["subscriber"].(map[string]interface{})
		author, _ := m["author"].(map[string]interface{})
		edges = append(edges, neighborhoodEdge{
			subscriber: userFromMap(sub),
			author:     userFromMap(author),
			createdAt:  getTimeFromMap(m, "created_at"),
		})
	}

	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		if a.subscriber.ID != b.subscriber.ID {
			return a.subscriber.ID < b.subscriber.ID
		}
		return a.author.ID < b.author.ID
	})

	for _, e := range edges {
		g.Users[e.subscriber.ID] = e.subscriber
		g.Users[e.author.ID] = e.author
		g.Subscriptions = append(g.Subscriptions, store.Subscription{
			SubscriberID: e.subscriber.ID,
			AuthorID:     e.author.ID,
		})
	}

	r.logger.Debug("Fetched neighborhood",
		zap.String("root_id", rootID),
		zap.Int("depth", depth),
		zap.Int("users", len(g.Users)),
		zap.Int("edges", len(g.Subscriptions)),
	)
	return g, nil
}
