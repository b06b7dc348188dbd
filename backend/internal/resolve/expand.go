// Package resolve is the graph-resolution engine: it expands a user's
// subscription neighborhood with a single eager fetch, shapes the result to
// the client's selection, and dispatches root fields to their handlers.
package resolve

import (
	"context"

	"membergraph/backend/internal/constants"
	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
)

// Subscription edge fields on User
const (
	FieldUserSubscribedTo = "userSubscribedTo"
	FieldSubscribedToUser = "subscribedToUser"
)

// ClampDepth bounds depth to the servable range
func ClampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > constants.MaxSubscriptionDepth {
		return constants.MaxSubscriptionDepth
	}
	return depth
}

// Expand loads the neighborhood of rootID down to depth hops in both
// directions with exactly one FetchNeighborhood call and materializes it.
// A root that does not resolve yields a NotFound error.
func Expand(ctx context.Context, fetcher store.NeighborhoodFetcher, rootID string, depth int) (*Tree, error) {
	return ExpandInclude(ctx, fetcher, rootID, store.IncludeBoth(ClampDepth(depth)))
}

// ExpandInclude is Expand for an arbitrary include tree: only the branches
// inc names are fetched and materialized.
func ExpandInclude(ctx context.Context, fetcher store.NeighborhoodFetcher, rootID string, inc *store.Include) (*Tree, error) {
	g, err := fetcher.FetchNeighborhood(ctx, rootID, inc)
	if err != nil {
		return nil, err
	}
	return BuildTreeInclude(g, rootID, inc)
}

// SelectionInclude is the include tree a User selection follows, cut off
// at the deepest servable hop. Aliased copies of a subscription field are
// merged.
func SelectionInclude(sel selection.Set) *store.Include {
	return selectionInclude(sel, constants.MaxSubscriptionDepth)
}

func selectionInclude(sel selection.Set, budget int) *store.Include {
	inc := &store.Include{}
	if budget <= 0 {
		return inc
	}
	for _, f := range sel {
		switch f.Name {
		case FieldUserSubscribedTo:
			inc.SubscribedTo = mergeInclude(inc.SubscribedTo, selectionInclude(f.Children, budget-1))
		case FieldSubscribedToUser:
			inc.SubscribedBy = mergeInclude(inc.SubscribedBy, selectionInclude(f.Children, budget-1))
		}
	}
	return inc
}

func mergeInclude(a, b *store.Include) *store.Include {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &store.Include{
		SubscribedTo: mergeInclude(a.SubscribedTo, b.SubscribedTo),
		SubscribedBy: mergeInclude(a.SubscribedBy, b.SubscribedBy),
	}
}
