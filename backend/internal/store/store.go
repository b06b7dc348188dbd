// Package store defines the Entity Store contract: typed accessors over
// users, posts, profiles, member tiers and the subscription join, plus the
// bounded eager fetch the neighborhood expansion is built on.
//
// Misses are reported with a NotFound error from backend/pkg/errors,
// rejected writes with a ConstraintViolation, and backend failures with
// StoreUnavailable. Every method is a single atomic call against the
// backend and is safe for concurrent use.
package store

import "context"

// UserStore reads and writes users
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, in UserInput) (*User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)
	// DeleteUser removes the user together with its profile and every
	// subscription row it takes part in. Users with posts are rejected.
	DeleteUser(ctx context.Context, id string) error
}

// PostStore reads and writes posts
type PostStore interface {
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context) ([]Post, error)
	// PostsByAuthors returns the posts of each requested author; authors
	// without posts are absent from the map.
	PostsByAuthors(ctx context.Context, authorIDs []string) (map[string][]Post, error)
	CreatePost(ctx context.Context, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, id string, patch PostPatch) (*Post, error)
	DeletePost(ctx context.Context, id string) error
}

// ProfileStore reads and writes profiles
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	// ProfilesByUsers returns the profile of each requested user that has one
	ProfilesByUsers(ctx context.Context, userIDs []string) (map[string]Profile, error)
	CreateProfile(ctx context.Context, in ProfileInput) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// MemberTypeStore reads the seeded member tiers
type MemberTypeStore interface {
	GetMemberType(ctx context.Context, id MemberTypeID) (*MemberType, error)
	ListMemberTypes(ctx context.Context) ([]MemberType, error)
	// DeleteMemberType is reserved for seeding and resets; it fails while
	// any profile references the tier.
	DeleteMemberType(ctx context.Context, id MemberTypeID) error
}

// SubscriptionStore maintains the subscriber -> author join
type SubscriptionStore interface {
	// Subscribe is idempotent: repeating an existing pair is a no-op.
	Subscribe(ctx context.Context, subscriberID, authorID string) error
	// Unsubscribe reports whether a pair was removed.
	Unsubscribe(ctx context.Context, subscriberID, authorID string) (bool, error)
	// ListSubscriptions returns every pair in creation order.
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
}

// NeighborhoodFetcher performs the bounded eager fetch of a user's
// subscription neighborhood in a single request
type NeighborhoodFetcher interface {
	// FetchNeighborhood loads the root user and, following include, the
	// subscription edges and connected users in both directions. A missing
	// root yields a NotFound error. Backends may return more than include
	// asks for; callers prune.
	FetchNeighborhood(ctx context.Context, rootID string, include *Include) (*Graph, error)
}

// Store is the full Entity Store a backend provides
type Store interface {
	UserStore
	PostStore
	ProfileStore
	MemberTypeStore
	SubscriptionStore
	NeighborhoodFetcher

	// Backend names the implementation for logs and metrics
	Backend() string
	Close(ctx context.Context) error
}

// UserProfileCreator is implemented by backends that can insert a user and
// its profile in one transaction. The profile's UserID is ignored and set
// to the new user's id.
type UserProfileCreator interface {
	CreateUserWithProfile(ctx context.Context, user UserInput, profile ProfileInput) (*User, *Profile, error)
}
