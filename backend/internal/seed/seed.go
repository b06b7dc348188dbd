// Package seed prepares a store for serving: schema, member tiers and an
// optional demo data set.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"membergraph/backend/internal/store"
	"membergraph/backend/pkg/logger"
)

// Migrator is implemented by backends with a schema to create
type Migrator interface {
	Migrate(ctx context.Context) error
}

// TierSeeder is implemented by backends whose member tiers are not built in
type TierSeeder interface {
	SeedMemberTypes(ctx context.Context, tiers []store.MemberType) error
}

// Resetter is implemented by backends that can be wiped in place
type Resetter interface {
	Reset(ctx context.Context) error
}

// Prepare creates the schema and upserts the member tiers where the
// backend needs it. Repeated calls are harmless.
func Prepare(ctx context.Context, s store.Store) error {
	log := logger.Named("seed")

	if m, ok := s.(Migrator); ok {
		log.Info("Migrating schema", zap.String("backend", s.Backend()))
		if err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", s.Backend(), err)
		}
	}
	if ts, ok := s.(TierSeeder); ok {
		tiers := store.SeedMemberTypes()
		if err := ts.SeedMemberTypes(ctx, tiers); err != nil {
			return fmt.Errorf("seed member types: %w", err)
		}
		log.Info("Member types seeded", zap.Int("count", len(tiers)))
	}
	return nil
}

// Reset wipes users, posts, profiles and subscriptions
func Reset(ctx context.Context, s store.Store) error {
	r, ok := s.(Resetter)
	if !ok {
		return fmt.Errorf("%s store does not support reset", s.Backend())
	}
	return r.Reset(ctx)
}

// Result counts what Demo inserted
type Result struct {
	Users         int
	Profiles      int
	Posts         int
	Subscriptions int
}

type demoUser struct {
	name    string
	balance float64
	tier    store.MemberTypeID
	born    int
	isMale  bool
	posts   []string
}

var demoUsers = []demoUser{
	{name: "Alice", balance: 120.5, tier: store.MemberTypeBusiness, born: 1988, posts: []string{"Hello", "Second thoughts"}},
	{name: "Bob", balance: 40, tier: store.MemberTypeBasic, born: 1992, isMale: true, posts: []string{"Notes"}},
	{name: "Carol", balance: 0, tier: store.MemberTypeBasic, born: 2001},
	{name: "Dave", balance: 12.75, isMale: true, posts: []string{"First post"}},
}

// demoSubscriptions are index pairs into demoUsers, subscriber first. They
// close a cycle so nested subscription queries have something to show.
var demoSubscriptions = [][2]int{
	{0, 1},
	{1, 2},
	{2, 0},
	{3, 0},
	{3, 1},
}

// Demo inserts a small connected data set
func Demo(ctx context.Context, s store.Store) (*Result, error) {
	log := logger.Named("seed")
	res := &Result{}

	ids := make([]string, len(demoUsers))
	for i, du := range demoUsers {
		u, err := s.CreateUser(ctx, store.UserInput{Name: du.name, Balance: du.balance})
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", du.name, err)
		}
		ids[i] = u.ID
		res.Users++

		if du.tier != "" {
			_, err := s.CreateProfile(ctx, store.ProfileInput{
				IsMale:       du.isMale,
				YearOfBirth:  du.born,
				UserID:       u.ID,
				MemberTypeID: du.tier,
			})
			if err != nil {
				return res, fmt.Errorf("create profile for %s: %w", du.name, err)
			}
			res.Profiles++
		}

		for _, title := range du.posts {
			_, err := s.CreatePost(ctx, store.PostInput{
				Title:    title,
				Content:  fmt.Sprintf("%s by %s", title, du.name),
				AuthorID: u.ID,
			})
			if err != nil {
				return res, fmt.Errorf("create post for %s: %w", du.name, err)
			}
			res.Posts++
		}
	}

	for _, pair := range demoSubscriptions {
		if err := s.Subscribe(ctx, ids[pair[0]], ids[pair[1]]); err != nil {
			return res, fmt.Errorf("subscribe %s to %s: %w", demoUsers[pair[0]].name, demoUsers[pair[1]].name, err)
		}
		res.Subscriptions++
	}

	log.Info("Demo data seeded",
		zap.Int("users", res.Users),
		zap.Int("profiles", res.Profiles),
		zap.Int("posts", res.Posts),
		zap.Int("subscriptions", res.Subscriptions),
	)
	return res, nil
}
