// Package storetest holds the behavior every Entity Store backend shares.
// Backend packages call Run from their own tests with a constructor that
// returns an empty store holding only the seeded member tiers.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// Open returns a fresh store for one subtest
type Open func(t *testing.T) store.Store

// Run exercises s against the store contract
func Run(t *testing.T, open Open) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"MemberTypes", testMemberTypes},
		{"Users", testUsers},
		{"Posts", testPosts},
		{"Profiles", testProfiles},
		{"Subscriptions", testSubscriptions},
		{"Neighborhood", testNeighborhood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func user(t *testing.T, s store.Store, name string) store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), store.UserInput{Name: name, Balance: 10})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	return *u
}

func testMemberTypes(t *testing.T, s store.Store) {
	ctx := context.Background()

	tiers, err := s.ListMemberTypes(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, store.SeedMemberTypes(), tiers)

	m, err := s.GetMemberType(ctx, store.MemberTypeBusiness)
	require.NoError(t, err)
	assert.Equal(t, store.MemberTypeBusiness, m.ID)

	_, err = s.GetMemberType(ctx, "GOLD")
	assert.True(t, apperrors.IsNotFound(err))
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	ada := user(t, s, "ada")
	bob := user(t, s, "bob")

	got, err := s.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, ada, *got)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.User{ada, bob}, users)

	name := "ada lovelace"
	updated, err := s.UpdateUser(ctx, ada.ID, store.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, ada.Balance, updated.Balance)

	_, err = s.UpdateUser(ctx, "00000000-0000-0000-0000-000000000000", store.UserPatch{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, s.Subscribe(ctx, bob.ID, ada.ID))
	require.NoError(t, s.DeleteUser(ctx, ada.ID))
	_, err = s.GetUser(ctx, ada.ID)
	assert.True(t, apperrors.IsNotFound(err))

	subs, err := s.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	assert.True(t, apperrors.IsNotFound(s.DeleteUser(ctx, ada.ID)))
}

func testPosts(t *testing.T, s store.Store) {
	ctx := context.Background()

	ada := user(t, s, "ada")
	bob := user(t, s, "bob")

	_, err := s.CreatePost(ctx, store.PostInput{Title: "t", Content: "c", AuthorID: "00000000-0000-0000-0000-000000000000"})
	assert.True(t, apperrors.IsConstraintViolation(err))

	first, err := s.CreatePost(ctx, store.PostInput{Title: "first", Content: "hello", AuthorID: ada.ID})
	require.NoError(t, err)
	second, err := s.CreatePost(ctx, store.PostInput{Title: "second", Content: "again", AuthorID: ada.ID})
	require.NoError(t, err)

	byAuthor, err := s.PostsByAuthors(ctx, []string{ada.ID, bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []store.Post{*first, *second}, byAuthor[ada.ID])
	_, ok := byAuthor[bob.ID]
	assert.False(t, ok)

	title := "renamed"
	updated, err := s.UpdatePost(ctx, first.ID, store.PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "hello", updated.Content)

	assert.True(t, apperrors.IsConstraintViolation(s.DeleteUser(ctx, ada.ID)))

	require.NoError(t, s.DeletePost(ctx, first.ID))
	assert.True(t, apperrors.IsNotFound(s.DeletePost(ctx, first.ID)))

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Post{*second}, posts)
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()

	ada := user(t, s, "ada")

	p, err := s.CreateProfile(ctx, store.ProfileInput{
		IsMale:       false,
		YearOfBirth:  1815,
		UserID:       ada.ID,
		MemberTypeID: store.MemberTypeBasic,
	})
	require.NoError(t, err)
	assert.Equal(t, ada.ID, p.UserID)

	_, err = s.CreateProfile(ctx, store.ProfileInput{YearOfBirth: 1900, UserID: ada.ID, MemberTypeID: store.MemberTypeBasic})
	assert.True(t, apperrors.IsConstraintViolation(err), "one profile per user")

	_, err = s.CreateProfile(ctx, store.ProfileInput{YearOfBirth: 1900, UserID: "00000000-0000-0000-0000-000000000000", MemberTypeID: store.MemberTypeBasic})
	assert.True(t, apperrors.IsConstraintViolation(err))

	assert.True(t, apperrors.IsConstraintViolation(s.DeleteMemberType(ctx, store.MemberTypeBasic)))

	tier := store.MemberTypeBusiness
	updated, err := s.UpdateProfile(ctx, p.ID, store.ProfilePatch{MemberTypeID: &tier})
	require.NoError(t, err)
	assert.Equal(t, store.MemberTypeBusiness, updated.MemberTypeID)
	assert.Equal(t, 1815, updated.YearOfBirth)

	byUser, err := s.ProfilesByUsers(ctx, []string{ada.ID})
	require.NoError(t, err)
	assert.Equal(t, *updated, byUser[ada.ID])

	require.NoError(t, s.DeleteProfile(ctx, p.ID))
	_, err = s.GetProfile(ctx, p.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func testSubscriptions(t *testing.T, s store.Store) {
	ctx := context.Background()

	ada := user(t, s, "ada")
	bob := user(t, s, "bob")
	cy := user(t, s, "cy")

	assert.True(t, apperrors.IsConstraintViolation(s.Subscribe(ctx, ada.ID, ada.ID)))
	assert.True(t, apperrors.IsConstraintViolation(s.Subscribe(ctx, ada.ID, "00000000-0000-0000-0000-000000000000")))

	require.NoError(t, s.Subscribe(ctx, ada.ID, bob.ID))
	require.NoError(t, s.Subscribe(ctx, ada.ID, bob.ID))
	require.NoError(t, s.Subscribe(ctx, cy.ID, ada.ID))

	subs, err := s.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Subscription{
		{SubscriberID: ada.ID, AuthorID: bob.ID},
		{SubscriberID: cy.ID, AuthorID: ada.ID},
	}, subs)

	removed, err := s.Unsubscribe(ctx, ada.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Unsubscribe(ctx, ada.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func testNeighborhood(t *testing.T, s store.Store) {
	ctx := context.Background()

	ada := user(t, s, "ada")
	bob := user(t, s, "bob")
	cy := user(t, s, "cy")
	dan := user(t, s, "dan")

	// ada -> bob -> cy -> dan
	require.NoError(t, s.Subscribe(ctx, ada.ID, bob.ID))
	require.NoError(t, s.Subscribe(ctx, bob.ID, cy.ID))
	require.NoError(t, s.Subscribe(ctx, cy.ID, dan.ID))

	g, err := s.FetchNeighborhood(ctx, ada.ID, store.IncludeBoth(0))
	require.NoError(t, err)
	assert.Equal(t, ada, g.Users[g.RootID])
	assert.Empty(t, g.Subscriptions)

	g, err = s.FetchNeighborhood(ctx, ada.ID, store.IncludeBoth(2))
	require.NoError(t, err)
	assert.Equal(t, ada.ID, g.RootID)
	assert.Contains(t, g.Users, bob.ID)
	assert.Contains(t, g.Users, cy.ID)
	assert.Contains(t, g.Subscriptions, store.Subscription{SubscriberID: ada.ID, AuthorID: bob.ID})
	assert.Contains(t, g.Subscriptions, store.Subscription{SubscriberID: bob.ID, AuthorID: cy.ID})

	g, err = s.FetchNeighborhood(ctx, cy.ID, store.IncludeBoth(1))
	require.NoError(t, err)
	assert.Contains(t, g.Subscriptions, store.Subscription{SubscriberID: bob.ID, AuthorID: cy.ID})
	assert.Contains(t, g.Subscriptions, store.Subscription{SubscriberID: cy.ID, AuthorID: dan.ID})

	_, err = s.FetchNeighborhood(ctx, "00000000-0000-0000-0000-000000000000", store.IncludeBoth(1))
	assert.True(t, apperrors.IsNotFound(err))
}
