package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
)

// Attachments holds the non-graph rows a shaped result refers to, loaded
// in bulk before shaping. A nil *Attachments has nothing attached.
type Attachments struct {
	posts       map[string][]store.Post
	profiles    map[string]store.Profile
	memberTypes map[store.MemberTypeID]store.MemberType
}

// NewAttachments bundles preloaded rows. memberTypes is indexed by id.
func NewAttachments(posts map[string][]store.Post, profiles map[string]store.Profile, memberTypes []store.MemberType) *Attachments {
	att := &Attachments{posts: posts, profiles: profiles}
	if len(memberTypes) > 0 {
		att.memberTypes = make(map[store.MemberTypeID]store.MemberType, len(memberTypes))
		for _, m := range memberTypes {
			att.memberTypes[m.ID] = m
		}
	}
	return att
}

// PostsOf returns the posts authored by userID
func (a *Attachments) PostsOf(userID string) []store.Post {
	if a == nil {
		return nil
	}
	return a.posts[userID]
}

// ProfileOf returns the profile of userID, if any
func (a *Attachments) ProfileOf(userID string) (store.Profile, bool) {
	if a == nil {
		return store.Profile{}, false
	}
	p, ok := a.profiles[userID]
	return p, ok
}

// MemberType returns the tier with the given id
func (a *Attachments) MemberType(id store.MemberTypeID) (store.MemberType, bool) {
	if a == nil {
		return store.MemberType{}, false
	}
	m, ok := a.memberTypes[id]
	return m, ok
}

// Needs says which attachment kinds a selection refers to
type Needs struct {
	Posts       bool
	Profiles    bool
	MemberTypes bool
}

// Any reports whether anything needs loading
func (n Needs) Any() bool {
	return n.Posts || n.Profiles || n.MemberTypes
}

func (n Needs) merge(o Needs) Needs {
	return Needs{
		Posts:       n.Posts || o.Posts,
		Profiles:    n.Profiles || o.Profiles,
		MemberTypes: n.MemberTypes || o.MemberTypes,
	}
}

// UserNeeds walks a User selection, through subscription edges, for the
// attachments it refers to
func UserNeeds(sel selection.Set) Needs {
	var n Needs
	for _, f := range sel {
		switch f.Name {
		case "posts":
			n.Posts = true
		case "profile":
			n.Profiles = true
			n.MemberTypes = n.MemberTypes || f.Children.Has("memberType")
		case FieldUserSubscribedTo, FieldSubscribedToUser:
			n = n.merge(UserNeeds(f.Children))
		}
	}
	return n
}

// loadAttachments fetches what needs asks for, one batched call per kind,
// concurrently
func (d *Dispatcher) loadAttachments(ctx context.Context, userIDs []string, needs Needs) (*Attachments, error) {
	if !needs.Any() {
		return nil, nil
	}

	var (
		posts    map[string][]store.Post
		profiles map[string]store.Profile
		tiers    []store.MemberType
	)

	g, gctx := errgroup.WithContext(ctx)
	if needs.Posts && len(userIDs) > 0 {
		g.Go(func() error {
			d.fetch("PostsByAuthors")
			var err error
			posts, err = d.store.PostsByAuthors(gctx, userIDs)
			return err
		})
	}
	if needs.Profiles && len(userIDs) > 0 {
		g.Go(func() error {
			d.fetch("ProfilesByUsers")
			var err error
			profiles, err = d.store.ProfilesByUsers(gctx, userIDs)
			return err
		})
	}
	if needs.MemberTypes {
		g.Go(func() error {
			d.fetch("ListMemberTypes")
			var err error
			tiers, err = d.store.ListMemberTypes(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewAttachments(posts, profiles, tiers), nil
}
