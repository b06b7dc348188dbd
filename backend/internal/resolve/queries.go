package resolve

import (
	"context"

	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Users
// ============================================================================

func (d *Dispatcher) users(ctx context.Context, f selection.Field) (interface{}, error) {
	d.fetch("ListUsers")
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	trees := make([]*Tree, 0, len(users))
	if inc := SelectionInclude(f.Children); inc.Depth() > 0 {
		// one full-graph fetch serves every root
		d.fetch("ListSubscriptions")
		subs, err := d.store.ListSubscriptions(ctx)
		if err != nil {
			return nil, err
		}
		g := &store.Graph{Users: make(map[string]store.User, len(users)), Subscriptions: subs}
		for _, u := range users {
			g.Users[u.ID] = u
		}
		adj := newAdjacency(g)
		for _, u := range users {
			t, err := adj.tree(u.ID, inc)
			if err != nil {
				return nil, err
			}
			d.metrics.ObserveNeighborhood(t.Len())
			trees = append(trees, t)
		}
	} else {
		for _, u := range users {
			trees = append(trees, NewSingleNodeTree(u))
		}
	}

	objs, err := d.shapeUsers(ctx, trees, f.Children)
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, len(objs))
	for i, o := range objs {
		list[i] = o
	}
	return list, nil
}

func (d *Dispatcher) user(ctx context.Context, f selection.Field) (interface{}, error) {
	id, ok := lookupID(f, "id")
	if !ok {
		return nil, nil
	}
	return d.shapeOne(ctx, id, nil, f.Children)
}

// ============================================================================
// Posts
// ============================================================================

func (d *Dispatcher) posts(ctx context.Context, f selection.Field) (interface{}, error) {
	d.fetch("ListPosts")
	posts, err := d.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, len(posts))
	for i, p := range posts {
		list[i] = ShapePost(p, f.Children)
	}
	return list, nil
}

func (d *Dispatcher) post(ctx context.Context, f selection.Field) (interface{}, error) {
	id, ok := lookupID(f, "id")
	if !ok {
		return nil, nil
	}
	d.fetch("GetPost")
	p, err := d.store.GetPost(ctx, id)
	if err != nil {
		return nullOnMiss(err)
	}
	return ShapePost(*p, f.Children), nil
}

// ============================================================================
// Profiles
// ============================================================================

func (d *Dispatcher) profiles(ctx context.Context, f selection.Field) (interface{}, error) {
	d.fetch("ListProfiles")
	profiles, err := d.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	att, err := d.tiers(ctx, f.Children)
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, len(profiles))
	for i, p := range profiles {
		list[i] = ShapeProfile(p, f.Children, att)
	}
	return list, nil
}

func (d *Dispatcher) profile(ctx context.Context, f selection.Field) (interface{}, error) {
	id, ok := lookupID(f, "id")
	if !ok {
		return nil, nil
	}
	d.fetch("GetProfile")
	p, err := d.store.GetProfile(ctx, id)
	if err != nil {
		return nullOnMiss(err)
	}
	att, err := d.tiers(ctx, f.Children)
	if err != nil {
		return nil, err
	}
	return ShapeProfile(*p, f.Children, att), nil
}

// ============================================================================
// Member types
// ============================================================================

func (d *Dispatcher) memberTypes(ctx context.Context, f selection.Field) (interface{}, error) {
	d.fetch("ListMemberTypes")
	tiers, err := d.store.ListMemberTypes(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, len(tiers))
	for i, m := range tiers {
		list[i] = ShapeMemberType(m, f.Children)
	}
	return list, nil
}

func (d *Dispatcher) memberType(ctx context.Context, f selection.Field) (interface{}, error) {
	raw, _ := f.Arg("id")
	name, _ := raw.(string)
	id := store.MemberTypeID(name)
	if !id.Valid() {
		return nil, nil
	}
	d.fetch("GetMemberType")
	m, err := d.store.GetMemberType(ctx, id)
	if err != nil {
		return nullOnMiss(err)
	}
	return ShapeMemberType(*m, f.Children), nil
}

// nullOnMiss turns a NotFound error into a null result
func nullOnMiss(err error) (interface{}, error) {
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	return nil, err
}
