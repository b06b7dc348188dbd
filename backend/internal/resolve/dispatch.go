package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"membergraph/backend/internal/metrics"
	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// Handler resolves one root field. A nil value with a nil error is a null
// result.
type Handler func(ctx context.Context, field selection.Field) (interface{}, error)

// Dispatcher routes Query and Mutation root fields to their handlers
type Dispatcher struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Collector

	queries   map[string]Handler
	mutations map[string]Handler
}

// NewDispatcher builds the dispatch table over s. m may be nil.
func NewDispatcher(s store.Store, log *zap.Logger, m *metrics.Collector) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		store:   s,
		logger:  log,
		metrics: m,
	}

	d.queries = map[string]Handler{
		"users":       d.users,
		"user":        d.user,
		"posts":       d.posts,
		"post":        d.post,
		"profiles":    d.profiles,
		"profile":     d.profile,
		"memberTypes": d.memberTypes,
		"memberType":  d.memberType,
	}

	d.mutations = map[string]Handler{
		"createUser":      d.createUser,
		"changeUser":      d.changeUser,
		"deleteUser":      d.deleteUser,
		"createPost":      d.createPost,
		"changePost":      d.changePost,
		"deletePost":      d.deletePost,
		"createProfile":   d.createProfile,
		"changeProfile":   d.changeProfile,
		"deleteProfile":   d.deleteProfile,
		"subscribeTo":     d.subscribeTo,
		"unsubscribeFrom": d.unsubscribeFrom,
	}

	return d
}

// Handler looks up the handler for a root field of operation op
func (d *Dispatcher) Handler(op ast.Operation, name string) (Handler, bool) {
	table := d.queries
	if op == ast.Mutation {
		table = d.mutations
	}
	h, ok := table[name]
	return h, ok
}

// Resolve runs the handler for field and records the outcome
func (d *Dispatcher) Resolve(ctx context.Context, op ast.Operation, field selection.Field) (interface{}, error) {
	h, ok := d.Handler(op, field.Name)
	if !ok {
		return nil, apperrors.NewInvalidInput(field.Name, fmt.Sprintf("not a %s field", op))
	}

	start := time.Now()
	v, err := h(ctx, field)

	status := metrics.StatusOK
	switch {
	case err != nil:
		status = metrics.StatusError
		d.logger.Debug("Root field failed",
			zap.String("operation", string(op)),
			zap.String("field", field.Name),
			zap.Error(err))
	case v == nil:
		status = metrics.StatusNull
	}
	d.metrics.ObserveOperation(string(op), field.Name, status, time.Since(start))
	return v, err
}

// fetch counts one store call
func (d *Dispatcher) fetch(op string) {
	d.metrics.StoreFetch(op)
}

// shapeUsers shapes every tree for sel after loading their attachments in
// one batch
func (d *Dispatcher) shapeUsers(ctx context.Context, trees []*Tree, sel selection.Set) ([]selection.Object, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, t := range trees {
		for _, id := range t.UserIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	att, err := d.loadAttachments(ctx, ids, UserNeeds(sel))
	if err != nil {
		return nil, err
	}

	out := make([]selection.Object, len(trees))
	for i, t := range trees {
		out[i] = Shape(t, sel, att)
	}
	return out, nil
}

// userTree builds the tree a User selection rooted at id needs: the user
// alone, or its neighborhood when the selection follows subscription
// edges. A known user saves the GetUser call on the first path.
func (d *Dispatcher) userTree(ctx context.Context, id string, known *store.User, sel selection.Set) (*Tree, error) {
	inc := SelectionInclude(sel)
	if inc.Depth() > 0 {
		return d.expand(ctx, id, inc)
	}
	if known != nil {
		return NewSingleNodeTree(*known), nil
	}
	d.fetch("GetUser")
	u, err := d.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSingleNodeTree(*u), nil
}

func (d *Dispatcher) expand(ctx context.Context, id string, inc *store.Include) (*Tree, error) {
	d.fetch("FetchNeighborhood")
	t, err := ExpandInclude(ctx, d.store, id, inc)
	if err != nil {
		return nil, err
	}
	d.metrics.ObserveNeighborhood(t.Len())
	d.logger.Debug("Expanded neighborhood",
		zap.String("user_id", id),
		zap.Stringer("include", inc),
		zap.Int("nodes", t.Len()))
	return t, nil
}

// shapeOne shapes the user id for sel, or reports null when it is gone
func (d *Dispatcher) shapeOne(ctx context.Context, id string, known *store.User, sel selection.Set) (interface{}, error) {
	t, err := d.userTree(ctx, id, known, sel)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	objs, err := d.shapeUsers(ctx, []*Tree{t}, sel)
	if err != nil {
		return nil, err
	}
	return objs[0], nil
}

// tiers loads the member tiers when a Profile selection refers to them
func (d *Dispatcher) tiers(ctx context.Context, profileSel selection.Set) (*Attachments, error) {
	return d.loadAttachments(ctx, nil, Needs{MemberTypes: profileSel.Has("memberType")})
}
