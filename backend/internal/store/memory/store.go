// Package memory is an in-process Entity Store. It enforces the same
// reference and uniqueness rules as the database backends and serves as
// the development default and the backend of every unit test.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
	"membergraph/backend/pkg/logger"
)

type pair struct {
	subscriber string
	author     string
}

// Store holds all rows behind one RWMutex; each method is atomic
type Store struct {
	mu sync.RWMutex

	users         *table[string, store.User]
	posts         *table[string, store.Post]
	profiles      *table[string, store.Profile]
	profileByUser map[string]string
	memberTypes   *table[store.MemberTypeID, store.MemberType]
	subscriptions *table[pair, store.Subscription]

	newID  func() string
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// New creates a store seeded with the member tiers
func New() *Store {
	s := &Store{
		users:         newTable[string, store.User](),
		posts:         newTable[string, store.Post](),
		profiles:      newTable[string, store.Profile](),
		profileByUser: make(map[string]string),
		memberTypes:   newTable[store.MemberTypeID, store.MemberType](),
		subscriptions: newTable[pair, store.Subscription](),
		newID:         uuid.NewString,
		logger:        logger.Named("memory-store"),
	}
	for _, mt := range store.SeedMemberTypes() {
		s.memberTypes.put(mt.ID, mt)
	}
	return s
}

// Backend implements store.Store
func (s *Store) Backend() string { return "memory" }

// Close implements store.Store
func (s *Store) Close(ctx context.Context) error { return nil }

// Reset drops every user, post, profile and subscription. Member tiers
// are kept.
func (s *Store) Reset(ctx context.Context) error {
	if err := checkCtx(ctx, "Reset"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = newTable[string, store.User]()
	s.posts = newTable[string, store.Post]()
	s.profiles = newTable[string, store.Profile]()
	s.profileByUser = make(map[string]string)
	s.subscriptions = newTable[pair, store.Subscription]()
	return nil
}

func checkCtx(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewContextCancelled(op, err)
	}
	return nil
}

// ============================================================================
// Users
// ============================================================================

func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	if err := checkCtx(ctx, "GetUser"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindUser, id)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	if err := checkCtx(ctx, "ListUsers"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.list(), nil
}

func (s *Store) CreateUser(ctx context.Context, in store.UserInput) (*store.User, error) {
	if err := checkCtx(ctx, "CreateUser"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := store.User{ID: s.newID(), Name: in.Name, Balance: in.Balance}
	s.users.put(u.ID, u)
	s.logger.Debug("User created", zap.String("user_id", u.ID))
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch store.UserPatch) (*store.User, error) {
	if err := checkCtx(ctx, "UpdateUser"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindUser, id)
	}
	u = patch.Apply(u)
	s.users.put(id, u)
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := checkCtx(ctx, "DeleteUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(id); !ok {
		return apperrors.NewNotFound(store.KindUser, id)
	}
	owned := s.posts.filter(func(p store.Post) bool { return p.AuthorID == id })
	if len(owned) > 0 {
		return apperrors.NewConstraintViolation(store.KindUser, "post.authorId references user", nil)
	}

	if profileID, ok := s.profileByUser[id]; ok {
		s.profiles.delete(profileID)
		delete(s.profileByUser, id)
	}
	for _, sub := range s.subscriptions.filter(func(sub store.Subscription) bool {
		return sub.SubscriberID == id || sub.AuthorID == id
	}) {
		s.subscriptions.delete(pair{sub.SubscriberID, sub.AuthorID})
	}
	s.users.delete(id)
	s.logger.Debug("User deleted", zap.String("user_id", id))
	return nil
}

// ============================================================================
// Posts
// ============================================================================

func (s *Store) GetPost(ctx context.Context, id string) (*store.Post, error) {
	if err := checkCtx(ctx, "GetPost"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindPost, id)
	}
	return &p, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]store.Post, error) {
	if err := checkCtx(ctx, "ListPosts"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts.list(), nil
}

func (s *Store) PostsByAuthors(ctx context.Context, authorIDs []string) (map[string][]store.Post, error) {
	if err := checkCtx(ctx, "PostsByAuthors"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]store.Post)
	for _, p := range s.posts.filter(func(p store.Post) bool { return wanted[p.AuthorID] }) {
		out[p.AuthorID] = append(out[p.AuthorID], p)
	}
	return out, nil
}

func (s *Store) CreatePost(ctx context.Context, in store.PostInput) (*store.Post, error) {
	if err := checkCtx(ctx, "CreatePost"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(in.AuthorID); !ok {
		return nil, apperrors.NewConstraintViolation(store.KindPost, "post.authorId references user", nil)
	}
	p := store.Post{ID: s.newID(), Title: in.Title, Content: in.Content, AuthorID: in.AuthorID}
	s.posts.put(p.ID, p)
	return &p, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch store.PostPatch) (*store.Post, error) {
	if err := checkCtx(ctx, "UpdatePost"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindPost, id)
	}
	p = patch.Apply(p)
	s.posts.put(id, p)
	return &p, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := checkCtx(ctx, "DeletePost"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.posts.delete(id) {
		return apperrors.NewNotFound(store.KindPost, id)
	}
	return nil
}

// ============================================================================
// Profiles
// ============================================================================

func (s *Store) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	if err := checkCtx(ctx, "GetProfile"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindProfile, id)
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]store.Profile, error) {
	if err := checkCtx(ctx, "ListProfiles"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.list(), nil
}

func (s *Store) ProfilesByUsers(ctx context.Context, userIDs []string) (map[string]store.Profile, error) {
	if err := checkCtx(ctx, "ProfilesByUsers"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]store.Profile)
	for _, uid := range userIDs {
		if pid, ok := s.profileByUser[uid]; ok {
			out[uid], _ = s.profiles.get(pid)
		}
	}
	return out, nil
}

func (s *Store) CreateProfile(ctx context.Context, in store.ProfileInput) (*store.Profile, error) {
	if err := checkCtx(ctx, "CreateProfile"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertProfile(in)
}

// insertProfile expects s.mu to be held for writing
func (s *Store) insertProfile(in store.ProfileInput) (*store.Profile, error) {
	if _, ok := s.users.get(in.UserID); !ok {
		return nil, apperrors.NewConstraintViolation(store.KindProfile, "profile.userId references user", nil)
	}
	if _, ok := s.memberTypes.get(in.MemberTypeID); !ok {
		return nil, apperrors.NewConstraintViolation(store.KindProfile, "profile.memberTypeId references memberType", nil)
	}
	if _, taken := s.profileByUser[in.UserID]; taken {
		return nil, apperrors.NewConstraintViolation(store.KindProfile, "profile.userId unique", nil)
	}

	p := store.Profile{
		ID:           s.newID(),
		IsMale:       in.IsMale,
		YearOfBirth:  in.YearOfBirth,
		UserID:       in.UserID,
		MemberTypeID: in.MemberTypeID,
	}
	s.profiles.put(p.ID, p)
	s.profileByUser[p.UserID] = p.ID
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, patch store.ProfilePatch) (*store.Profile, error) {
	if err := checkCtx(ctx, "UpdateProfile"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindProfile, id)
	}
	if patch.MemberTypeID != nil {
		if _, ok := s.memberTypes.get(*patch.MemberTypeID); !ok {
			return nil, apperrors.NewConstraintViolation(store.KindProfile, "profile.memberTypeId references memberType", nil)
		}
	}
	p = patch.Apply(p)
	s.profiles.put(id, p)
	return &p, nil
}

func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if err := checkCtx(ctx, "DeleteProfile"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles.get(id)
	if !ok {
		return apperrors.NewNotFound(store.KindProfile, id)
	}
	s.profiles.delete(id)
	delete(s.profileByUser, p.UserID)
	return nil
}

// ============================================================================
// Member types
// ============================================================================

func (s *Store) GetMemberType(ctx context.Context, id store.MemberTypeID) (*store.MemberType, error) {
	if err := checkCtx(ctx, "GetMemberType"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	mt, ok := s.memberTypes.get(id)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindMemberType, string(id))
	}
	return &mt, nil
}

func (s *Store) ListMemberTypes(ctx context.Context) ([]store.MemberType, error) {
	if err := checkCtx(ctx, "ListMemberTypes"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memberTypes.list(), nil
}

func (s *Store) DeleteMemberType(ctx context.Context, id store.MemberTypeID) error {
	if err := checkCtx(ctx, "DeleteMemberType"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memberTypes.get(id); !ok {
		return apperrors.NewNotFound(store.KindMemberType, string(id))
	}
	inUse := s.profiles.filter(func(p store.Profile) bool { return p.MemberTypeID == id })
	if len(inUse) > 0 {
		return apperrors.NewConstraintViolation(store.KindMemberType, "profile.memberTypeId references memberType", nil)
	}
	s.memberTypes.delete(id)
	return nil
}

// ============================================================================
// Subscriptions
// ============================================================================

func (s *Store) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	if err := checkCtx(ctx, "Subscribe"); err != nil {
		return err
	}
	if subscriberID == authorID {
		return apperrors.NewConstraintViolation(store.KindSubscription, "no self-subscription", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(subscriberID); !ok {
		return apperrors.NewConstraintViolation(store.KindSubscription, "subscription.subscriberId references user", nil)
	}
	if _, ok := s.users.get(authorID); !ok {
		return apperrors.NewConstraintViolation(store.KindSubscription, "subscription.authorId references user", nil)
	}
	key := pair{subscriberID, authorID}
	if _, exists := s.subscriptions.get(key); exists {
		return nil
	}
	s.subscriptions.put(key, store.Subscription{SubscriberID: subscriberID, AuthorID: authorID})
	return nil
}

func (s *Store) Unsubscribe(ctx context.Context, subscriberID, authorID string) (bool, error) {
	if err := checkCtx(ctx, "Unsubscribe"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.delete(pair{subscriberID, authorID}), nil
}

func (s *Store) ListSubscriptions(ctx context.Context) ([]store.Subscription, error) {
	if err := checkCtx(ctx, "ListSubscriptions"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscriptions.list(), nil
}

// FetchNeighborhood walks include from the root, collecting every edge it
// crosses, and returns the edges in creation order
func (s *Store) FetchNeighborhood(ctx context.Context, rootID string, include *store.Include) (*store.Graph, error) {
	if err := checkCtx(ctx, "FetchNeighborhood"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.users.get(rootID)
	if !ok {
		return nil, apperrors.NewNotFound(store.KindUser, rootID)
	}

	type visitKey struct {
		userID string
		inc    *store.Include
	}

	g := store.NewGraph(root)
	crossed := make(map[pair]bool)
	seen := make(map[visitKey]bool)

	var visit func(userID string, inc *store.Include)
	visit = func(userID string, inc *store.Include) {
		if seen[visitKey{userID, inc}] {
			return
		}
		seen[visitKey{userID, inc}] = true
		if next := inc.Branch(store.SubscribedTo); next != nil {
			for _, sub := range s.subscriptions.filter(func(sub store.Subscription) bool { return sub.SubscriberID == userID }) {
				crossed[pair{sub.SubscriberID, sub.AuthorID}] = true
				g.Users[sub.AuthorID], _ = s.users.get(sub.AuthorID)
				visit(sub.AuthorID, next)
			}
		}
		if next := inc.Branch(store.SubscribedBy); next != nil {
			for _, sub := range s.subscriptions.filter(func(sub store.Subscription) bool { return sub.AuthorID == userID }) {
				crossed[pair{sub.SubscriberID, sub.AuthorID}] = true
				g.Users[sub.SubscriberID], _ = s.users.get(sub.SubscriberID)
				visit(sub.SubscriberID, next)
			}
		}
	}
	visit(rootID, include)

	g.Subscriptions = s.subscriptions.filter(func(sub store.Subscription) bool {
		return crossed[pair{sub.SubscriberID, sub.AuthorID}]
	})
	return g, nil
}
