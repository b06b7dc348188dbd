package resolve

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
	"membergraph/backend/internal/store/memory"
	apperrors "membergraph/backend/pkg/errors"
	"membergraph/backend/pkg/logger"
)

// countingStore records how often each store method is hit
type countingStore struct {
	store.Store
	mu    sync.Mutex
	calls map[string]int
}

func TestMain(m *testing.M) {
	logger.Replace(zap.NewNop())
	os.Exit(m.Run())
}

func newCountingStore() *countingStore {
	return &countingStore{Store: memory.New(), calls: make(map[string]int)}
}

func (c *countingStore) count(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
}

func (c *countingStore) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *countingStore) FetchNeighborhood(ctx context.Context, rootID string, include *store.Include) (*store.Graph, error) {
	c.count("FetchNeighborhood")
	return c.Store.FetchNeighborhood(ctx, rootID, include)
}

func (c *countingStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	c.count("GetUser")
	return c.Store.GetUser(ctx, id)
}

func (c *countingStore) ListSubscriptions(ctx context.Context) ([]store.Subscription, error) {
	c.count("ListSubscriptions")
	return c.Store.ListSubscriptions(ctx)
}

func (c *countingStore) PostsByAuthors(ctx context.Context, ids []string) (map[string][]store.Post, error) {
	c.count("PostsByAuthors")
	return c.Store.PostsByAuthors(ctx, ids)
}

func field(name string, children ...selection.Field) selection.Field {
	return selection.Field{Name: name, Alias: name, Children: children}
}

func withArgs(f selection.Field, args map[string]interface{}) selection.Field {
	f.Args = args
	return f
}

func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func mkUser(t *testing.T, s store.Store, name string) store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), store.UserInput{Name: name})
	require.NoError(t, err)
	return *u
}

func follow(t *testing.T, s store.Store, subscriber, author store.User) {
	t.Helper()
	require.NoError(t, s.Subscribe(context.Background(), subscriber.ID, author.ID))
}

func TestExpand_DepthZeroHasNoEdges(t *testing.T) {
	s := newCountingStore()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	follow(t, s, a, b)
	follow(t, s, b, a)

	tree, err := Expand(context.Background(), s, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, a, tree.Root().User)
	assert.Empty(t, tree.Root().SubscribedTo)
	assert.Empty(t, tree.Root().SubscribedBy)
	assert.Equal(t, 1, s.Calls("FetchNeighborhood"))
}

func TestExpand_MissingRoot(t *testing.T) {
	_, err := Expand(context.Background(), memory.New(), "2b1f1c3e-0000-4000-8000-000000000000", 2)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExpand_ClampsDepth(t *testing.T) {
	s := newCountingStore()
	a := mkUser(t, s, "a")

	tree, err := Expand(context.Background(), s, a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Depth())

	tree, err = Expand(context.Background(), s, a.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Depth())
}

func TestShape_DeeperTreeAgreesOnShallowSelection(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	c := mkUser(t, s, "c")
	follow(t, s, a, b)
	follow(t, s, b, a)
	follow(t, s, b, c)
	follow(t, s, c, a)

	sel := selection.Set{
		field("id"),
		field(FieldUserSubscribedTo, field("id"), field("name")),
		field(FieldSubscribedToUser, field("id")),
	}

	shallow, err := Expand(ctx, s, a.ID, 1)
	require.NoError(t, err)
	deep, err := Expand(ctx, s, a.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, toJSON(t, Shape(shallow, sel, nil)), toJSON(t, Shape(deep, sel, nil)))
	assert.JSONEq(t,
		`{"id":"`+a.ID+`","userSubscribedTo":[{"id":"`+b.ID+`","name":"b"}],"subscribedToUser":[{"id":"`+b.ID+`"},{"id":"`+c.ID+`"}]}`,
		toJSON(t, Shape(shallow, sel, nil)))

	// past the tree's depth every list is empty
	deeper := selection.Set{field(FieldUserSubscribedTo, field(FieldUserSubscribedTo, field("id")))}
	assert.JSONEq(t,
		`{"userSubscribedTo":[{"userSubscribedTo":[]}]}`,
		toJSON(t, Shape(shallow, deeper, nil)))
}

func TestShape_IsIdempotent(t *testing.T) {
	s := memory.New()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	follow(t, s, a, b)

	tree, err := Expand(context.Background(), s, a.ID, 2)
	require.NoError(t, err)
	sel := selection.Set{field(typenameField), field(FieldUserSubscribedTo, field("id"), field(FieldSubscribedToUser, field("id")))}
	assert.Equal(t, toJSON(t, Shape(tree, sel, nil)), toJSON(t, Shape(tree, sel, nil)))
}

func TestBuildTree_PrunesOverFetchedEdges(t *testing.T) {
	a := store.User{ID: "a"}
	b := store.User{ID: "b"}
	c := store.User{ID: "c"}
	g := &store.Graph{
		RootID: "a",
		Users:  map[string]store.User{"a": a, "b": b, "c": c},
		Subscriptions: []store.Subscription{
			{SubscriberID: "a", AuthorID: "b"},
			{SubscriberID: "b", AuthorID: "c"},
			{SubscriberID: "x", AuthorID: "a"},
		},
	}

	tree, err := BuildTree(g, "a", 1)
	require.NoError(t, err)
	require.Len(t, tree.Root().SubscribedTo, 1)
	assert.Empty(t, tree.Root().SubscribedBy, "edges to users outside the graph are dropped")

	child := tree.Node(tree.Root().SubscribedTo[0])
	assert.Equal(t, "b", child.User.ID)
	assert.Equal(t, 1, child.Hop)
	assert.Empty(t, child.SubscribedTo)
	assert.Empty(t, child.SubscribedBy)
	assert.Equal(t, []string{"a", "b"}, tree.UserIDs())
}

func TestBuildTreeInclude_SkipsUnselectedDirections(t *testing.T) {
	// three users who all follow each other
	g := &store.Graph{RootID: "a", Users: map[string]store.User{}}
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		g.Users[id] = store.User{ID: id}
	}
	for _, from := range ids {
		for _, to := range ids {
			if from != to {
				g.Subscriptions = append(g.Subscriptions, store.Subscription{SubscriberID: from, AuthorID: to})
			}
		}
	}

	both, err := BuildTree(g, "a", 3)
	require.NoError(t, err)
	assert.Equal(t, 1+4+16+64, both.Len())

	following := &store.Include{}
	for i := 0; i < 3; i++ {
		following = &store.Include{SubscribedTo: following}
	}
	tree, err := BuildTreeInclude(g, "a", following)
	require.NoError(t, err)
	assert.Equal(t, 1+2+4+8, tree.Len())
	assert.Equal(t, 3, tree.Depth())
	assert.Empty(t, tree.Root().SubscribedBy)

	sel := selection.Set{field(FieldUserSubscribedTo, field("id"), field(FieldUserSubscribedTo, field("id")))}
	assert.Equal(t, toJSON(t, Shape(both, sel, nil)), toJSON(t, Shape(tree, sel, nil)))
}

func TestDispatch_ThreeCycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	c := mkUser(t, s, "c")
	follow(t, s, a, b)
	follow(t, s, b, c)
	follow(t, s, c, a)

	d := NewDispatcher(s, nil, nil)
	q := withArgs(field("user",
		field("id"),
		field(FieldUserSubscribedTo, field("id"), field(FieldUserSubscribedTo, field("id"))),
		field(FieldSubscribedToUser, field("id")),
	), map[string]interface{}{"id": a.ID})

	v, err := d.Resolve(ctx, ast.Query, q)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"`+a.ID+`","userSubscribedTo":[{"id":"`+b.ID+`","userSubscribedTo":[{"id":"`+c.ID+`"}]}],"subscribedToUser":[{"id":"`+c.ID+`"}]}`,
		toJSON(t, v))

	// the cycle closes on a at the third hop
	q = withArgs(field("user",
		field(FieldUserSubscribedTo, field(FieldUserSubscribedTo, field(FieldUserSubscribedTo, field("name")))),
	), map[string]interface{}{"id": a.ID})
	v, err = d.Resolve(ctx, ast.Query, q)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"userSubscribedTo":[{"userSubscribedTo":[{"userSubscribedTo":[{"name":"a"}]}]}]}`,
		toJSON(t, v))
}

func TestDispatch_DepthIsCapped(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	users := make([]store.User, 5)
	for i := range users {
		users[i] = mkUser(t, s, string(rune('a'+i)))
	}
	for i := 0; i < len(users)-1; i++ {
		follow(t, s, users[i], users[i+1])
	}

	// four hops asked for, three served
	sel := field(FieldUserSubscribedTo, field("name"))
	for i := 0; i < 3; i++ {
		sel = field(FieldUserSubscribedTo, field("name"), sel)
	}

	d := NewDispatcher(s, nil, nil)
	v, err := d.Resolve(ctx, ast.Query, withArgs(field("user", sel), map[string]interface{}{"id": users[0].ID}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"userSubscribedTo":[{"name":"b","userSubscribedTo":[{"name":"c","userSubscribedTo":[{"name":"d","userSubscribedTo":[]}]}]}]}`,
		toJSON(t, v))
}

func TestDispatch_SingleEagerFetch(t *testing.T) {
	ctx := context.Background()
	s := newCountingStore()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	follow(t, s, a, b)
	follow(t, s, b, a)

	d := NewDispatcher(s, nil, nil)
	deep := withArgs(field("user",
		field(FieldUserSubscribedTo, field(FieldSubscribedToUser, field(FieldUserSubscribedTo, field("id")))),
	), map[string]interface{}{"id": a.ID})
	_, err := d.Resolve(ctx, ast.Query, deep)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Calls("FetchNeighborhood"))
	assert.Equal(t, 0, s.Calls("GetUser"))

	flat := withArgs(field("user", field("id"), field("name")), map[string]interface{}{"id": a.ID})
	_, err = d.Resolve(ctx, ast.Query, flat)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Calls("FetchNeighborhood"), "plain reads do not expand")
	assert.Equal(t, 1, s.Calls("GetUser"))
}

func TestDispatch_UsersWithEdgesLoadsGraphOnce(t *testing.T) {
	ctx := context.Background()
	s := newCountingStore()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	follow(t, s, a, b)

	d := NewDispatcher(s, nil, nil)
	v, err := d.Resolve(ctx, ast.Query, field("users", field("name"), field(FieldSubscribedToUser, field("name"))))
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"name":"a","subscribedToUser":[]},{"name":"b","subscribedToUser":[{"name":"a"}]}]`,
		toJSON(t, v))
	assert.Equal(t, 1, s.Calls("ListSubscriptions"))
	assert.Equal(t, 0, s.Calls("FetchNeighborhood"))
}

func TestDispatch_Attachments(t *testing.T) {
	ctx := context.Background()
	s := newCountingStore()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	follow(t, s, a, b)
	_, err := s.CreatePost(ctx, store.PostInput{Title: "hello", Content: "world", AuthorID: b.ID})
	require.NoError(t, err)
	_, err = s.CreateProfile(ctx, store.ProfileInput{UserID: b.ID, YearOfBirth: 1990, MemberTypeID: store.MemberTypeBusiness})
	require.NoError(t, err)

	d := NewDispatcher(s, nil, nil)
	q := withArgs(field("user",
		field("profile", field("yearOfBirth")),
		field(FieldUserSubscribedTo,
			field("posts", field("title")),
			field("profile", field("memberType", field("id"), field("discount"))),
		),
	), map[string]interface{}{"id": a.ID})

	v, err := d.Resolve(ctx, ast.Query, q)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"profile":null,"userSubscribedTo":[{"posts":[{"title":"hello"}],"profile":{"memberType":{"id":"BUSINESS","discount":7.7}}}]}`,
		toJSON(t, v))
	assert.Equal(t, 1, s.Calls("PostsByAuthors"))
}

func TestDispatch_NullsAndFalses(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(memory.New(), nil, nil)
	missing := "6a0c7c52-5f43-4d3c-9a7b-2c8d4b1e0f11"

	for _, name := range []string{"user", "post", "profile"} {
		v, err := d.Resolve(ctx, ast.Query, withArgs(field(name, field("id")), map[string]interface{}{"id": missing}))
		require.NoError(t, err)
		assert.Nil(t, v, name)

		v, err = d.Resolve(ctx, ast.Query, withArgs(field(name, field("id")), map[string]interface{}{"id": "not-a-uuid"}))
		require.NoError(t, err)
		assert.Nil(t, v, name+" with malformed id")
	}

	v, err := d.Resolve(ctx, ast.Query, withArgs(field("memberType", field("id")), map[string]interface{}{"id": "GOLD"}))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = d.Resolve(ctx, ast.Mutation, withArgs(field("changeUser", field("id")), map[string]interface{}{
		"id": missing, "dto": map[string]interface{}{"name": "x"},
	}))
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, name := range []string{"deleteUser", "deletePost", "deleteProfile"} {
		v, err := d.Resolve(ctx, ast.Mutation, withArgs(field(name), map[string]interface{}{"id": missing}))
		require.NoError(t, err)
		assert.Equal(t, false, v, name)
	}

	_, err = d.Resolve(ctx, ast.Mutation, withArgs(field("deleteUser"), map[string]interface{}{"id": "nope"}))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestDispatch_SubscribeUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := mkUser(t, s, "a")
	b := mkUser(t, s, "b")
	d := NewDispatcher(s, nil, nil)
	args := map[string]interface{}{"userId": a.ID, "authorId": b.ID}

	following := func() string {
		v, err := d.Resolve(ctx, ast.Query, withArgs(field("user", field(FieldUserSubscribedTo, field("id"))), map[string]interface{}{"id": a.ID}))
		require.NoError(t, err)
		return toJSON(t, v)
	}

	v, err := d.Resolve(ctx, ast.Mutation, withArgs(field("subscribeTo"), args))
	require.NoError(t, err)
	assert.Equal(t, true, v)
	assert.JSONEq(t, `{"userSubscribedTo":[{"id":"`+b.ID+`"}]}`, following())

	v, err = d.Resolve(ctx, ast.Mutation, withArgs(field("subscribeTo"), args))
	require.NoError(t, err)
	assert.Equal(t, true, v, "repeat subscribe is a no-op")
	assert.JSONEq(t, `{"userSubscribedTo":[{"id":"`+b.ID+`"}]}`, following())

	v, err = d.Resolve(ctx, ast.Mutation, withArgs(field("unsubscribeFrom"), args))
	require.NoError(t, err)
	assert.Equal(t, true, v)
	assert.JSONEq(t, `{"userSubscribedTo":[]}`, following())

	v, err = d.Resolve(ctx, ast.Mutation, withArgs(field("unsubscribeFrom"), args))
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = d.Resolve(ctx, ast.Mutation, withArgs(field("subscribeTo"), map[string]interface{}{"userId": a.ID, "authorId": a.ID}))
	assert.True(t, apperrors.IsConstraintViolation(err))
}

func TestDispatch_UnknownTierIsConstraintViolation(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	d := NewDispatcher(s, nil, nil)

	_, err := d.Resolve(ctx, ast.Mutation, withArgs(field("createUser", field("id")), map[string]interface{}{
		"dto": map[string]interface{}{
			"name":    "ada",
			"balance": 1.5,
			"profile": map[string]interface{}{"isMale": false, "yearOfBirth": int64(1990), "memberTypeId": "GOLD"},
		},
	}))
	assert.True(t, apperrors.IsConstraintViolation(err), "got %v", err)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	u := mkUser(t, s, "bea")
	_, err = d.Resolve(ctx, ast.Mutation, withArgs(field("createProfile", field("id")), map[string]interface{}{
		"dto": map[string]interface{}{"isMale": true, "yearOfBirth": int64(1985), "userId": u.ID, "memberTypeId": "GOLD"},
	}))
	assert.True(t, apperrors.IsConstraintViolation(err), "got %v", err)

	p, err := s.CreateProfile(ctx, store.ProfileInput{YearOfBirth: 1985, UserID: u.ID, MemberTypeID: store.MemberTypeBasic})
	require.NoError(t, err)
	_, err = d.Resolve(ctx, ast.Mutation, withArgs(field("changeProfile", field("id")), map[string]interface{}{
		"id": p.ID, "dto": map[string]interface{}{"memberTypeId": "GOLD"},
	}))
	assert.True(t, apperrors.IsConstraintViolation(err), "got %v", err)

	got, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, store.MemberTypeBasic, got.MemberTypeID)
}

func TestDispatch_ProfileTierIsRequired(t *testing.T) {
	s := memory.New()
	u := mkUser(t, s, "ada")
	_, err := NewDispatcher(s, nil, nil).Resolve(context.Background(), ast.Mutation, withArgs(field("createProfile", field("id")), map[string]interface{}{
		"dto": map[string]interface{}{"isMale": true, "yearOfBirth": int64(1985), "userId": u.ID, "memberTypeId": ""},
	}))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestDispatch_CreateUserRollsBackOnProfileFailure(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.DeleteMemberType(ctx, store.MemberTypeBusiness))
	d := NewDispatcher(s, nil, nil)

	_, err := d.Resolve(ctx, ast.Mutation, withArgs(field("createUser", field("id")), map[string]interface{}{
		"dto": map[string]interface{}{
			"name":    "ada",
			"balance": int64(3),
			"profile": map[string]interface{}{"isMale": true, "yearOfBirth": int64(1990), "memberTypeId": "BUSINESS"},
		},
	}))
	assert.True(t, apperrors.IsConstraintViolation(err))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDispatch_CreateUserWithProfile(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	d := NewDispatcher(s, nil, nil)

	v, err := d.Resolve(ctx, ast.Mutation, withArgs(field("createUser",
		field("name"),
		field("balance"),
		field("profile", field("yearOfBirth"), field("memberTypeId")),
	), map[string]interface{}{
		"dto": map[string]interface{}{
			"name":    "ada",
			"balance": int64(3),
			"profile": map[string]interface{}{"isMale": true, "yearOfBirth": int64(1990), "memberTypeId": "BASIC"},
		},
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","balance":3,"profile":{"yearOfBirth":1990,"memberTypeId":"BASIC"}}`, toJSON(t, v))
}

func TestDispatch_PostAndProfileMutations(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	u := mkUser(t, s, "u")
	d := NewDispatcher(s, nil, nil)

	v, err := d.Resolve(ctx, ast.Mutation, withArgs(field("createPost", field("title"), field("authorId")), map[string]interface{}{
		"dto": map[string]interface{}{"title": "t", "content": "c", "authorId": u.ID},
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","authorId":"`+u.ID+`"}`, toJSON(t, v))

	_, err = d.Resolve(ctx, ast.Mutation, withArgs(field("createPost", field("id")), map[string]interface{}{
		"dto": map[string]interface{}{"title": "t", "content": "c", "authorId": "6a0c7c52-5f43-4d3c-9a7b-2c8d4b1e0f11"},
	}))
	assert.True(t, apperrors.IsConstraintViolation(err))

	v, err = d.Resolve(ctx, ast.Mutation, withArgs(field("createProfile", field("id")), map[string]interface{}{
		"dto": map[string]interface{}{"isMale": true, "yearOfBirth": int64(2000), "userId": u.ID, "memberTypeId": "BASIC"},
	}))
	require.NoError(t, err)
	created, ok := v.(selection.Object)
	require.True(t, ok)
	profileID, _ := created.Get("id")

	v, err = d.Resolve(ctx, ast.Mutation, withArgs(field("changeProfile", field("memberType", field("postsLimitPerMonth"))), map[string]interface{}{
		"id": profileID, "dto": map[string]interface{}{"memberTypeId": "BUSINESS"},
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"memberType":{"postsLimitPerMonth":100}}`, toJSON(t, v))

	_, err = d.Resolve(ctx, ast.Mutation, withArgs(field("deleteUser"), map[string]interface{}{"id": u.ID}))
	assert.True(t, apperrors.IsConstraintViolation(err), "user still has a post")
}

func TestDispatch_UnknownField(t *testing.T) {
	_, err := NewDispatcher(memory.New(), nil, nil).Resolve(context.Background(), ast.Query, field("createUser"))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestSelectionInclude(t *testing.T) {
	sel := selection.Set{
		field("id"),
		field(FieldUserSubscribedTo, field(FieldSubscribedToUser, field("id"))),
		field(FieldSubscribedToUser, field("name")),
	}
	inc := SelectionInclude(sel)
	assert.Equal(t, 2, inc.Depth())
	assert.Equal(t, "[subscribedTo subscribedTo.subscribedBy subscribedBy]", inc.String())

	assert.Equal(t, 0, SelectionInclude(selection.Set{field("posts", field("id"))}).Depth())
}

func TestSelectionInclude_MergesAliases(t *testing.T) {
	first := field(FieldUserSubscribedTo, field(FieldUserSubscribedTo, field("id")))
	first.Alias = "following"
	second := field(FieldUserSubscribedTo, field(FieldSubscribedToUser, field("id")))

	inc := SelectionInclude(selection.Set{first, second})
	assert.Equal(t, "[subscribedTo subscribedTo.subscribedTo subscribedTo.subscribedBy]", inc.String())
}

func TestSelectionInclude_StopsAtMaxDepth(t *testing.T) {
	sel := selection.Set{field("id")}
	for i := 0; i < 5; i++ {
		sel = selection.Set{field(FieldUserSubscribedTo, sel...)}
	}
	assert.Equal(t, 3, SelectionInclude(sel).Depth())
}

func TestUserNeeds(t *testing.T) {
	n := UserNeeds(selection.Set{
		field("id"),
		field(FieldSubscribedToUser, field("profile", field("memberType", field("id")))),
	})
	assert.Equal(t, Needs{Profiles: true, MemberTypes: true}, n)
	assert.False(t, UserNeeds(selection.Set{field("name")}).Any())
}
