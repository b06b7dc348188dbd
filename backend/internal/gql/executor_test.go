package gql

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membergraph/backend/internal/resolve"
	"membergraph/backend/internal/store"
	"membergraph/backend/internal/store/memory"
)

func newExecutor(t *testing.T) (*Executor, *memory.Store) {
	t.Helper()
	s := memory.New()
	e, err := NewExecutor(resolve.NewDispatcher(s, nil, nil), nil)
	require.NoError(t, err)
	return e, s
}

func run(t *testing.T, e *Executor, query string, vars map[string]interface{}) string {
	t.Helper()
	resp := e.Execute(context.Background(), Request{Query: query, Variables: vars})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(raw)
}

// decoded is the generic form of a response, for assertions on errors
type decoded struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Path       []interface{}          `json:"path"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func decode(t *testing.T, raw string) decoded {
	t.Helper()
	var d decoded
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d
}

func TestExecute_FieldOrderAndAliases(t *testing.T) {
	e, _ := newExecutor(t)
	got := run(t, e, `{
		memberTypes { postsLimitPerMonth id }
		basic: memberType(id: BASIC) { discount __typename }
		__typename
	}`, nil)
	assert.Equal(t,
		`{"data":{"memberTypes":[{"postsLimitPerMonth":20,"id":"BASIC"},{"postsLimitPerMonth":100,"id":"BUSINESS"}],"basic":{"discount":2.3,"__typename":"MemberType"},"__typename":"Query"}}`,
		got)
}

func TestExecute_FragmentsAndDirectives(t *testing.T) {
	e, s := newExecutor(t)
	ctx := context.Background()
	a, err := s.CreateUser(ctx, store.UserInput{Name: "a", Balance: 1})
	require.NoError(t, err)
	b, err := s.CreateUser(ctx, store.UserInput{Name: "b", Balance: 2})
	require.NoError(t, err)
	require.NoError(t, s.Subscribe(ctx, a.ID, b.ID))

	query := `
		query Q($id: UUID!, $withFollowers: Boolean!) {
			user(id: $id) {
				...Names
				userSubscribedTo { ...Names }
				subscribedToUser @include(if: $withFollowers) { id }
			}
		}
		fragment Names on User { name balance }
	`
	got := run(t, e, query, map[string]interface{}{"id": a.ID, "withFollowers": false})
	assert.Equal(t, `{"data":{"user":{"name":"a","balance":1,"userSubscribedTo":[{"name":"b","balance":2}]}}}`, got)

	got = run(t, e, query, map[string]interface{}{"id": b.ID, "withFollowers": true})
	assert.Equal(t, `{"data":{"user":{"name":"b","balance":2,"userSubscribedTo":[],"subscribedToUser":[{"id":"`+a.ID+`"}]}}}`, got)
}

func TestExecute_NullOnMissingID(t *testing.T) {
	e, _ := newExecutor(t)
	got := run(t, e, `{ user(id: "7d0b3a52-1c4e-4f7a-9b2d-5e6f7a8b9c0d") { id } profile(id: "junk") { id } }`, nil)
	assert.Equal(t, `{"data":{"user":null,"profile":null}}`, got)
}

func TestExecute_ConstraintViolation(t *testing.T) {
	e, s := newExecutor(t)
	u, err := s.CreateUser(context.Background(), store.UserInput{Name: "solo"})
	require.NoError(t, err)

	d := decode(t, run(t, e, `mutation($id: UUID!) { subscribeTo(userId: $id, authorId: $id) }`, map[string]interface{}{"id": u.ID}))
	require.Len(t, d.Errors, 1)
	assert.Equal(t, CodeConstraintViolation, d.Errors[0].Extensions["code"])
	assert.Equal(t, []interface{}{"subscribeTo"}, d.Errors[0].Path)
	assert.Contains(t, d.Data, "subscribeTo")
	assert.Nil(t, d.Data["subscribeTo"])
}

func TestExecute_BadUserInput(t *testing.T) {
	e, _ := newExecutor(t)
	d := decode(t, run(t, e, `mutation { deleteUser(id: "not-a-uuid") }`, nil))
	require.Len(t, d.Errors, 1)
	assert.Equal(t, CodeBadUserInput, d.Errors[0].Extensions["code"])
}

func TestExecute_MutationsWithVariables(t *testing.T) {
	e, s := newExecutor(t)
	got := run(t, e, `mutation($dto: CreateUserInput!) { createUser(dto: $dto) { name profile { memberType { id } } } }`,
		map[string]interface{}{"dto": map[string]interface{}{
			"name":    "ada",
			"balance": 10.5,
			"profile": map[string]interface{}{"isMale": false, "yearOfBirth": 1815.0, "memberTypeId": "BUSINESS"},
		}})
	assert.Equal(t, `{"data":{"createUser":{"name":"ada","profile":{"memberType":{"id":"BUSINESS"}}}}}`, got)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 10.5, users[0].Balance)
}

func TestExecute_MutationsRunInOrder(t *testing.T) {
	e, s := newExecutor(t)
	ctx := context.Background()
	a, err := s.CreateUser(ctx, store.UserInput{Name: "a"})
	require.NoError(t, err)
	b, err := s.CreateUser(ctx, store.UserInput{Name: "b"})
	require.NoError(t, err)

	got := run(t, e, `mutation($a: UUID!, $b: UUID!) {
		first: subscribeTo(userId: $a, authorId: $b)
		second: unsubscribeFrom(userId: $a, authorId: $b)
		third: unsubscribeFrom(userId: $a, authorId: $b)
	}`, map[string]interface{}{"a": a.ID, "b": b.ID})
	assert.Equal(t, `{"data":{"first":true,"second":true,"third":false}}`, got)
}

func TestExecute_RejectedDocuments(t *testing.T) {
	e, _ := newExecutor(t)

	cases := map[string]string{
		"parse error":   `{ users { id `,
		"unknown field": `{ users { nickname } }`,
		"introspection": `{ __schema { queryType { name } } }`,
		"subscription":  `subscription { users { id } }`,
		"bad variable":  `query($id: UUID!) { user(id: $id) { id } }`,
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			raw := run(t, e, query, nil)
			d := decode(t, raw)
			assert.NotEmpty(t, d.Errors)
			assert.NotContains(t, raw, `"data"`)
		})
	}
}

func TestExecute_OperationName(t *testing.T) {
	e, _ := newExecutor(t)
	doc := `query A { memberTypes { id } } query B { posts { id } }`

	resp := e.Execute(context.Background(), Request{Query: doc, OperationName: "B"})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"posts":[]}}`, string(raw))

	resp = e.Execute(context.Background(), Request{Query: doc})
	assert.Len(t, resp.Errors, 1)
}

func TestExecute_CancelledContext(t *testing.T) {
	e, _ := newExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := e.Execute(ctx, Request{Query: `{ memberTypes { id } }`})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeCancelled, resp.Errors[0].Extensions["code"])
	assert.Nil(t, resp.Data, "memberTypes is non-null so data is nulled")
}
