package selection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const testSchema = `
type Query {
	user(id: ID!): User
}

type User {
	id: ID!
	name: String!
	friends: [User!]!
}
`

const testQuery = `
query Q($skip: Boolean!) {
	user(id: "u1") {
		id
		... on User { name }
		...Friends
		nick: name
		name
		friends @skip(if: $skip) { id }
	}
}

fragment Friends on User {
	friends { name }
}
`

func collect(t *testing.T, vars map[string]interface{}) Set {
	t.Helper()
	schema := gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: testSchema})
	doc, errs := gqlparser.LoadQuery(schema, testQuery)
	require.Empty(t, errs)
	op := doc.Operations.ForName("Q")
	require.NotNil(t, op)
	return Collect(op.SelectionSet, "Query", vars)
}

func keysOf(s Set) []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Key()
	}
	return out
}

func TestCollect_MergesFragmentsInOrder(t *testing.T) {
	root := collect(t, map[string]interface{}{"skip": false})
	require.Len(t, root, 1)

	user := root[0]
	assert.Equal(t, "user", user.Name)
	id, ok := user.Arg("id")
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	assert.Equal(t, []string{"id", "name", "friends", "nick"}, keysOf(user.Children))
	assert.Equal(t, "name", user.Children[3].Name)

	friends := user.Children[2]
	assert.Equal(t, []string{"name", "id"}, keysOf(friends.Children))
}

func TestCollect_SkipDirective(t *testing.T) {
	root := collect(t, map[string]interface{}{"skip": true})
	friends := root[0].Children[2]
	assert.Equal(t, "friends", friends.Name)
	assert.Equal(t, []string{"name"}, keysOf(friends.Children))
}

func TestSet_Has(t *testing.T) {
	s := Set{{Name: "id"}, {Name: "friends", Alias: "pals"}}
	assert.True(t, s.Has("friends"))
	assert.False(t, s.Has("pals"))
}

func TestObject_MarshalKeepsOrder(t *testing.T) {
	var inner Object
	inner.Set("b", 1)
	inner.Set("a", 2)

	var o Object
	o.Set("z", "last-first")
	o.Set("nested", inner)
	o.Set("list", []interface{}{inner})
	o.Set("z", "replaced")

	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"replaced","nested":{"b":1,"a":2},"list":[{"b":1,"a":2}]}`, string(raw))
	assert.Equal(t, []string{"z", "nested", "list"}, o.Keys())

	v, ok := o.Get("nested")
	require.True(t, ok)
	assert.Equal(t, inner, v)
}

func TestObject_NilMarshalsEmpty(t *testing.T) {
	var o Object
	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))
}
