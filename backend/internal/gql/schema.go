// Package gql executes GraphQL documents against the resolver dispatch
// table. Parsing and validation are gqlparser's; execution of root fields,
// error mapping and response encoding live here.
package gql

import (
	_ "embed"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSDL string

// LoadSchema parses the embedded schema
func LoadSchema() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})
	if err != nil {
		return nil, err
	}
	return schema, nil
}
