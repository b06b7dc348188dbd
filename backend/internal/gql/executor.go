package gql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"membergraph/backend/internal/constants"
	"membergraph/backend/internal/resolve"
	"membergraph/backend/internal/selection"
)

// Request is a GraphQL request body
type Request struct {
	Query         string                 `json:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Response is a GraphQL result. Data is left out entirely when the
// document never reached execution.
type Response struct {
	Data   interface{}
	Errors gqlerror.List

	executed bool
}

// MarshalJSON encodes the response as {data, errors}
func (r Response) MarshalJSON() ([]byte, error) {
	var out selection.Object
	if r.executed {
		out.Set("data", r.Data)
	}
	if len(r.Errors) > 0 {
		out.Set("errors", r.Errors)
	}
	return json.Marshal(out)
}

// Executor runs documents against a dispatch table
type Executor struct {
	schema     *ast.Schema
	dispatcher *resolve.Dispatcher
	logger     *zap.Logger
}

// NewExecutor loads the embedded schema and binds it to d
func NewExecutor(d *resolve.Dispatcher, log *zap.Logger) (*Executor, error) {
	schema, err := LoadSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{schema: schema, dispatcher: d, logger: log}, nil
}

// Execute parses, validates and runs req. All failures are reported in the
// response; only a panicking resolver escapes.
func (e *Executor) Execute(ctx context.Context, req Request) *Response {
	doc, errs := gqlparser.LoadQuery(e.schema, req.Query)
	if len(errs) > 0 {
		return &Response{Errors: errs}
	}

	op, gerr := selectOperation(doc, req.OperationName)
	if gerr != nil {
		return &Response{Errors: gqlerror.List{gerr}}
	}

	var rootType *ast.Definition
	switch op.Operation {
	case ast.Query:
		rootType = e.schema.Query
	case ast.Mutation:
		rootType = e.schema.Mutation
	default:
		return &Response{Errors: gqlerror.List{gqlerror.ErrorPosf(op.Position, "%s operations are not supported", op.Operation)}}
	}

	vars, err := validator.VariableValues(e.schema, op, req.Variables)
	if err != nil {
		var verr *gqlerror.Error
		if errors.As(err, &verr) {
			return &Response{Errors: gqlerror.List{verr}}
		}
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("%s", err.Error())}}
	}

	fields := selection.Collect(op.SelectionSet, rootType.Name, vars)
	for _, f := range fields {
		if f.Name == "__schema" || f.Name == "__type" {
			return &Response{Errors: gqlerror.List{gqlerror.Errorf("introspection is not supported")}}
		}
	}

	data, errs := e.run(ctx, op.Operation, rootType, fields)
	return &Response{Data: data, Errors: errs, executed: true}
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *gqlerror.Error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, gqlerror.Errorf("operationName is required when the document has %d operations", len(doc.Operations))
		}
		return doc.Operations[0], nil
	}
	op := doc.Operations.ForName(name)
	if op == nil {
		return nil, gqlerror.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// run resolves the root fields: concurrently for queries, in document
// order for mutations
func (e *Executor) run(ctx context.Context, op ast.Operation, rootType *ast.Definition, fields selection.Set) (interface{}, gqlerror.List) {
	values := make([]interface{}, len(fields))
	errs := make([]error, len(fields))

	resolveField := func(i int) {
		f := fields[i]
		if f.Name == "__typename" {
			values[i] = rootType.Name
			return
		}
		values[i], errs[i] = e.dispatcher.Resolve(ctx, op, f)
	}

	if op == ast.Mutation {
		for i := range fields {
			resolveField(i)
		}
	} else {
		panics := make([]interface{}, len(fields))
		var g errgroup.Group
		g.SetLimit(constants.MaxConcurrentRootFields)
		for i := range fields {
			g.Go(func() error {
				defer func() {
					panics[i] = recover()
				}()
				resolveField(i)
				return nil
			})
		}
		_ = g.Wait()
		// surface resolver panics on the calling goroutine
		for _, p := range panics {
			if p != nil {
				panic(p)
			}
		}
	}

	data := make(selection.Object, 0, len(fields))
	var list gqlerror.List
	nullData := false
	for i, f := range fields {
		if errs[i] != nil {
			list = append(list, e.mapError(errs[i], op, f))
			if def := rootType.Fields.ForName(f.Name); def != nil && def.Type.NonNull {
				nullData = true
			}
		}
		data = append(data, selection.Entry{Key: f.Key(), Value: values[i]})
	}
	if nullData {
		return nil, list
	}
	return data, list
}
