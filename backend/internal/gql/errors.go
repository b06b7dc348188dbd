package gql

import (
	"context"
	"errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"membergraph/backend/internal/selection"
	apperrors "membergraph/backend/pkg/errors"
)

// Error codes carried in extensions.code
const (
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeBadUserInput        = "BAD_USER_INPUT"
	CodeNotFound            = "NOT_FOUND"
	CodeCancelled           = "CANCELLED"
	CodeDeadlineExceeded    = "DEADLINE_EXCEEDED"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// mapError converts a resolver error into a GraphQL error at the field's path
func (e *Executor) mapError(err error, op ast.Operation, f selection.Field) *gqlerror.Error {
	path := ast.Path{ast.PathName(f.Key())}

	var gerr *gqlerror.Error
	if errors.As(err, &gerr) {
		gerr.Path = path
		return gerr
	}

	code, message := CodeInternal, "internal error"

	var (
		constraint *apperrors.ErrConstraintViolation
		input      *apperrors.ErrInvalidInput
		notFound   *apperrors.ErrNotFound
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code, message = CodeDeadlineExceeded, "query timeout exceeded"
	case errors.Is(err, context.Canceled):
		code, message = CodeCancelled, "query cancelled"
	case errors.As(err, &constraint):
		code, message = CodeConstraintViolation, constraint.Message
	case errors.As(err, &input):
		code, message = CodeBadUserInput, input.Message
	case errors.As(err, &notFound):
		code, message = CodeNotFound, notFound.Message
	default:
		e.logger.Error("Resolver failed",
			zap.String("operation", string(op)),
			zap.String("field", f.Name),
			zap.Error(err))
	}

	return &gqlerror.Error{
		Message: message,
		Path:    path,
		Extensions: map[string]interface{}{
			"code": code,
		},
	}
}
