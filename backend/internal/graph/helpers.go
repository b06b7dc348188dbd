package graph

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Helper Functions
// ============================================================================

const constraintValidationFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

// storeError maps driver errors onto the error taxonomy. Errors already in
// the taxonomy pass through.
func (r *Repository) storeError(op string, err error) error {
	switch {
	case apperrors.IsConstraintViolation(err), apperrors.IsNotFound(err), apperrors.IsInvalidInput(err):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewContextCancelled(op, err)
	}

	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) && nerr.Code == constraintValidationFailed {
		return apperrors.NewConstraintViolation(op, "schema constraint", err)
	}
	return apperrors.NewStoreUnavailable(BackendName, op, err)
}

// single runs query in tx and returns its only record, or nil when the
// query matched nothing
func single(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) (*neo4j.Record, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getMapFromRecord(record *neo4j.Record, key string) map[string]interface{} {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	m, _ := val.(map[string]interface{})
	return m
}

func getStringFromMap(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func getIntFromMap(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func getFloat64FromMap(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0.0
}

func getTimeFromMap(m map[string]interface{}, key string) time.Time {
	// Neo4j datetime values come as time.Time
	if t, ok := m[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// ============================================================================
// Row mapping
// ============================================================================

// Queries return nodes as map projections, e.g. u {.id, .name, .balance}

func userFromMap(m map[string]interface{}) store.User {
	return store.User{
		ID:      getStringFromMap(m, "id"),
		Name:    getStringFromMap(m, "name"),
		Balance: getFloat64FromMap(m, "balance"),
	}
}

func postFromMap(m map[string]interface{}) store.Post {
	return store.Post{
		ID:       getStringFromMap(m, "id"),
		Title:    getStringFromMap(m, "title"),
		Content:  getStringFromMap(m, "content"),
		AuthorID: getStringFromMap(m, "author_id"),
	}
}

func profileFromMap(m map[string]interface{}) store.Profile {
	return store.Profile{
		ID:           getStringFromMap(m, "id"),
		IsMale:       getBoolFromMap(m, "is_male"),
		YearOfBirth:  getIntFromMap(m, "year_of_birth"),
		UserID:       getStringFromMap(m, "user_id"),
		MemberTypeID: store.MemberTypeID(getStringFromMap(m, "member_type_id")),
	}
}

func memberTypeFromMap(m map[string]interface{}) store.MemberType {
	return store.MemberType{
		ID:                 store.MemberTypeID(getStringFromMap(m, "id")),
		Discount:           getFloat64FromMap(m, "discount"),
		PostsLimitPerMonth: getIntFromMap(m, "posts_limit_per_month"),
	}
}
