package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// GetUser fetches a user by id
func (r *Repository) GetUser(ctx context.Context, id string) (*store.User, error) {
	query := `
		MATCH (u:User {id: $id})
		RETURN u {.id, .name, .balance} AS user
	`

	records, err := r.read(ctx, "GetUser", query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(store.KindUser, id)
	}
	u := userFromMap(getMapFromRecord(records[0], "user"))
	return &u, nil
}

// ListUsers returns every user in creation order
func (r *Repository) ListUsers(ctx context.Context) ([]store.User, error) {
	query := `
		MATCH (u:User)
		RETURN u {.id, .name, .balance} AS user
		ORDER BY u.created_at, u.id
	`

	records, err := r.read(ctx, "ListUsers", query, nil)
	if err != nil {
		return nil, err
	}
	users := make([]store.User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromMap(getMapFromRecord(record, "user")))
	}
	return users, nil
}

// CreateUser inserts a user node
func (r *Repository) CreateUser(ctx context.Context, in store.UserInput) (*store.User, error) {
	out, err := r.write(ctx, "CreateUser", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return r.createUserTx(ctx, tx, in)
	})
	if err != nil {
		return nil, err
	}
	u := out.(*store.User)
	r.logger.Debug("User created", zap.String("user_id", u.ID))
	return u, nil
}

func (r *Repository) createUserTx(ctx context.Context, tx neo4j.ManagedTransaction, in store.UserInput) (*store.User, error) {
	query := `
		CREATE (u:User {
			id: $id,
			name: $name,
			balance: $balance,
			created_at: datetime()
		})
		RETURN u {.id, .name, .balance} AS user
	`

	record, err := single(ctx, tx, query, map[string]interface{}{
		"id":      r.newID(),
		"name":    in.Name,
		"balance": in.Balance,
	})
	if err != nil {
		return nil, err
	}
	u := userFromMap(getMapFromRecord(record, "user"))
	return &u, nil
}

// CreateUserWithProfile inserts a user and its profile in one transaction
func (r *Repository) CreateUserWithProfile(ctx context.Context, user store.UserInput, profile store.ProfileInput) (*store.User, *store.Profile, error) {
	type created struct {
		user    *store.User
		profile *store.Profile
	}

	out, err := r.write(ctx, "CreateUserWithProfile", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		u, err := r.createUserTx(ctx, tx, user)
		if err != nil {
			return nil, err
		}
		profile.UserID = u.ID
		p, err := r.createProfileTx(ctx, tx, profile)
		if err != nil {
			return nil, err
		}
		return created{user: u, profile: p}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	c := out.(created)
	return c.user, c.profile, nil
}

// UpdateUser applies patch to a user
func (r *Repository) UpdateUser(ctx context.Context, id string, patch store.UserPatch) (*store.User, error) {
	query := `
		MATCH (u:User {id: $id})
		SET u.name = coalesce($name, u.name),
		    u.balance = coalesce($balance, u.balance)
		RETURN u {.id, .name, .balance} AS user
	`

	out, err := r.write(ctx, "UpdateUser", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{
			"id":      id,
			"name":    optional(patch.Name),
			"balance": optional(patch.Balance),
		})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindUser, id)
		}
		u := userFromMap(getMapFromRecord(record, "user"))
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*store.User), nil
}

// DeleteUser removes a user with its profile and subscriptions. Users that
// still author posts are kept.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	checkQuery := `
		MATCH (u:User {id: $id})
		OPTIONAL MATCH (p:Post {author_id: $id})
		RETURN u.id AS id, count(p) AS posts
	`

	deleteQuery := `
		MATCH (u:User {id: $id})
		OPTIONAL MATCH (u)-[:HAS_PROFILE]->(pr:Profile)
		DETACH DELETE pr, u
	`

	_, err := r.write(ctx, "DeleteUser", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		params := map[string]interface{}{"id": id}
		record, err := single(ctx, tx, checkQuery, params)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindUser, id)
		}
		if getInt64FromRecord(record, "posts") > 0 {
			return nil, apperrors.NewConstraintViolation(store.KindUser, "post.authorId references user", nil)
		}
		if _, err := tx.Run(ctx, deleteQuery, params); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("User deleted", zap.String("user_id", id))
	return nil
}

// optional turns a patch pointer into a query parameter; nil leaves the
// property unchanged through coalesce
func optional[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
