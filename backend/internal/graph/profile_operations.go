package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Profile Operations
// ============================================================================

// GetProfile fetches a profile by id
func (r *Repository) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	query := `
		MATCH (p:Profile {id: $id})
		RETURN p {.id, .is_male, .year_of_birth, .user_id, .member_type_id} AS profile
	`

	records, err := r.read(ctx, "GetProfile", query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(store.KindProfile, id)
	}
	p := profileFromMap(getMapFromRecord(records[0], "profile"))
	return &p, nil
}

// ListProfiles returns every profile in creation order
func (r *Repository) ListProfiles(ctx context.Context) ([]store.Profile, error) {
	query := `
		MATCH (p:Profile)
		RETURN p {.id, .is_male, .year_of_birth, .user_id, .member_type_id} AS profile
		ORDER BY p.created_at, p.id
	`

	records, err := r.read(ctx, "ListProfiles", query, nil)
	if err != nil {
		return nil, err
	}
	profiles := make([]store.Profile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, profileFromMap(getMapFromRecord(record, "profile")))
	}
	return profiles, nil
}

// ProfilesByUsers indexes the profiles of the given users by user id
func (r *Repository) ProfilesByUsers(ctx context.Context, userIDs []string) (map[string]store.Profile, error) {
	query := `
		MATCH (p:Profile)
		WHERE p.user_id IN $userIds
		RETURN p {.id, .is_male, .year_of_birth, .user_id, .member_type_id} AS profile
	`

	records, err := r.read(ctx, "ProfilesByUsers", query, map[string]interface{}{"userIds": userIDs})
	if err != nil {
		return nil, err
	}
	out := make(map[string]store.Profile, len(records))
	for _, record := range records {
		p := profileFromMap(getMapFromRecord(record, "profile"))
		out[p.UserID] = p
	}
	return out, nil
}

// CreateProfile inserts a profile for an existing user
func (r *Repository) CreateProfile(ctx context.Context, in store.ProfileInput) (*store.Profile, error) {
	out, err := r.write(ctx, "CreateProfile", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return r.createProfileTx(ctx, tx, in)
	})
	if err != nil {
		return nil, err
	}
	return out.(*store.Profile), nil
}

func (r *Repository) createProfileTx(ctx context.Context, tx neo4j.ManagedTransaction, in store.ProfileInput) (*store.Profile, error) {
	checkQuery := `
		OPTIONAL MATCH (u:User {id: $userId})
		OPTIONAL MATCH (existing:Profile {user_id: $userId})
		OPTIONAL MATCH (m:MemberType {id: $memberTypeId})
		RETURN u IS NOT NULL AS has_user,
		       existing IS NOT NULL AS has_profile,
		       m IS NOT NULL AS has_tier
	`

	createQuery := `
		MATCH (u:User {id: $userId})
		MATCH (m:MemberType {id: $memberTypeId})
		CREATE (p:Profile {
			id: $id,
			is_male: $isMale,
			year_of_birth: $yearOfBirth,
			user_id: $userId,
			member_type_id: $memberTypeId,
			created_at: datetime()
		})
		CREATE (u)-[:HAS_PROFILE]->(p)-[:OF_TYPE]->(m)
		RETURN p {.id, .is_male, .year_of_birth, .user_id, .member_type_id} AS profile
	`

	params := map[string]interface{}{
		"id":           r.newID(),
		"isMale":       in.IsMale,
		"yearOfBirth":  int64(in.YearOfBirth),
		"userId":       in.UserID,
		"memberTypeId": string(in.MemberTypeID),
	}

	record, err := single(ctx, tx, checkQuery, params)
	if err != nil {
		return nil, err
	}
	switch {
	case !getBoolFromRecord(record, "has_user"):
		return nil, apperrors.NewConstraintViolation(store.KindProfile, "userId references a missing user", nil)
	case getBoolFromRecord(record, "has_profile"):
		return nil, apperrors.NewConstraintViolation(store.KindProfile, "one profile per user", nil)
	case !getBoolFromRecord(record, "has_tier"):
		return nil, apperrors.NewConstraintViolation(store.KindProfile, "memberTypeId references a missing member type", nil)
	}

	record, err = single(ctx, tx, createQuery, params)
	if err != nil {
		return nil, err
	}
	p := profileFromMap(getMapFromRecord(record, "profile"))
	return &p, nil
}

// UpdateProfile applies patch to a profile, moving its OF_TYPE link when
// the tier changes
func (r *Repository) UpdateProfile(ctx context.Context, id string, patch store.ProfilePatch) (*store.Profile, error) {
	checkQuery := `
		MATCH (p:Profile {id: $id})
		OPTIONAL MATCH (m:MemberType {id: coalesce($memberTypeId, p.member_type_id)})
		RETURN m IS NOT NULL AS has_tier
	`

	updateQuery := `
		MATCH (p:Profile {id: $id})
		SET p.is_male = coalesce($isMale, p.is_male),
		    p.year_of_birth = coalesce($yearOfBirth, p.year_of_birth),
		    p.member_type_id = coalesce($memberTypeId, p.member_type_id)
		WITH p
		OPTIONAL MATCH (p)-[old:OF_TYPE]->(:MemberType)
		DELETE old
		WITH DISTINCT p
		MATCH (m:MemberType {id: p.member_type_id})
		MERGE (p)-[:OF_TYPE]->(m)
		RETURN p {.id, .is_male, .year_of_birth, .user_id, .member_type_id} AS profile
	`

	var yearOfBirth, memberTypeID interface{}
	if patch.YearOfBirth != nil {
		yearOfBirth = int64(*patch.YearOfBirth)
	}
	if patch.MemberTypeID != nil {
		memberTypeID = string(*patch.MemberTypeID)
	}
	params := map[string]interface{}{
		"id":           id,
		"isMale":       optional(patch.IsMale),
		"yearOfBirth":  yearOfBirth,
		"memberTypeId": memberTypeID,
	}

	out, err := r.write(ctx, "UpdateProfile", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, checkQuery, params)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindProfile, id)
		}
		if !getBoolFromRecord(record, "has_tier") {
			return nil, apperrors.NewConstraintViolation(store.KindProfile, "memberTypeId references a missing member type", nil)
		}

		record, err = single(ctx, tx, updateQuery, params)
		if err != nil {
			return nil, err
		}
		p := profileFromMap(getMapFromRecord(record, "profile"))
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*store.Profile), nil
}

// DeleteProfile removes a profile
func (r *Repository) DeleteProfile(ctx context.Context, id string) error {
	query := `
		MATCH (p:Profile {id: $id})
		WITH p, p.id AS id
		DETACH DELETE p
		RETURN id
	`

	_, err := r.write(ctx, "DeleteProfile", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{"id": id})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindProfile, id)
		}
		return nil, nil
	})
	return err
}

// ============================================================================
// Member Type Operations
// ============================================================================

// GetMemberType fetches a tier by id
func (r *Repository) GetMemberType(ctx context.Context, id store.MemberTypeID) (*store.MemberType, error) {
	query := `
		MATCH (m:MemberType {id: $id})
		RETURN m {.id, .discount, .posts_limit_per_month} AS member_type
	`

	records, err := r.read(ctx, "GetMemberType", query, map[string]interface{}{"id": string(id)})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(store.KindMemberType, string(id))
	}
	m := memberTypeFromMap(getMapFromRecord(records[0], "member_type"))
	return &m, nil
}

// ListMemberTypes returns the tiers ordered by id
func (r *Repository) ListMemberTypes(ctx context.Context) ([]store.MemberType, error) {
	query := `
		MATCH (m:MemberType)
		RETURN m {.id, .discount, .posts_limit_per_month} AS member_type
		ORDER BY m.id
	`

	records, err := r.read(ctx, "ListMemberTypes", query, nil)
	if err != nil {
		return nil, err
	}
	tiers := make([]store.MemberType, 0, len(records))
	for _, record := range records {
		tiers = append(tiers, memberTypeFromMap(getMapFromRecord(record, "member_type")))
	}
	return tiers, nil
}

// DeleteMemberType removes a tier no profile references
func (r *Repository) DeleteMemberType(ctx context.Context, id store.MemberTypeID) error {
	checkQuery := `
		MATCH (m:MemberType {id: $id})
		OPTIONAL MATCH (p:Profile {member_type_id: $id})
		RETURN m.id AS id, count(p) AS refs
	`

	_, err := r.write(ctx, "DeleteMemberType", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		params := map[string]interface{}{"id": string(id)}
		record, err := single(ctx, tx, checkQuery, params)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindMemberType, string(id))
		}
		if getInt64FromRecord(record, "refs") > 0 {
			return nil, apperrors.NewConstraintViolation(store.KindMemberType, "profile.memberTypeId references member type", nil)
		}
		_, err = tx.Run(ctx, `MATCH (m:MemberType {id: $id}) DETACH DELETE m`, params)
		return nil, err
	})
	return err
}

// SeedMemberTypes upserts the reference tiers
func (r *Repository) SeedMemberTypes(ctx context.Context, tiers []store.MemberType) error {
	query := `
		UNWIND $tiers AS tier
		MERGE (m:MemberType {id: tier.id})
		SET m.discount = tier.discount,
		    m.posts_limit_per_month = tier.posts_limit_per_month
	`

	rows := make([]interface{}, 0, len(tiers))
	for _, m := range tiers {
		rows = append(rows, map[string]interface{}{
			"id":                    string(m.ID),
			"discount":              m.Discount,
			"posts_limit_per_month": int64(m.PostsLimitPerMonth),
		})
	}

	_, err := r.write(ctx, "SeedMemberTypes", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, query, map[string]interface{}{"tiers": rows})
		return nil, err
	})
	return err
}
