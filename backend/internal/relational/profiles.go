package relational

import (
	"context"

	"gorm.io/gorm"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Profiles
// ============================================================================

func (s *Store) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	var m profileModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, s.notFound("GetProfile", store.KindProfile, id, err)
	}
	p := m.toProfile()
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]store.Profile, error) {
	var rows []profileModel
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, s.storeError("ListProfiles", err)
	}
	profiles := make([]store.Profile, 0, len(rows))
	for _, m := range rows {
		profiles = append(profiles, m.toProfile())
	}
	return profiles, nil
}

func (s *Store) ProfilesByUsers(ctx context.Context, userIDs []string) (map[string]store.Profile, error) {
	out := make(map[string]store.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []profileModel
	if err := s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, s.storeError("ProfilesByUsers", err)
	}
	for _, m := range rows {
		out[m.UserID] = m.toProfile()
	}
	return out, nil
}

// CreateProfile relies on the user and tier foreign keys and the unique
// user_id index
func (s *Store) CreateProfile(ctx context.Context, in store.ProfileInput) (*store.Profile, error) {
	m := profileModel{
		ID:           s.newID(),
		IsMale:       in.IsMale,
		YearOfBirth:  in.YearOfBirth,
		UserID:       in.UserID,
		MemberTypeID: string(in.MemberTypeID),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, s.storeError("CreateProfile", err)
	}
	p := m.toProfile()
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, patch store.ProfilePatch) (*store.Profile, error) {
	var m profileModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return s.notFound("UpdateProfile", store.KindProfile, id, err)
		}
		p := patch.Apply(m.toProfile())
		m.IsMale, m.YearOfBirth, m.MemberTypeID = p.IsMale, p.YearOfBirth, string(p.MemberTypeID)
		return tx.Model(&m).Updates(map[string]interface{}{
			"is_male":        m.IsMale,
			"year_of_birth":  m.YearOfBirth,
			"member_type_id": m.MemberTypeID,
		}).Error
	})
	if err != nil {
		return nil, s.storeError("UpdateProfile", err)
	}
	p := m.toProfile()
	return &p, nil
}

func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&profileModel{})
	if res.Error != nil {
		return s.storeError("DeleteProfile", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound(store.KindProfile, id)
	}
	return nil
}

// ============================================================================
// Member types
// ============================================================================

func (s *Store) GetMemberType(ctx context.Context, id store.MemberTypeID) (*store.MemberType, error) {
	var m memberTypeModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error; err != nil {
		return nil, s.notFound("GetMemberType", store.KindMemberType, string(id), err)
	}
	mt := m.toMemberType()
	return &mt, nil
}

func (s *Store) ListMemberTypes(ctx context.Context) ([]store.MemberType, error) {
	var rows []memberTypeModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, s.storeError("ListMemberTypes", err)
	}
	tiers := make([]store.MemberType, 0, len(rows))
	for _, m := range rows {
		tiers = append(tiers, m.toMemberType())
	}
	return tiers, nil
}

// DeleteMemberType fails on the profile foreign key while the tier is in use
func (s *Store) DeleteMemberType(ctx context.Context, id store.MemberTypeID) error {
	res := s.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&memberTypeModel{})
	if res.Error != nil {
		return s.storeError("DeleteMemberType", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound(store.KindMemberType, string(id))
	}
	return nil
}
