package relational

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, s.notFound("GetUser", store.KindUser, id, err)
	}
	u := m.toUser()
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	var rows []userModel
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, s.storeError("ListUsers", err)
	}
	users := make([]store.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, m.toUser())
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, in store.UserInput) (*store.User, error) {
	m := userModel{ID: s.newID(), Name: in.Name, Balance: in.Balance}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, s.storeError("CreateUser", err)
	}
	s.logger.Debug("User created", zap.String("user_id", m.ID))
	u := m.toUser()
	return &u, nil
}

// CreateUserWithProfile inserts a user and its profile in one transaction
func (s *Store) CreateUserWithProfile(ctx context.Context, in store.UserInput, profile store.ProfileInput) (*store.User, *store.Profile, error) {
	u := userModel{ID: s.newID(), Name: in.Name, Balance: in.Balance}
	p := profileModel{
		ID:           s.newID(),
		IsMale:       profile.IsMale,
		YearOfBirth:  profile.YearOfBirth,
		UserID:       u.ID,
		MemberTypeID: string(profile.MemberTypeID),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, nil, s.storeError("CreateUserWithProfile", err)
	}

	user, prof := u.toUser(), p.toProfile()
	return &user, &prof, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch store.UserPatch) (*store.User, error) {
	var m userModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return s.notFound("UpdateUser", store.KindUser, id, err)
		}
		u := patch.Apply(m.toUser())
		m.Name, m.Balance = u.Name, u.Balance
		return tx.Model(&m).Updates(map[string]interface{}{"name": m.Name, "balance": m.Balance}).Error
	})
	if err != nil {
		return nil, s.storeError("UpdateUser", err)
	}
	u := m.toUser()
	return &u, nil
}

// DeleteUser removes the user with its profile and subscription rows.
// Users that still author posts are kept.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m userModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return s.notFound("DeleteUser", store.KindUser, id, err)
		}

		var posts int64
		if err := tx.Model(&postModel{}).Where("author_id = ?", id).Count(&posts).Error; err != nil {
			return err
		}
		if posts > 0 {
			return apperrors.NewConstraintViolation(store.KindUser, "post.authorId references user", nil)
		}

		if err := tx.Where("user_id = ?", id).Delete(&profileModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subscriber_id = ? OR author_id = ?", id, id).Delete(&subscriptionModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
	if err != nil {
		return s.storeError("DeleteUser", err)
	}

	s.logger.Debug("User deleted", zap.String("user_id", id))
	return nil
}
