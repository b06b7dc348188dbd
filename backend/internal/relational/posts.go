package relational

import (
	"context"

	"gorm.io/gorm"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

func (s *Store) GetPost(ctx context.Context, id string) (*store.Post, error) {
	var m postModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, s.notFound("GetPost", store.KindPost, id, err)
	}
	p := m.toPost()
	return &p, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]store.Post, error) {
	var rows []postModel
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, s.storeError("ListPosts", err)
	}
	posts := make([]store.Post, 0, len(rows))
	for _, m := range rows {
		posts = append(posts, m.toPost())
	}
	return posts, nil
}

func (s *Store) PostsByAuthors(ctx context.Context, authorIDs []string) (map[string][]store.Post, error) {
	out := make(map[string][]store.Post)
	if len(authorIDs) == 0 {
		return out, nil
	}

	var rows []postModel
	err := s.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, s.storeError("PostsByAuthors", err)
	}
	for _, m := range rows {
		out[m.AuthorID] = append(out[m.AuthorID], m.toPost())
	}
	return out, nil
}

// CreatePost relies on the author foreign key to reject unknown authors
func (s *Store) CreatePost(ctx context.Context, in store.PostInput) (*store.Post, error) {
	m := postModel{ID: s.newID(), Title: in.Title, Content: in.Content, AuthorID: in.AuthorID}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, s.storeError("CreatePost", err)
	}
	p := m.toPost()
	return &p, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch store.PostPatch) (*store.Post, error) {
	var m postModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return s.notFound("UpdatePost", store.KindPost, id, err)
		}
		p := patch.Apply(m.toPost())
		m.Title, m.Content = p.Title, p.Content
		return tx.Model(&m).Updates(map[string]interface{}{"title": m.Title, "content": m.Content}).Error
	})
	if err != nil {
		return nil, s.storeError("UpdatePost", err)
	}
	p := m.toPost()
	return &p, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&postModel{})
	if res.Error != nil {
		return s.storeError("DeletePost", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound(store.KindPost, id)
	}
	return nil
}
