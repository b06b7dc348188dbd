package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Post Operations
// ============================================================================

// GetPost fetches a post by id
func (r *Repository) GetPost(ctx context.Context, id string) (*store.Post, error) {
	query := `
		MATCH (p:Post {id: $id})
		RETURN p {.id, .title, .content, .author_id} AS post
	`

	records, err := r.read(ctx, "GetPost", query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(store.KindPost, id)
	}
	p := postFromMap(getMapFromRecord(records[0], "post"))
	return &p, nil
}

// ListPosts returns every post in creation order
func (r *Repository) ListPosts(ctx context.Context) ([]store.Post, error) {
	query := `
		MATCH (p:Post)
		RETURN p {.id, .title, .content, .author_id} AS post
		ORDER BY p.created_at, p.id
	`

	records, err := r.read(ctx, "ListPosts", query, nil)
	if err != nil {
		return nil, err
	}
	return postsFromRecords(records), nil
}

// PostsByAuthors groups the posts of the given authors by author id
func (r *Repository) PostsByAuthors(ctx context.Context, authorIDs []string) (map[string][]store.Post, error) {
	query := `
		MATCH (p:Post)
		WHERE p.author_id IN $authorIds
		RETURN p {.id, .title, .content, .author_id} AS post
		ORDER BY p.created_at, p.id
	`

	records, err := r.read(ctx, "PostsByAuthors", query, map[string]interface{}{"authorIds": authorIDs})
	if err != nil {
		return nil, err
	}
	out := make(map[string][]store.Post)
	for _, p := range postsFromRecords(records) {
		out[p.AuthorID] = append(out[p.AuthorID], p)
	}
	return out, nil
}

// CreatePost inserts a post and links it to its author
func (r *Repository) CreatePost(ctx context.Context, in store.PostInput) (*store.Post, error) {
	query := `
		MATCH (u:User {id: $authorId})
		CREATE (p:Post {
			id: $id,
			title: $title,
			content: $content,
			author_id: $authorId,
			created_at: datetime()
		})
		CREATE (u)-[:AUTHORED]->(p)
		RETURN p {.id, .title, .content, .author_id} AS post
	`

	out, err := r.write(ctx, "CreatePost", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{
			"id":       r.newID(),
			"title":    in.Title,
			"content":  in.Content,
			"authorId": in.AuthorID,
		})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewConstraintViolation(store.KindPost, "authorId references a missing user", nil)
		}
		p := postFromMap(getMapFromRecord(record, "post"))
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*store.Post), nil
}

// UpdatePost applies patch to a post
func (r *Repository) UpdatePost(ctx context.Context, id string, patch store.PostPatch) (*store.Post, error) {
	query := `
		MATCH (p:Post {id: $id})
		SET p.title = coalesce($title, p.title),
		    p.content = coalesce($content, p.content)
		RETURN p {.id, .title, .content, .author_id} AS post
	`

	out, err := r.write(ctx, "UpdatePost", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{
			"id":      id,
			"title":   optional(patch.Title),
			"content": optional(patch.Content),
		})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindPost, id)
		}
		p := postFromMap(getMapFromRecord(record, "post"))
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*store.Post), nil
}

// DeletePost removes a post
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	query := `
		MATCH (p:Post {id: $id})
		WITH p, p.id AS id
		DETACH DELETE p
		RETURN id
	`

	_, err := r.write(ctx, "DeletePost", func(tx neo4j.ManagedTransaction) (interface{}, error) {
		record, err := single(ctx, tx, query, map[string]interface{}{"id": id})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound(store.KindPost, id)
		}
		return nil, nil
	})
	return err
}

func postsFromRecords(records []*neo4j.Record) []store.Post {
	posts := make([]store.Post, 0, len(records))
	for _, record := range records {
		posts = append(posts, postFromMap(getMapFromRecord(record, "post")))
	}
	return posts
}
