package resolve

import (
	"context"

	"go.uber.org/zap"

	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Users
// ============================================================================

func (d *Dispatcher) createUser(ctx context.Context, f selection.Field) (interface{}, error) {
	var in createUserDTO
	if err := decodeArg(f, "dto", &in); err != nil {
		return nil, err
	}

	u, err := d.insertUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return d.shapeOne(ctx, u.ID, u, f.Children)
}

// insertUser creates the user and its optional profile so that a failed
// profile never leaves the user behind
func (d *Dispatcher) insertUser(ctx context.Context, in createUserDTO) (*store.User, error) {
	if in.Profile == nil {
		d.fetch("CreateUser")
		return d.store.CreateUser(ctx, in.user())
	}

	if creator, ok := d.store.(store.UserProfileCreator); ok {
		d.fetch("CreateUserWithProfile")
		u, _, err := creator.CreateUserWithProfile(ctx, in.user(), in.Profile.profile(""))
		return u, err
	}

	d.fetch("CreateUser")
	u, err := d.store.CreateUser(ctx, in.user())
	if err != nil {
		return nil, err
	}

	d.fetch("CreateProfile")
	if _, err := d.store.CreateProfile(ctx, in.Profile.profile(u.ID)); err != nil {
		d.fetch("DeleteUser")
		if rbErr := d.store.DeleteUser(context.WithoutCancel(ctx), u.ID); rbErr != nil {
			d.logger.Error("Failed to roll back user after profile insert failed",
				zap.String("user_id", u.ID),
				zap.Error(rbErr))
		}
		return nil, err
	}
	return u, nil
}

func (d *Dispatcher) changeUser(ctx context.Context, f selection.Field) (interface{}, error) {
	id, err := mutationID(f, "id")
	if err != nil {
		return nil, err
	}
	var in changeUserDTO
	if err := decodeArg(f, "dto", &in); err != nil {
		return nil, err
	}

	d.fetch("UpdateUser")
	u, err := d.store.UpdateUser(ctx, id, in.patch())
	if err != nil {
		return nullOnMiss(err)
	}
	return d.shapeOne(ctx, u.ID, u, f.Children)
}

func (d *Dispatcher) deleteUser(ctx context.Context, f selection.Field) (interface{}, error) {
	id, err := mutationID(f, "id")
	if err != nil {
		return nil, err
	}
	d.fetch("DeleteUser")
	return deleted(d.store.DeleteUser(ctx, id))
}

// ============================================================================
// Posts
// ============================================================================

func (d *Dispatcher) createPost(ctx context.Context, f selection.Field) (interface{}, error) {
	var in createPostDTO
	if err := decodeArg(f, "dto", &in); err != nil {
		return nil, err
	}
	d.fetch("CreatePost")
	p, err := d.store.CreatePost(ctx, in.post())
	if err != nil {
		return nil, err
	}
	return ShapePost(*p, f.Children), nil
}

func (d *Dispatcher) changePost(ctx context.Context, f selection.Field) (interface{}, error) {
	id, err := mutationID(f, "id")
	if err != nil {
		return nil, err
	}
	var in changePostDTO
	if err := decodeArg(f, "dto", &in); err != nil {
		return nil, err
	}
	d.fetch("UpdatePost")
	p, err := d.store.UpdatePost(ctx, id, in.patch())
	if err != nil {
		return nullOnMiss(err)
	}
	return ShapePost(*p, f.Children), nil
}

func (d *Dispatcher) deletePost(ctx context.Context, f selection.Field) (interface{}, error) {
	id, err := mutationID(f, "id")
	if err != nil {
		return nil, err
	}
	d.fetch("DeletePost")
	return deleted(d.store.DeletePost(ctx, id))
}

// ============================================================================
// Profiles
// ============================================================================

func (d *Dispatcher) createProfile(ctx context.Context, f selection.Field) (interface{}, error) {
	var in createProfileDTO
	if err := decodeArg(f, "dto", &in); err != nil {
		return nil, err
	}
	d.fetch("CreateProfile")
	p, err := d.store.CreateProfile(ctx, in.profile())
	if err != nil {
		return nil, err
	}
	att, err := d.tiers(ctx, f.Children)
	if err != nil {
		return nil, err
	}
	return ShapeProfile(*p, f.Children, att), nil
}

func (d *Dispatcher) changeProfile(ctx context.Context, f selection.Field) (interface{}, error) {
	id, err := mutationID(f, "id")
	if err != nil {
		return nil, err
	}
	var in changeProfileDTO
	if err := decodeArg(f, "dto", &in); err != nil {
		return nil, err
	}
	d.fetch("UpdateProfile")
	p, err := d.store.UpdateProfile(ctx, id, in.patch())
	if err != nil {
		return nullOnMiss(err)
	}
	att, err := d.tiers(ctx, f.Children)
	if err != nil {
		return nil, err
	}
	return ShapeProfile(*p, f.Children, att), nil
}

func (d *Dispatcher) deleteProfile(ctx context.Context, f selection.Field) (interface{}, error) {
	id, err := mutationID(f, "id")
	if err != nil {
		return nil, err
	}
	d.fetch("DeleteProfile")
	return deleted(d.store.DeleteProfile(ctx, id))
}

// ============================================================================
// Subscriptions
// ============================================================================

func (d *Dispatcher) subscribeTo(ctx context.Context, f selection.Field) (interface{}, error) {
	subscriberID, authorID, err := subscriptionArgs(f)
	if err != nil {
		return nil, err
	}
	d.fetch("Subscribe")
	if err := d.store.Subscribe(ctx, subscriberID, authorID); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) unsubscribeFrom(ctx context.Context, f selection.Field) (interface{}, error) {
	subscriberID, authorID, err := subscriptionArgs(f)
	if err != nil {
		return nil, err
	}
	d.fetch("Unsubscribe")
	removed, err := d.store.Unsubscribe(ctx, subscriberID, authorID)
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func subscriptionArgs(f selection.Field) (string, string, error) {
	subscriberID, err := mutationID(f, "userId")
	if err != nil {
		return "", "", err
	}
	authorID, err := mutationID(f, "authorId")
	if err != nil {
		return "", "", err
	}
	return subscriberID, authorID, nil
}

// deleted maps a delete call's error to the Boolean result: false for a
// missing row
func deleted(err error) (interface{}, error) {
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return nil, err
	}
	return true, nil
}
