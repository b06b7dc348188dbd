package resolve

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// ============================================================================
// Mutation payloads
// ============================================================================

type createUserDTO struct {
	Name    string                `mapstructure:"name"`
	Balance float64               `mapstructure:"balance"`
	Profile *createUserProfileDTO `mapstructure:"profile"`
}

type createUserProfileDTO struct {
	IsMale       bool   `mapstructure:"isMale"`
	YearOfBirth  int    `mapstructure:"yearOfBirth"`
	MemberTypeID string `mapstructure:"memberTypeId" validate:"required"`
}

type changeUserDTO struct {
	Name    *string  `mapstructure:"name"`
	Balance *float64 `mapstructure:"balance"`
}

type createPostDTO struct {
	Title    string `mapstructure:"title"`
	Content  string `mapstructure:"content"`
	AuthorID string `mapstructure:"authorId" validate:"required,uuid"`
}

type changePostDTO struct {
	Title   *string `mapstructure:"title"`
	Content *string `mapstructure:"content"`
}

type createProfileDTO struct {
	IsMale       bool   `mapstructure:"isMale"`
	YearOfBirth  int    `mapstructure:"yearOfBirth"`
	UserID       string `mapstructure:"userId" validate:"required,uuid"`
	MemberTypeID string `mapstructure:"memberTypeId" validate:"required"`
}

type changeProfileDTO struct {
	IsMale       *bool   `mapstructure:"isMale"`
	YearOfBirth  *int    `mapstructure:"yearOfBirth"`
	MemberTypeID *string `mapstructure:"memberTypeId"`
}

func (d createUserDTO) user() store.UserInput {
	return store.UserInput{Name: d.Name, Balance: d.Balance}
}

func (d createUserProfileDTO) profile(userID string) store.ProfileInput {
	return store.ProfileInput{
		IsMale:       d.IsMale,
		YearOfBirth:  d.YearOfBirth,
		UserID:       userID,
		MemberTypeID: store.MemberTypeID(d.MemberTypeID),
	}
}

func (d changeUserDTO) patch() store.UserPatch {
	return store.UserPatch{Name: d.Name, Balance: d.Balance}
}

func (d createPostDTO) post() store.PostInput {
	return store.PostInput{Title: d.Title, Content: d.Content, AuthorID: d.AuthorID}
}

func (d changePostDTO) patch() store.PostPatch {
	return store.PostPatch{Title: d.Title, Content: d.Content}
}

func (d createProfileDTO) profile() store.ProfileInput {
	return store.ProfileInput{
		IsMale:       d.IsMale,
		YearOfBirth:  d.YearOfBirth,
		UserID:       d.UserID,
		MemberTypeID: store.MemberTypeID(d.MemberTypeID),
	}
}

func (d changeProfileDTO) patch() store.ProfilePatch {
	p := store.ProfilePatch{IsMale: d.IsMale, YearOfBirth: d.YearOfBirth}
	if d.MemberTypeID != nil {
		id := store.MemberTypeID(*d.MemberTypeID)
		p.MemberTypeID = &id
	}
	return p
}

// ============================================================================
// Decoding
// ============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report GraphQL field names rather than Go ones
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeArg decodes the input object argument name of f into out and
// validates it
func decodeArg(f selection.Field, name string, out interface{}) error {
	raw, _ := f.Arg(name)
	if raw == nil {
		return apperrors.NewInvalidInput(name, "is required")
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return apperrors.NewInvalidInput(name, err.Error())
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.NewInvalidInput(name+"."+fieldPath(fe), fmt.Sprintf("failed %q check", fe.Tag()))
		}
		return apperrors.NewInvalidInput(name, err.Error())
	}
	return nil
}

// fieldPath drops the struct type prefix from a validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// lookupID returns the UUID argument name, ok=false when it is absent or
// malformed
func lookupID(f selection.Field, name string) (string, bool) {
	raw, _ := f.Arg(name)
	id, ok := raw.(string)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// mutationID is lookupID for mutations, where a malformed id is an error
func mutationID(f selection.Field, name string) (string, error) {
	id, ok := lookupID(f, name)
	if !ok {
		return "", apperrors.NewInvalidInput(name, "must be a UUID")
	}
	return id, nil
}
