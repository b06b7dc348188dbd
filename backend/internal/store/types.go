package store

import "membergraph/backend/internal/constants"

// Entity kinds, used in error messages and metrics labels
const (
	KindUser         = "user"
	KindPost         = "post"
	KindProfile      = "profile"
	KindMemberType   = "memberType"
	KindSubscription = "subscription"
)

// MemberTypeID is one of the closed set of member tiers
type MemberTypeID string

const (
	MemberTypeBasic    MemberTypeID = constants.MemberTypeBasic
	MemberTypeBusiness MemberTypeID = constants.MemberTypeBusiness
)

// Valid reports whether id names a known tier
func (id MemberTypeID) Valid() bool {
	return id == MemberTypeBasic || id == MemberTypeBusiness
}

// User is a person that owns posts and a profile and takes part in
// subscriptions on both ends
type User struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Post is owned by exactly one author
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
}

// Profile belongs to exactly one user and references one member tier
type Profile struct {
	ID           string       `json:"id"`
	IsMale       bool         `json:"isMale"`
	YearOfBirth  int          `json:"yearOfBirth"`
	UserID       string       `json:"userId"`
	MemberTypeID MemberTypeID `json:"memberTypeId"`
}

// MemberType is seeded reference data
type MemberType struct {
	ID                 MemberTypeID `json:"id"`
	Discount           float64      `json:"discount"`
	PostsLimitPerMonth int          `json:"postsLimitPerMonth"`
}

// Subscription records that SubscriberID follows AuthorID
type Subscription struct {
	SubscriberID string `json:"subscriberId"`
	AuthorID     string `json:"authorId"`
}

// SeedMemberTypes returns the reference tiers every store starts with
func SeedMemberTypes() []MemberType {
	return []MemberType{
		{ID: MemberTypeBasic, Discount: constants.BasicDiscount, PostsLimitPerMonth: constants.BasicPostsLimitPerMonth},
		{ID: MemberTypeBusiness, Discount: constants.BusinessDiscount, PostsLimitPerMonth: constants.BusinessPostsLimitPerMonth},
	}
}

// Write payloads

// UserInput carries the fields of a new user
type UserInput struct {
	Name    string
	Balance float64
}

// UserPatch carries the fields to change on a user; nil means unchanged
type UserPatch struct {
	Name    *string
	Balance *float64
}

// PostInput carries the fields of a new post
type PostInput struct {
	Title    string
	Content  string
	AuthorID string
}

// PostPatch carries the fields to change on a post; nil means unchanged
type PostPatch struct {
	Title   *string
	Content *string
}

// ProfileInput carries the fields of a new profile
type ProfileInput struct {
	IsMale       bool
	YearOfBirth  int
	UserID       string
	MemberTypeID MemberTypeID
}

// ProfilePatch carries the fields to change on a profile; nil means unchanged
type ProfilePatch struct {
	IsMale       *bool
	YearOfBirth  *int
	MemberTypeID *MemberTypeID
}

// Apply returns u with the patch applied
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Balance != nil {
		u.Balance = *p.Balance
	}
	return u
}

// Apply returns post with the patch applied
func (p PostPatch) Apply(post Post) Post {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	return post
}

// Apply returns profile with the patch applied
func (p ProfilePatch) Apply(profile Profile) Profile {
	if p.IsMale != nil {
		profile.IsMale = *p.IsMale
	}
	if p.YearOfBirth != nil {
		profile.YearOfBirth = *p.YearOfBirth
	}
	if p.MemberTypeID != nil {
		profile.MemberTypeID = *p.MemberTypeID
	}
	return profile
}
