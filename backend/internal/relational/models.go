package relational

import (
	"time"

	"membergraph/backend/internal/store"
)

type memberTypeModel struct {
	ID                 string  `gorm:"type:varchar(16);primaryKey"`
	Discount           float64 `gorm:"not null"`
	PostsLimitPerMonth int     `gorm:"not null"`
}

func (memberTypeModel) TableName() string { return "member_types" }

type userModel struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	Name      string  `gorm:"not null"`
	Balance   float64 `gorm:"not null"`
	CreatedAt time.Time

	SubscribedTo []subscriptionModel `gorm:"foreignKey:SubscriberID;references:ID"`
	SubscribedBy []subscriptionModel `gorm:"foreignKey:AuthorID;references:ID"`
}

func (userModel) TableName() string { return "users" }

// subscriptionModel is the explicit join row between subscriber and author
type subscriptionModel struct {
	SubscriberID string `gorm:"type:uuid;primaryKey"`
	AuthorID     string `gorm:"type:uuid;primaryKey;index"`
	CreatedAt    time.Time

	Subscriber *userModel `gorm:"foreignKey:SubscriberID;references:ID;constraint:OnDelete:CASCADE"`
	Author     *userModel `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

func (subscriptionModel) TableName() string { return "subscriptions" }

type postModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"not null"`
	AuthorID  string `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time

	Author *userModel `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (postModel) TableName() string { return "posts" }

type profileModel struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	IsMale       bool   `gorm:"not null"`
	YearOfBirth  int    `gorm:"not null"`
	UserID       string `gorm:"type:uuid;not null;uniqueIndex"`
	MemberTypeID string `gorm:"type:varchar(16);not null;index"`
	CreatedAt    time.Time

	User       *userModel       `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	MemberType *memberTypeModel `gorm:"foreignKey:MemberTypeID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (profileModel) TableName() string { return "profiles" }

// models lists the tables in dependency order
func models() []interface{} {
	return []interface{}{
		&memberTypeModel{},
		&userModel{},
		&subscriptionModel{},
		&postModel{},
		&profileModel{},
	}
}

func (m userModel) toUser() store.User {
	return store.User{ID: m.ID, Name: m.Name, Balance: m.Balance}
}

func (m postModel) toPost() store.Post {
	return store.Post{ID: m.ID, Title: m.Title, Content: m.Content, AuthorID: m.AuthorID}
}

func (m profileModel) toProfile() store.Profile {
	return store.Profile{
		ID:           m.ID,
		IsMale:       m.IsMale,
		YearOfBirth:  m.YearOfBirth,
		UserID:       m.UserID,
		MemberTypeID: store.MemberTypeID(m.MemberTypeID),
	}
}

func (m memberTypeModel) toMemberType() store.MemberType {
	return store.MemberType{
		ID:                 store.MemberTypeID(m.ID),
		Discount:           m.Discount,
		PostsLimitPerMonth: m.PostsLimitPerMonth,
	}
}

func (m subscriptionModel) toSubscription() store.Subscription {
	return store.Subscription{SubscriberID: m.SubscriberID, AuthorID: m.AuthorID}
}
