package resolve

import (
	"membergraph/backend/internal/selection"
	"membergraph/backend/internal/store"
)

const typenameField = "__typename"

// GraphQL object type names
const (
	TypeUser       = "User"
	TypePost       = "Post"
	TypeProfile    = "Profile"
	TypeMemberType = "MemberType"
)

// Shape renders the root of t as a User object for sel. It never touches a
// store: profiles, posts and member tiers come from att. Subscription
// lists keep the tree's child order and are empty past the tree's depth.
func Shape(t *Tree, sel selection.Set, att *Attachments) selection.Object {
	return shapeUser(t, RootID, sel, att)
}

func shapeUser(t *Tree, id NodeID, sel selection.Set, att *Attachments) selection.Object {
	n := t.Node(id)
	obj := make(selection.Object, 0, len(sel))
	for _, f := range sel {
		var v interface{}
		switch f.Name {
		case typenameField:
			v = TypeUser
		case "id":
			v = n.User.ID
		case "name":
			v = n.User.Name
		case "balance":
			v = n.User.Balance
		case "profile":
			if p, ok := att.ProfileOf(n.User.ID); ok {
				v = ShapeProfile(p, f.Children, att)
			}
		case "posts":
			posts := att.PostsOf(n.User.ID)
			list := make([]interface{}, 0, len(posts))
			for _, p := range posts {
				list = append(list, ShapePost(p, f.Children))
			}
			v = list
		case FieldUserSubscribedTo:
			v = shapeBranch(t, n.Branch(store.SubscribedTo), f.Children, att)
		case FieldSubscribedToUser:
			v = shapeBranch(t, n.Branch(store.SubscribedBy), f.Children, att)
		}
		obj = append(obj, selection.Entry{Key: f.Key(), Value: v})
	}
	return obj
}

func shapeBranch(t *Tree, children []NodeID, sel selection.Set, att *Attachments) []interface{} {
	list := make([]interface{}, 0, len(children))
	for _, child := range children {
		list = append(list, shapeUser(t, child, sel, att))
	}
	return list
}

// ShapePost renders p for sel
func ShapePost(p store.Post, sel selection.Set) selection.Object {
	obj := make(selection.Object, 0, len(sel))
	for _, f := range sel {
		var v interface{}
		switch f.Name {
		case typenameField:
			v = TypePost
		case "id":
			v = p.ID
		case "title":
			v = p.Title
		case "content":
			v = p.Content
		case "authorId":
			v = p.AuthorID
		}
		obj = append(obj, selection.Entry{Key: f.Key(), Value: v})
	}
	return obj
}

// ShapeProfile renders p for sel, reading its tier from att
func ShapeProfile(p store.Profile, sel selection.Set, att *Attachments) selection.Object {
	obj := make(selection.Object, 0, len(sel))
	for _, f := range sel {
		var v interface{}
		switch f.Name {
		case typenameField:
			v = TypeProfile
		case "id":
			v = p.ID
		case "isMale":
			v = p.IsMale
		case "yearOfBirth":
			v = p.YearOfBirth
		case "userId":
			v = p.UserID
		case "memberTypeId":
			v = string(p.MemberTypeID)
		case "memberType":
			if m, ok := att.MemberType(p.MemberTypeID); ok {
				v = ShapeMemberType(m, f.Children)
			}
		}
		obj = append(obj, selection.Entry{Key: f.Key(), Value: v})
	}
	return obj
}

// ShapeMemberType renders m for sel
func ShapeMemberType(m store.MemberType, sel selection.Set) selection.Object {
	obj := make(selection.Object, 0, len(sel))
	for _, f := range sel {
		var v interface{}
		switch f.Name {
		case typenameField:
			v = TypeMemberType
		case "id":
			v = string(m.ID)
		case "discount":
			v = m.Discount
		case "postsLimitPerMonth":
			v = m.PostsLimitPerMonth
		}
		obj = append(obj, selection.Entry{Key: f.Key(), Value: v})
	}
	return obj
}
