package store

import "strings"

// Direction names one side of the subscription relation as seen from a user
type Direction int

const (
	// SubscribedTo follows outgoing edges: the authors a user subscribes to
	SubscribedTo Direction = iota
	// SubscribedBy follows incoming edges: the subscribers of a user
	SubscribedBy
)

func (d Direction) String() string {
	if d == SubscribedBy {
		return "subscribedBy"
	}
	return "subscribedTo"
}

// Include is a nested eager-include tree over the subscription relation.
// A nil branch is not loaded. The zero value loads only the root user.
type Include struct {
	SubscribedTo *Include
	SubscribedBy *Include
}

// IncludeBoth loads both directions at every level down to depth hops
func IncludeBoth(depth int) *Include {
	inc := &Include{}
	for i := 0; i < depth; i++ {
		inc = &Include{SubscribedTo: inc, SubscribedBy: inc}
	}
	return inc
}

// Branch returns the nested include for direction d
func (i *Include) Branch(d Direction) *Include {
	if i == nil {
		return nil
	}
	if d == SubscribedBy {
		return i.SubscribedBy
	}
	return i.SubscribedTo
}

// Depth is the longest chain of hops the include asks for
func (i *Include) Depth() int {
	if i == nil {
		return 0
	}
	best := 0
	for _, child := range []*Include{i.SubscribedTo, i.SubscribedBy} {
		if child == nil {
			continue
		}
		if d := child.Depth() + 1; d > best {
			best = d
		}
	}
	return best
}

// Paths lists every root-to-leaf chain of directions, shortest first
// within each branch. IncludeBoth(2) yields
// [subscribedTo subscribedTo.subscribedTo subscribedTo.subscribedBy subscribedBy ...].
func (i *Include) Paths() [][]Direction {
	var out [][]Direction
	var walk func(inc *Include, prefix []Direction)
	walk = func(inc *Include, prefix []Direction) {
		for _, d := range []Direction{SubscribedTo, SubscribedBy} {
			child := inc.Branch(d)
			if child == nil {
				continue
			}
			path := append(append([]Direction{}, prefix...), d)
			out = append(out, path)
			walk(child, path)
		}
	}
	if i != nil {
		walk(i, nil)
	}
	return out
}

// String renders the include as dotted paths, for logs
func (i *Include) String() string {
	paths := i.Paths()
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		names := make([]string, len(p))
		for j, d := range p {
			names[j] = d.String()
		}
		parts = append(parts, strings.Join(names, "."))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Graph is the flat result of an eager fetch: the users reached and the
// subscription edges between them in creation order. It is acyclic only
// by accident; consumers bound traversal by depth.
type Graph struct {
	RootID        string
	Users         map[string]User
	Subscriptions []Subscription
}

// NewGraph returns an empty graph rooted at root
func NewGraph(root User) *Graph {
	return &Graph{
		RootID: root.ID,
		Users:  map[string]User{root.ID: root},
	}
}
