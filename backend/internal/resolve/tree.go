package resolve

import (
	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
)

// NodeID indexes a node inside its Tree
type NodeID int32

// RootID is the id of every tree's root node
const RootID NodeID = 0

// Node is one position in a neighborhood. The same user appears at as many
// positions as there are paths reaching it.
type Node struct {
	User         store.User
	Hop          int
	SubscribedTo []NodeID
	SubscribedBy []NodeID
}

// Branch returns the children in direction d
func (n *Node) Branch(d store.Direction) []NodeID {
	if d == store.SubscribedBy {
		return n.SubscribedBy
	}
	return n.SubscribedTo
}

// Tree is a materialized subscription neighborhood, bounded by depth
type Tree struct {
	nodes []Node
	depth int
}

// NewSingleNodeTree returns a tree holding only u, with no edges
func NewSingleNodeTree(u store.User) *Tree {
	return &Tree{nodes: []Node{{User: u}}}
}

// Node returns the node with the given id
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Root returns the root node
func (t *Tree) Root() *Node {
	return &t.nodes[RootID]
}

// Depth is the number of hops the tree was built to
func (t *Tree) Depth() int { return t.depth }

// Len is the number of nodes
func (t *Tree) Len() int { return len(t.nodes) }

// UserIDs lists the distinct users in the tree, in node order
func (t *Tree) UserIDs() []string {
	seen := make(map[string]struct{}, len(t.nodes))
	ids := make([]string, 0, len(t.nodes))
	for _, n := range t.nodes {
		if _, ok := seen[n.User.ID]; ok {
			continue
		}
		seen[n.User.ID] = struct{}{}
		ids = append(ids, n.User.ID)
	}
	return ids
}

// adjacency indexes a graph's edges by endpoint, keeping edge order
type adjacency struct {
	users map[string]store.User
	out   map[string][]string
	in    map[string][]string
}

func newAdjacency(g *store.Graph) *adjacency {
	a := &adjacency{
		users: g.Users,
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
	for _, s := range g.Subscriptions {
		if _, ok := g.Users[s.SubscriberID]; !ok {
			continue
		}
		if _, ok := g.Users[s.AuthorID]; !ok {
			continue
		}
		a.out[s.SubscriberID] = append(a.out[s.SubscriberID], s.AuthorID)
		a.in[s.AuthorID] = append(a.in[s.AuthorID], s.SubscriberID)
	}
	return a
}

// BuildTree materializes the neighborhood of rootID found in g down to
// depth hops in both directions. Children keep the order of
// g.Subscriptions. Nodes at the last hop get no children even when g holds
// more edges.
func BuildTree(g *store.Graph, rootID string, depth int) (*Tree, error) {
	return newAdjacency(g).tree(rootID, store.IncludeBoth(depth))
}

// BuildTreeInclude is BuildTree limited to the branches inc names. A node
// whose include has no branch in a direction gets no children there.
func BuildTreeInclude(g *store.Graph, rootID string, inc *store.Include) (*Tree, error) {
	return newAdjacency(g).tree(rootID, inc)
}

func (a *adjacency) tree(rootID string, inc *store.Include) (*Tree, error) {
	root, ok := a.users[rootID]
	if !ok {
		return nil, apperrors.NewNotFound(store.KindUser, rootID)
	}

	t := &Tree{depth: inc.Depth()}
	var add func(u store.User, hop int, inc *store.Include) NodeID
	add = func(u store.User, hop int, inc *store.Include) NodeID {
		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{User: u, Hop: hop})

		var to, by []NodeID
		if next := inc.Branch(store.SubscribedTo); next != nil {
			to = make([]NodeID, 0, len(a.out[u.ID]))
			for _, authorID := range a.out[u.ID] {
				to = append(to, add(a.users[authorID], hop+1, next))
			}
		}
		if next := inc.Branch(store.SubscribedBy); next != nil {
			by = make([]NodeID, 0, len(a.in[u.ID]))
			for _, subscriberID := range a.in[u.ID] {
				by = append(by, add(a.users[subscriberID], hop+1, next))
			}
		}

		// t.nodes may have grown; index again
		t.nodes[id].SubscribedTo = to
		t.nodes[id].SubscribedBy = by
		return id
	}
	add(root, 0, inc)
	return t, nil
}
