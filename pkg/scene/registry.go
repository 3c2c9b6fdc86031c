package scene

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors.
var (
	ErrEmptyID     = errors.New("scene: node id is empty")
	ErrDuplicateID = errors.New("scene: duplicate node id")
)

// Registry maps identifiers to scene nodes. One registry is shared by
// every component that touches the graph; it is how animation tracks
// and the drag controller reach their targets. Not safe for concurrent
// use, like the rest of the frame loop.
type Registry struct {
	nodes map[string]*Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// Add registers a node under its id. Ids are first come, first served:
// adding a second node with an id already taken fails and leaves the
// original in place.
func (r *Registry) Add(n *Node) error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if _, exists := r.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
	}
	r.nodes[n.ID] = n
	return nil
}

// Lookup returns the node registered under id.
func (r *Registry) Lookup(id string) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Remove drops the node registered under id and reports whether one
// was present.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.nodes[id]; !ok {
		return false
	}
	delete(r.nodes, id)
	return true
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// IDs returns all registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
