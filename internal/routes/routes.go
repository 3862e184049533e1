// Package routes holds the path-to-resource table consulted when
// dispatching requests. The table is a binary search tree ordered by
// byte-wise comparison of the path; paths are not normalized.
package routes

import (
	"errors"
	"fmt"
	"iter"
)

var ErrDuplicateRoute = errors.New("duplicate route")

type Route struct {
	Key   string
	Value string
}

type node struct {
	key   string
	value string
	left  *node
	right *node
}

// Registry is not safe for concurrent mutation. Build it before serving
// and share it read-only afterwards.
type Registry struct {
	root *node
	size int
}

func New() *Registry {
	return &Registry{}
}

func NewWithRoute(key, value string) *Registry {
	return &Registry{
		root: &node{key: key, value: value},
		size: 1,
	}
}

// Load inserts routes in order. onDuplicate, if non-nil, is called for
// every route whose key was already present.
func Load(routes []Route, onDuplicate func(Route)) *Registry {
	r := New()
	for _, route := range routes {
		if err := r.Insert(route.Key, route.Value); err != nil && onDuplicate != nil {
			onDuplicate(route)
		}
	}
	return r
}

// Insert binds key to value. An existing binding for key is left
// untouched and ErrDuplicateRoute is returned.
func (r *Registry) Insert(key, value string) error {
	link := &r.root
	for *link != nil {
		n := *link
		switch {
		case key == n.key:
			return fmt.Errorf("%w: %q", ErrDuplicateRoute, key)
		case key > n.key:
			link = &n.right
		default:
			link = &n.left
		}
	}

	*link = &node{key: key, value: value}
	r.size++
	return nil
}

func (r *Registry) Find(key string) (string, bool) {
	n := r.root
	for n != nil {
		switch {
		case key == n.key:
			return n.value, true
		case key > n.key:
			n = n.right
		default:
			n = n.left
		}
	}
	return "", false
}

// Delete removes the binding for key and reports whether it existed.
func (r *Registry) Delete(key string) bool {
	link := &r.root
	for *link != nil && (*link).key != key {
		if key > (*link).key {
			link = &(*link).right
		} else {
			link = &(*link).left
		}
	}

	n := *link
	if n == nil {
		return false
	}

	switch {
	case n.left == nil:
		*link = n.right
	case n.right == nil:
		*link = n.left
	default:
		// splice in the in-order successor
		succ := &n.right
		for (*succ).left != nil {
			succ = &(*succ).left
		}
		s := *succ
		*succ = s.right
		s.left, s.right = n.left, n.right
		*link = s
	}

	r.size--
	return true
}

func (r *Registry) Len() int {
	return r.size
}

// All yields every binding in ascending key order.
func (r *Registry) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		stack := make([]*node, 0, 16)
		n := r.root
		for n != nil || len(stack) > 0 {
			for n != nil {
				stack = append(stack, n)
				n = n.left
			}
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n.key, n.value) {
				return
			}
			n = n.right
		}
	}
}

func (r *Registry) Routes() []Route {
	routes := make([]Route, 0, r.size)
	for k, v := range r.All() {
		routes = append(routes, Route{Key: k, Value: v})
	}
	return routes
}
