// Package queryguard inspects caller-supplied query payloads for restricted field access.
// Payloads are modelled as a neutral Map/List/Scalar tree so the guard does not depend on any
// data-access library.
package queryguard

// Node is one element of a query payload tree. The concrete types are Map, List and Scalar.
type Node interface {
	node()
}

// Map is an object with string keys.
type Map map[string]Node

// List is an ordered sequence of nodes.
type List []Node

// Scalar is any leaf value (string, number, bool, nil).
type Scalar struct {
	Value any
}

func (Map) node()    {}
func (List) node()   {}
func (Scalar) node() {}

// FromAny converts a value produced by encoding/json (or any map/slice mix) into a Node tree.
func FromAny(v any) Node {
	switch t := v.(type) {
	case Node:
		return t
	case map[string]any:
		m := make(Map, len(t))
		for k, child := range t {
			m[k] = FromAny(child)
		}
		return m
	case map[string]string:
		m := make(Map, len(t))
		for k, child := range t {
			m[k] = Scalar{Value: child}
		}
		return m
	case []any:
		l := make(List, 0, len(t))
		for _, child := range t {
			l = append(l, FromAny(child))
		}
		return l
	case []map[string]any:
		l := make(List, 0, len(t))
		for _, child := range t {
			l = append(l, FromAny(child))
		}
		return l
	default:
		return Scalar{Value: v}
	}
}

// Walk visits every node depth-first, calling fn with each map key and its value before
// descending. Traversal never stops early.
func Walk(n Node, fn func(key string, value Node)) {
	switch t := n.(type) {
	case Map:
		for k, child := range t {
			fn(k, child)
			Walk(child, fn)
		}
	case List:
		for _, child := range t {
			Walk(child, fn)
		}
	}
}
