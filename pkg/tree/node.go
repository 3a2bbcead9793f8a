// Package tree holds a generic representation of parsed structured data (maps, lists, scalars)
// and the breadth-first locator used to find article lists inside it.
package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// Kind is the tag of a Node
type Kind int

// node kinds
const (
	KindScalar Kind = iota
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "scalar"
	}
}

// ScalarType is the JSON type of a scalar node
type ScalarType int

// scalar types
const (
	Null ScalarType = iota
	String
	Number
	Bool
)

// Node is a tagged union of map, list and scalar values.
// Map keys are kept in document order, so walking a tree parsed from the same text
// always visits nodes in the same order.
type Node struct {
	Kind   Kind
	Type   ScalarType // scalar only
	Raw    string     // scalar only, unescaped string or literal text of number/bool/null
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// ErrInvalidJSON returned by Parse for data which is not a valid JSON document
var ErrInvalidJSON = errors.New("invalid json")

// NewMap makes an empty map node
func NewMap() *Node {
	return &Node{Kind: KindMap, fields: map[string]*Node{}}
}

// NewList makes a list node with the given items
func NewList(items ...*Node) *Node {
	return &Node{Kind: KindList, items: items}
}

// NewString makes a string scalar
func NewString(s string) *Node {
	return &Node{Kind: KindScalar, Type: String, Raw: s}
}

// NewNumber makes a number scalar
func NewNumber(n int64) *Node {
	return &Node{Kind: KindScalar, Type: Number, Raw: strconv.FormatInt(n, 10)}
}

// Set adds or replaces a map field. New keys are appended to the key order,
// replaced keys keep their original position.
func (n *Node) Set(key string, v *Node) *Node {
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = v
	return n
}

// Append adds items to a list node
func (n *Node) Append(items ...*Node) *Node {
	n.items = append(n.items, items...)
	return n
}

// Keys returns map keys in document order
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMap {
		return nil
	}
	return n.keys
}

// Get returns a map field, nil for a missing key or a non-map node
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMap {
		return nil
	}
	return n.fields[key]
}

// Has checks if a map node contains all the keys
func (n *Node) Has(keys ...string) bool {
	if n == nil || n.Kind != KindMap {
		return false
	}
	for _, k := range keys {
		if _, ok := n.fields[k]; !ok {
			return false
		}
	}
	return true
}

// Items returns list elements
func (n *Node) Items() []*Node {
	if n == nil || n.Kind != KindList {
		return nil
	}
	return n.items
}

// Len returns number of map fields or list items, 0 for scalars
func (n *Node) Len() int {
	switch {
	case n == nil:
		return 0
	case n.Kind == KindMap:
		return len(n.keys)
	case n.Kind == KindList:
		return len(n.items)
	}
	return 0
}

// Children returns direct children, map values in key order and list items in index order
func (n *Node) Children() []*Node {
	switch {
	case n == nil:
		return nil
	case n.Kind == KindList:
		return n.items
	case n.Kind == KindMap:
		res := make([]*Node, 0, len(n.keys))
		for _, k := range n.keys {
			res = append(res, n.fields[k])
		}
		return res
	}
	return nil
}

// Text returns scalar value as text, empty for null and non-scalar nodes
func (n *Node) Text() string {
	if n == nil || n.Kind != KindScalar || n.Type == Null {
		return ""
	}
	return n.Raw
}

// Int64 returns the scalar as integer. Numbers with fraction or exponent are truncated,
// numeric strings are accepted as well.
func (n *Node) Int64() (int64, bool) {
	if n == nil || n.Kind != KindScalar || (n.Type != Number && n.Type != String) {
		return 0, false
	}
	if v, err := strconv.ParseInt(n.Raw, 10, 64); err == nil {
		return v, true
	}
	if n.Type != Number {
		return 0, false
	}
	v, err := strconv.ParseFloat(n.Raw, 64)
	if err != nil {
		return 0, false
	}
	return int64(v), true
}

// Parse builds a tree from JSON text
func Parse(data []byte) (*Node, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	value, vt, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("read root: %w", err)
	}
	return build(value, vt)
}

func build(value []byte, vt jsonparser.ValueType) (*Node, error) {
	switch vt {
	case jsonparser.Object:
		res := NewMap()
		if isEmpty(value, '{', '}') {
			return res, nil
		}
		err := jsonparser.ObjectEach(value, func(key, val []byte, dt jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return fmt.Errorf("parse key %q: %w", key, err)
			}
			child, err := build(val, dt)
			if err != nil {
				return err
			}
			res.Set(k, child)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse object: %w", err)
		}
		return res, nil

	case jsonparser.Array:
		res := NewList()
		if isEmpty(value, '[', ']') {
			return res, nil
		}
		var itemErr error
		_, err := jsonparser.ArrayEach(value, func(val []byte, dt jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			child, err := build(val, dt)
			if err != nil {
				itemErr = err
				return
			}
			res.Append(child)
		})
		if err == nil {
			err = itemErr
		}
		if err != nil {
			return nil, fmt.Errorf("parse array: %w", err)
		}
		return res, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("parse string: %w", err)
		}
		return NewString(s), nil
	case jsonparser.Number:
		return &Node{Kind: KindScalar, Type: Number, Raw: string(value)}, nil
	case jsonparser.Boolean:
		return &Node{Kind: KindScalar, Type: Bool, Raw: string(value)}, nil
	case jsonparser.Null:
		return &Node{Kind: KindScalar, Type: Null, Raw: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected value type %v", vt)
}

// isEmpty detects "{}" and "[]" with any whitespace inside
func isEmpty(value []byte, open, closing byte) bool {
	v := bytes.TrimSpace(value)
	if len(v) < 2 || v[0] != open || v[len(v)-1] != closing {
		return false
	}
	return len(bytes.TrimSpace(v[1:len(v)-1])) == 0
}
