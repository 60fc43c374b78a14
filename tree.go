package jsonform

import (
	"bytes"
	"encoding/json"
)

// NodeKind is the shape of a [Node]. A node's kind is fixed by the first write
// at its location.
type NodeKind int

const (
	// NodeGap marks an array cell below the highest written index that was
	// never written. It serialises as null.
	NodeGap NodeKind = iota
	NodeValue
	NodeObject
	NodeArray
)

func (k NodeKind) String() string {
	switch k {
	case NodeGap:
		return "gap"
	case NodeValue:
		return "value"
	case NodeObject:
		return "object"
	case NodeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Node is one location in an assembled document.
type Node struct {
	kind   NodeKind
	keys   []string // insertion order of fields
	fields map[string]*Node
	items  []*Node
	value  interface{}
}

// NewObject returns an empty object node, the usual root of a document.
func NewObject() *Node {
	return &Node{kind: NodeObject, fields: make(map[string]*Node)}
}

func newArray() *Node {
	return &Node{kind: NodeArray}
}

func newContainer(array bool) *Node {
	if array {
		return newArray()
	}
	return NewObject()
}

// newNode wraps a produced field value. Sequences become array nodes so that
// later writes to the same location append to them.
func newNode(v interface{}) *Node {
	switch vv := v.(type) {
	case *Node:
		return vv
	case []string:
		n := newArray()
		for _, s := range vv {
			n.items = append(n.items, newNode(s))
		}
		return n
	case []*FileObject:
		n := newArray()
		for _, f := range vv {
			n.items = append(n.items, newNode(f))
		}
		return n
	case []interface{}:
		n := newArray()
		for _, e := range vv {
			n.items = append(n.items, newNode(e))
		}
		return n
	default:
		return &Node{kind: NodeValue, value: v}
	}
}

// Kind returns the shape of n.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Len returns the number of fields of an object or items of an array.
func (n *Node) Len() int {
	switch n.kind {
	case NodeObject:
		return len(n.keys)
	case NodeArray:
		return len(n.items)
	default:
		return 0
	}
}

// Get returns the field named key of an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != NodeObject {
		return nil, false
	}
	child, ok := n.fields[key]
	return child, ok
}

// Index returns the i-th item of an array node.
func (n *Node) Index(i int) (*Node, bool) {
	if n.kind != NodeArray || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

// Keys returns the field names of an object node in insertion order.
func (n *Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

// Value returns the scalar held by a value node.
func (n *Node) Value() interface{} {
	return n.value
}

func (n *Node) set(key string, child *Node) {
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

func (n *Node) push(child *Node) {
	n.items = append(n.items, child)
}

// Interface converts n into plain Go values: map[string]interface{} for
// objects, []interface{} for arrays and nil for gaps. Scalars are passed
// through unchanged.
func (n *Node) Interface() interface{} {
	switch n.kind {
	case NodeObject:
		m := make(map[string]interface{}, len(n.keys))
		for _, k := range n.keys {
			m[k] = n.fields[k].Interface()
		}
		return m
	case NodeArray:
		s := make([]interface{}, len(n.items))
		for i, item := range n.items {
			s[i] = item.Interface()
		}
		return s
	case NodeValue:
		return n.value
	default:
		return nil
	}
}

// MarshalJSON encodes n, keeping object fields in the order they were first
// written.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	switch n.kind {
	case NodeObject:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := n.fields[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case NodeArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case NodeValue:
		return writeScalar(buf, n.value)
	default:
		buf.WriteString("null")
	}
	return nil
}

// writeScalar encodes v without escaping HTML characters, so string values
// reach the body exactly as they were typed.
func writeScalar(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
