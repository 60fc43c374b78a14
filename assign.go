package jsonform

import "fmt"

// maxSparseIndex bounds the array index a field name may address, so that a
// single name such as a[999999999] cannot allocate an enormous array.
const maxSparseIndex = 1 << 16

// ShapeError describes a field whose path requires a container of one shape
// at a location already fixed to another.
type ShapeError struct {
	Path Path
	Have NodeKind
	Want string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("jsonform: %q needs %s where %s exists", e.Path.String(), e.Want, e.Have)
}

// Assign folds value into the tree rooted at n at the location named by path.
// Locations keep the shape they were created with; a write that would need
// to change a shape returns a [*ShapeError] and leaves n unchanged.
func (n *Node) Assign(path Path, value interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("jsonform: empty path")
	}
	if err := n.check(path, path); err != nil {
		return err
	}
	n.assign(path, newNode(value))
	return nil
}

// AssignName parses name and folds value into n.
func (n *Node) AssignName(name string, value interface{}) error {
	return n.Assign(ParsePath(name), value)
}

// check walks path without mutating anything and reports the first shape
// conflict, so that a failing write never leaves half-built containers
// behind.
func (n *Node) check(full, path Path) error {
	seg := path[0]
	last := len(path) == 1

	conflict := func(have NodeKind, want string) error {
		return &ShapeError{Path: full, Have: have, Want: want}
	}

	switch n.kind {
	case NodeObject:
		if seg.Append {
			return conflict(n.kind, "array")
		}
		if last {
			return nil
		}
		child, ok := n.fields[seg.Key]
		if !ok {
			return checkIndices(full, path[1:])
		}
		return child.descendable(full, path[1:], conflict)
	case NodeArray:
		if seg.Append {
			if last {
				return nil
			}
			tail := lastItem(n)
			if tail != nil && tail.fits(path[1]) {
				return tail.check(full, path[1:])
			}
			return checkIndices(full, path[1:])
		}
		i, ok := seg.index()
		if !ok {
			return conflict(n.kind, "object")
		}
		if i > maxSparseIndex {
			return indexError(full, i)
		}
		if last {
			return nil
		}
		if i >= len(n.items) {
			return checkIndices(full, path[1:])
		}
		return n.items[i].descendable(full, path[1:], conflict)
	default:
		return conflict(n.kind, "container")
	}
}

// descendable checks that an existing child can hold the rest of the path.
func (n *Node) descendable(full, rest Path, conflict func(NodeKind, string) error) error {
	switch n.kind {
	case NodeGap:
		return checkIndices(full, rest)
	case NodeValue:
		return conflict(n.kind, "container")
	}
	return n.check(full, rest)
}

// checkIndices bounds the indices of a path whose containers do not exist
// yet. Every numeric segment there lands in a new array.
func checkIndices(full, rest Path) error {
	for _, seg := range rest {
		if i, ok := seg.index(); ok && i > maxSparseIndex {
			return indexError(full, i)
		}
	}
	return nil
}

func indexError(full Path, i int) error {
	return fmt.Errorf("jsonform: %q: index %d exceeds %d", full.String(), i, maxSparseIndex)
}

// fits reports whether n already has the shape the segment next needs.
func (n *Node) fits(next pathSegment) bool {
	if next.wantsArray() {
		return n.kind == NodeArray
	}
	return n.kind == NodeObject
}

func lastItem(n *Node) *Node {
	if len(n.items) == 0 {
		return nil
	}
	return n.items[len(n.items)-1]
}

func (n *Node) assign(path Path, value *Node) {
	seg := path[0]

	if len(path) == 1 {
		n.assignLeaf(seg, value)
		return
	}

	next := path[1]
	switch {
	case seg.Append:
		tail := lastItem(n)
		if tail == nil || !tail.fits(next) {
			tail = newContainer(next.wantsArray())
			n.push(tail)
		}
		tail.assign(path[1:], value)
	case n.kind == NodeArray:
		i, _ := seg.index()
		n.grow(i)
		if n.items[i].kind == NodeGap {
			n.items[i] = newContainer(next.wantsArray())
		}
		n.items[i].assign(path[1:], value)
	default:
		child, ok := n.fields[seg.Key]
		if !ok {
			child = newContainer(next.wantsArray())
			n.set(seg.Key, child)
		}
		child.assign(path[1:], value)
	}
}

func (n *Node) assignLeaf(seg pathSegment, value *Node) {
	switch {
	case seg.Append:
		n.push(value)
	case n.kind == NodeArray:
		i, _ := seg.index()
		n.grow(i)
		n.items[i] = merge(n.items[i], value)
	default:
		if existing, ok := n.fields[seg.Key]; ok {
			n.fields[seg.Key] = merge(existing, value)
			return
		}
		n.set(seg.Key, value)
	}
}

// merge combines a second write to an occupied location. An array absorbs
// the value, anything else is promoted to a two element array.
func merge(existing, value *Node) *Node {
	switch existing.kind {
	case NodeGap:
		return value
	case NodeArray:
		existing.push(value)
		return existing
	default:
		arr := newArray()
		arr.push(existing)
		arr.push(value)
		return arr
	}
}

// grow pads an array with gaps so that index i exists.
func (n *Node) grow(i int) {
	for len(n.items) <= i {
		n.items = append(n.items, &Node{kind: NodeGap})
	}
}
