package jsonform

import (
	"strconv"
	"strings"
)

type pathSegment struct {
	Key    string
	Append bool // true for []
}

// index reports the array index named by a numeric key.
func (s pathSegment) index() (int, bool) {
	if s.Append || !isDigits(s.Key) {
		return 0, false
	}
	i, err := strconv.Atoi(s.Key)
	if err != nil {
		return 0, false
	}
	return i, true
}

// wantsArray reports whether a container created just before s must be an
// array.
func (s pathSegment) wantsArray() bool {
	if s.Append {
		return true
	}
	_, ok := s.index()
	return ok
}

// Path is a parsed field name.
type Path []pathSegment

// ParsePath splits a field name into its bracket segments. Names with
// malformed brackets are not an error: they degrade to a single flat key
// holding the whole name.
func ParsePath(name string) Path {
	return Path(parseKey(name))
}

// String renders the path back into bracket syntax.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(p[0].Key)
	for _, s := range p[1:] {
		b.WriteString("[")
		if !s.Append {
			b.WriteString(s.Key)
		}
		b.WriteString("]")
	}
	return b.String()
}

func parseKey(key string) []pathSegment {
	i := strings.IndexByte(key, '[')
	if i == -1 {
		return []pathSegment{{Key: key}}
	}

	path := []pathSegment{{Key: key[:i]}}
	rest := key[i:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []pathSegment{{Key: key}}
		}
		j := strings.IndexAny(rest[1:], "[]")
		if j == -1 || rest[1+j] != ']' {
			return []pathSegment{{Key: key}}
		}

		part := rest[1 : 1+j]
		if part == "" {
			path = append(path, pathSegment{Append: true})
		} else {
			path = append(path, pathSegment{Key: part})
		}
		rest = rest[j+2:]
	}
	return path
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
