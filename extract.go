package jsonform

import (
	"math"
	"strconv"
	"strings"
)

// field is a control's contribution to the document. Values of file
// controls are filled in once their files have been read.
type field struct {
	name  string
	value interface{}

	// flat fields are stored under their whole name without bracket
	// parsing.
	flat bool

	files    []File
	enctype  string
	multiple bool
}

// extract returns the field produced by c, or false when c submits nothing.
// File controls return their selection unread.
func extract(c *Control) (field, bool) {
	if c.Name == "" || c.Disabled || c.FieldsetDisabled {
		return field{}, false
	}

	f := field{name: c.Name}
	switch {
	case c.Kind == KindCheckbox:
		if !c.Checked {
			return field{}, false
		}
		f.value = true
	case c.Kind == KindRadio:
		if !c.Checked {
			return field{}, false
		}
		f.value = c.Value
	case c.Kind == KindNumber:
		f.value = parseNumber(c.Value)
	case c.Kind == KindSelect:
		v := c.selectedValue()
		if strings.TrimSpace(v) == "" {
			return field{}, false
		}
		f.value = v
	case c.Kind == KindSelectMultiple:
		var values []string
		for _, o := range c.Options {
			if o.Selected && strings.TrimSpace(o.Value) != "" {
				values = append(values, o.Value)
			}
		}
		if len(values) == 0 {
			return field{}, false
		}
		f.value = values
		f.flat = true
	case c.Kind == KindFile:
		if len(c.Files) == 0 || !knownEnctype(c.Enctype) {
			return field{}, false
		}
		f.files = append([]File(nil), c.Files...)
		f.enctype = c.Enctype
		f.multiple = c.Multiple
	case c.Kind.textLike():
		f.value = c.Value
	default:
		return field{}, false
	}
	return f, true
}

func (f field) path() Path {
	if f.flat {
		return Path{{Key: f.name}}
	}
	return ParsePath(f.name)
}

// parseNumber converts the value of a number input with the grammar of a
// script's Number(): signed decimals with an optional exponent, or unsigned
// 0x, 0o and 0b integers. A blank input keeps its key with a null value, as
// does a value that is not a finite number.
func parseNumber(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var n float64
	if base, digits, ok := radixPrefix(s); ok {
		v, ok := parseRadix(digits, base)
		if !ok {
			return nil
		}
		n = v
	} else {
		if strings.Trim(s, "0123456789+-.eE") != "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		n = v
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return nil
	}
	return n
}

func radixPrefix(s string) (int, string, bool) {
	if len(s) < 2 || s[0] != '0' {
		return 0, "", false
	}
	switch s[1] {
	case 'x', 'X':
		return 16, s[2:], true
	case 'o', 'O':
		return 8, s[2:], true
	case 'b', 'B':
		return 2, s[2:], true
	}
	return 0, "", false
}

// parseRadix accumulates digits as a float so that integers wider than 64
// bits still convert.
func parseRadix(digits string, base int) (float64, bool) {
	if digits == "" {
		return 0, false
	}
	var n float64
	for i := 0; i < len(digits); i++ {
		d, err := strconv.ParseUint(digits[i:i+1], base, 8)
		if err != nil {
			return 0, false
		}
		n = n*float64(base) + float64(d)
	}
	return n, true
}
