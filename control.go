package jsonform

import (
	"fmt"
	"strings"
)

// ControlKind is the closed set of form controls the extractor understands.
type ControlKind int

const (
	KindOther ControlKind = iota
	KindText
	KindTextarea
	KindEmail
	KindPassword
	KindSearch
	KindTel
	KindURL
	KindHidden
	KindDate
	KindCheckbox
	KindRadio
	KindNumber
	KindSelect
	KindSelectMultiple
	KindFile
)

var controlKindNames = map[ControlKind]string{
	KindOther:          "other",
	KindText:           "text",
	KindTextarea:       "textarea",
	KindEmail:          "email",
	KindPassword:       "password",
	KindSearch:         "search",
	KindTel:            "tel",
	KindURL:            "url",
	KindHidden:         "hidden",
	KindDate:           "date",
	KindCheckbox:       "checkbox",
	KindRadio:          "radio",
	KindNumber:         "number",
	KindSelect:         "select",
	KindSelectMultiple: "select-multiple",
	KindFile:           "file",
}

// inputTypes maps the type attribute of an input element onto a kind. Input
// types not listed here submit nothing.
var inputTypes = map[string]ControlKind{
	"":               KindText,
	"text":           KindText,
	"email":          KindEmail,
	"password":       KindPassword,
	"search":         KindSearch,
	"tel":            KindTel,
	"url":            KindURL,
	"hidden":         KindHidden,
	"date":           KindDate,
	"datetime-local": KindDate,
	"month":          KindDate,
	"week":           KindDate,
	"time":           KindDate,
	"color":          KindText,
	"range":          KindText,
	"checkbox":       KindCheckbox,
	"radio":          KindRadio,
	"number":         KindNumber,
	"file":           KindFile,
}

func (k ControlKind) String() string {
	if name, ok := controlKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ControlKind(%d)", int(k))
}

// MarshalText implements [encoding.TextMarshaler].
func (k ControlKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. It accepts kind names
// as well as the type attribute values of input elements.
func (k *ControlKind) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for kind, name := range controlKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	*k = ParseControlKind("input", s)
	return nil
}

// ParseControlKind returns the kind of an element from its tag name and, for
// input elements, its type attribute. Multiple selects are distinguished by
// the "select-multiple" type, which is how browsers report them.
func ParseControlKind(tag, typ string) ControlKind {
	typ = strings.ToLower(strings.TrimSpace(typ))
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "textarea":
		return KindTextarea
	case "select":
		if typ == "select-multiple" {
			return KindSelectMultiple
		}
		return KindSelect
	case "input", "":
		if kind, ok := inputTypes[typ]; ok {
			return kind
		}
	}
	return KindOther
}

// textLike reports whether the control submits its raw value verbatim.
func (k ControlKind) textLike() bool {
	switch k {
	case KindText, KindTextarea, KindEmail, KindPassword, KindSearch,
		KindTel, KindURL, KindHidden, KindDate:
		return true
	}
	return false
}

// SelectOption is one option of a select control.
type SelectOption struct {
	Value    string `yaml:"value" json:"value"`
	Selected bool   `yaml:"selected" json:"selected"`
}

// Control describes a single form control as read from the document.
type Control struct {
	Name    string         `yaml:"name" json:"name"`
	Kind    ControlKind    `yaml:"kind" json:"kind"`
	Value   string         `yaml:"value" json:"value"`
	Checked bool           `yaml:"checked" json:"checked"`
	Options []SelectOption `yaml:"options" json:"options"`

	Disabled bool `yaml:"disabled" json:"disabled"`

	// FieldsetDisabled is set when the control sits inside a disabled
	// fieldset.
	FieldsetDisabled bool `yaml:"fieldset_disabled" json:"fieldset_disabled"`

	// Multiple and Enctype apply to file controls.
	Multiple bool   `yaml:"multiple" json:"multiple"`
	Enctype  string `yaml:"enctype" json:"enctype"`
	Files    []File `yaml:"-" json:"-"`
}

// Clear drops the control's file selection, as if the user chose nothing.
func (c *Control) Clear() {
	c.Files = nil
}

// selectedValue returns the value of the first selected option, or the
// control's value when no option is marked.
func (c *Control) selectedValue() string {
	for _, o := range c.Options {
		if o.Selected {
			return o.Value
		}
	}
	return c.Value
}

// FormEnctype is the enctype attribute that marks a form for JSON
// submission.
const FormEnctype = "application/json"

// Form is a form element and its controls in document order.
type Form struct {
	ID      string `yaml:"id" json:"id"`
	Enctype string `yaml:"enctype" json:"enctype"`

	// SizeLimit is the raw size limit attribute. It is parsed every time a
	// file control changes.
	SizeLimit string `yaml:"size_limit" json:"size_limit"`

	Controls []*Control `yaml:"controls" json:"controls"`
}

// Matches reports whether the form asks to be submitted as JSON.
func (f *Form) Matches() bool {
	return strings.EqualFold(strings.TrimSpace(f.Enctype), FormEnctype)
}

// Control returns the first control named name.
func (f *Form) Control(name string) (*Control, bool) {
	for _, c := range f.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
