package jsonform

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoder reads form descriptors from an [io.Reader].
//
// A descriptor is a YAML (or JSON) document listing a form's controls in
// document order. File controls name their selection by path:
//
//	enctype: application/json
//	controls:
//	  - name: avatar
//	    kind: file
//	    enctype: application/base64
//	    files: [avatar.png]
type Decoder struct {
	dec     *yaml.Decoder
	baseDir string
}

// NewDecoder creates a new [Decoder] that reads from r. Relative file paths
// are resolved against the working directory.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: yaml.NewDecoder(r)}
}

// BaseDir sets the directory relative file paths are resolved against.
func (d *Decoder) BaseDir(dir string) *Decoder {
	d.baseDir = dir
	return d
}

type descriptor struct {
	ID        string              `yaml:"id"`
	Enctype   string              `yaml:"enctype"`
	SizeLimit string              `yaml:"size_limit"`
	Controls  []controlDescriptor `yaml:"controls"`
}

type controlDescriptor struct {
	Control `yaml:",inline"`
	Files   []string `yaml:"files"`
}

// UnmarshalYAML decodes a control, treating one without a kind as a text
// input.
func (cd *controlDescriptor) UnmarshalYAML(value *yaml.Node) error {
	type plain controlDescriptor
	p := plain{Control: Control{Kind: KindText}}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*cd = controlDescriptor(p)
	return nil
}

// Decode reads the next descriptor and returns the form it describes. It
// returns [io.EOF] when the input holds no further documents.
func (d *Decoder) Decode() (*Form, error) {
	var desc descriptor
	if err := d.dec.Decode(&desc); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("jsonform: decode form: %w", err)
	}

	form := &Form{
		ID:        desc.ID,
		Enctype:   desc.Enctype,
		SizeLimit: desc.SizeLimit,
		Controls:  make([]*Control, 0, len(desc.Controls)),
	}
	for i := range desc.Controls {
		cd := desc.Controls[i]
		c := cd.Control
		for _, p := range cd.Files {
			if !filepath.IsAbs(p) && d.baseDir != "" {
				p = filepath.Join(d.baseDir, p)
			}
			f, err := NewDiskFile(p)
			if err != nil {
				return nil, err
			}
			c.Files = append(c.Files, f)
		}
		form.Controls = append(form.Controls, &c)
	}
	return form, nil
}

// Encoder writes JSON form bodies to an [io.Writer].
type Encoder struct {
	w       io.Writer
	builder *Builder
}

// NewEncoder creates a new [Encoder] that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, builder: NewBuilder(opts...)}
}

// Encode builds the body of form and writes it to the underlying
// [io.Writer].
func (e *Encoder) Encode(ctx context.Context, form *Form) error {
	data, err := e.builder.Marshal(ctx, form)
	if err != nil {
		return err
	}

	_, err = e.w.Write(data)
	return err
}

// ParseQuery turns application/x-www-form-urlencoded data into a form of
// hidden controls, one per pair, in the order the pairs appear.
func ParseQuery(data []byte) (*Form, error) {
	// Make sure to trim spaces to avoid keys containing only spaces.
	query := strings.TrimSpace(string(data))

	form := &Form{Enctype: FormEnctype}
	for query != "" {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("jsonform: invalid form data: %w", err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("jsonform: invalid form data: %w", err)
		}
		form.Controls = append(form.Controls, &Control{
			Name:  key,
			Kind:  KindHidden,
			Value: value,
		})
	}
	return form, nil
}
