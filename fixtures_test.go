package jsonform_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/tomasbasham/jsonform"
)

func text(name, value string) *jsonform.Control {
	return &jsonform.Control{Name: name, Kind: jsonform.KindText, Value: value}
}

func checkbox(name string, checked bool) *jsonform.Control {
	return &jsonform.Control{Name: name, Kind: jsonform.KindCheckbox, Value: "on", Checked: checked}
}

func number(name, value string) *jsonform.Control {
	return &jsonform.Control{Name: name, Kind: jsonform.KindNumber, Value: value}
}

func fileControl(name, enctype string, files ...jsonform.File) *jsonform.Control {
	return &jsonform.Control{Name: name, Kind: jsonform.KindFile, Enctype: enctype, Files: files}
}

func bytesFile(name string, data []byte) *jsonform.BytesFile {
	return &jsonform.BytesFile{FileName: name, MIMEType: "application/octet-stream", Data: data}
}

func jsonForm(controls ...*jsonform.Control) *jsonform.Form {
	return &jsonform.Form{Enctype: jsonform.FormEnctype, Controls: controls}
}

// sizedFile reports a size without holding any content.
type sizedFile struct {
	name string
	size int64
}

func (f sizedFile) Name() string { return f.name }
func (f sizedFile) Type() string { return "application/pdf" }
func (f sizedFile) Size() int64  { return f.size }

func (f sizedFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

// brokenFile cannot be opened.
type brokenFile struct{}

var errUnreadable = errors.New("file is unreadable")

func (brokenFile) Name() string { return "broken.bin" }
func (brokenFile) Type() string { return "" }
func (brokenFile) Size() int64  { return 1 }

func (brokenFile) Open() (io.ReadCloser, error) {
	return nil, errUnreadable
}

// decode parses a JSON body into plain Go values.
func decode(t *testing.T, body []byte) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("invalid JSON body %s: %v", body, err)
	}
	return v
}

func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
