package jsonform_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tomasbasham/jsonform"
)

func TestMarshal(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		controls []*jsonform.Control
		want     string
	}{
		"empty form": {
			want: `{}`,
		},
		"text input": {
			controls: []*jsonform.Control{text("name", "john")},
			want:     `{"name":"john"}`,
		},
		"empty text inputs are kept": {
			controls: []*jsonform.Control{
				text("a", ""),
				{Name: "b", Kind: jsonform.KindTextarea},
				{Name: "c", Kind: jsonform.KindEmail},
				{Name: "d", Kind: jsonform.KindPassword},
				{Name: "e", Kind: jsonform.KindSearch},
				{Name: "f", Kind: jsonform.KindTel},
				{Name: "g", Kind: jsonform.KindURL},
				{Name: "h", Kind: jsonform.KindHidden},
			},
			want: `{"a":"","b":"","c":"","d":"","e":"","f":"","g":"","h":""}`,
		},
		"number input": {
			controls: []*jsonform.Control{number("age", "42"), number("ratio", " 0.5 ")},
			want:     `{"age":42,"ratio":0.5}`,
		},
		"empty number input is null": {
			controls: []*jsonform.Control{number("age", ""), number("blank", "   ")},
			want:     `{"age":null,"blank":null}`,
		},
		"invalid number input is null": {
			controls: []*jsonform.Control{number("age", "forty")},
			want:     `{"age":null}`,
		},
		"checkboxes": {
			controls: []*jsonform.Control{checkbox("subscribe", false), checkbox("agree", true)},
			want:     `{"agree":true}`,
		},
		"radio buttons": {
			controls: []*jsonform.Control{
				{Name: "size", Kind: jsonform.KindRadio, Value: "s"},
				{Name: "size", Kind: jsonform.KindRadio, Value: "m", Checked: true},
				{Name: "size", Kind: jsonform.KindRadio, Value: "l"},
			},
			want: `{"size":"m"}`,
		},
		"unchecked radio buttons": {
			controls: []*jsonform.Control{{Name: "size", Kind: jsonform.KindRadio, Value: "s"}},
			want:     `{}`,
		},
		"select": {
			controls: []*jsonform.Control{{
				Name: "country",
				Kind: jsonform.KindSelect,
				Options: []jsonform.SelectOption{
					{Value: ""},
					{Value: "nz", Selected: true},
				},
			}},
			want: `{"country":"nz"}`,
		},
		"select with blank selection": {
			controls: []*jsonform.Control{{
				Name:    "country",
				Kind:    jsonform.KindSelect,
				Options: []jsonform.SelectOption{{Value: " ", Selected: true}, {Value: "nz"}},
			}},
			want: `{}`,
		},
		"multiple select": {
			controls: []*jsonform.Control{{
				Name: "colors",
				Kind: jsonform.KindSelectMultiple,
				Options: []jsonform.SelectOption{
					{Value: "red", Selected: true},
					{Value: "green"},
					{Value: "", Selected: true},
					{Value: "blue", Selected: true},
				},
			}},
			want: `{"colors":["red","blue"]}`,
		},
		"multiple select name is not parsed": {
			controls: []*jsonform.Control{{
				Name:    "colors[]",
				Kind:    jsonform.KindSelectMultiple,
				Options: []jsonform.SelectOption{{Value: "red", Selected: true}},
			}},
			want: `{"colors[]":["red"]}`,
		},
		"multiple select without selection": {
			controls: []*jsonform.Control{{
				Name:    "colors",
				Kind:    jsonform.KindSelectMultiple,
				Options: []jsonform.SelectOption{{Value: "red"}, {Value: "", Selected: true}},
			}},
			want: `{}`,
		},
		"disabled controls": {
			controls: []*jsonform.Control{
				{Name: "a", Kind: jsonform.KindText, Value: "x", Disabled: true},
				{Name: "b", Kind: jsonform.KindText, Value: "y", FieldsetDisabled: true},
				text("c", "z"),
			},
			want: `{"c":"z"}`,
		},
		"nameless controls": {
			controls: []*jsonform.Control{text("", "x"), checkbox("", true)},
			want:     `{}`,
		},
		"non-submittable controls": {
			controls: []*jsonform.Control{{Name: "meter", Kind: jsonform.KindOther, Value: "3"}},
			want:     `{}`,
		},
		"duplicate names": {
			controls: []*jsonform.Control{text("tag", "a"), text("tag", "b")},
			want:     `{"tag":["a","b"]}`,
		},
		"duplicate names of different kinds": {
			controls: []*jsonform.Control{text("v", "a"), number("v", "1"), checkbox("v", true)},
			want:     `{"v":["a",1,true]}`,
		},
		"nested fields": {
			controls: []*jsonform.Control{
				text("user[name]", "jane"),
				number("user[age]", "30"),
				text("user[address][city]", "Wellington"),
			},
			want: `{"user":{"name":"jane","age":30,"address":{"city":"Wellington"}}}`,
		},
		"array fields": {
			controls: []*jsonform.Control{text("tags[]", "x"), text("tags[]", "y")},
			want:     `{"tags":["x","y"]}`,
		},
		"sparse array fields": {
			controls: []*jsonform.Control{text("a[0]", "x"), text("a[2]", "y")},
			want:     `{"a":["x",null,"y"]}`,
		},
		"malformed name": {
			controls: []*jsonform.Control{text("err[bad", "v")},
			want:     `{"err[bad":"v"}`,
		},
		"file without enctype is skipped": {
			controls: []*jsonform.Control{fileControl("doc", "", bytesFile("a.txt", []byte("a")))},
			want:     `{}`,
		},
		"file with unknown enctype is skipped": {
			controls: []*jsonform.Control{fileControl("doc", "text/plain", bytesFile("a.txt", []byte("a")))},
			want:     `{}`,
		},
		"file control without files is skipped": {
			controls: []*jsonform.Control{fileControl("doc", jsonform.EnctypeBase64)},
			want:     `{}`,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := jsonform.Marshal(context.Background(), jsonForm(tt.controls...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_Files(t *testing.T) {
	t.Parallel()

	content := []byte{0, 1, 2}
	tests := map[string]struct {
		control *jsonform.Control
		want    interface{}
	}{
		"base64": {
			control: fileControl("doc", jsonform.EnctypeBase64, bytesFile("a.bin", content)),
			want: map[string]interface{}{
				"doc": map[string]interface{}{
					"name":    "a.bin",
					"type":    "application/octet-stream",
					"size":    3.0,
					"enctype": "application/base64",
					"content": base64.StdEncoding.EncodeToString(content),
				},
			},
		},
		"octet stream": {
			control: fileControl("doc", jsonform.EnctypeOctetStream, bytesFile("a.bin", content)),
			want: map[string]interface{}{
				"doc": map[string]interface{}{
					"name":    "a.bin",
					"type":    "application/octet-stream",
					"size":    3.0,
					"enctype": "application/octet-stream",
					"content": []interface{}{0.0, 1.0, 2.0},
				},
			},
		},
		"single control uses first file only": {
			control: fileControl("doc", jsonform.EnctypeBase64,
				bytesFile("a.txt", []byte("a")),
				bytesFile("b.txt", []byte("b")),
			),
			want: map[string]interface{}{
				"doc": map[string]interface{}{
					"name":    "a.txt",
					"type":    "application/octet-stream",
					"size":    1.0,
					"enctype": "application/base64",
					"content": "YQ==",
				},
			},
		},
		"multiple control keeps file order": {
			control: &jsonform.Control{
				Name:     "docs",
				Kind:     jsonform.KindFile,
				Enctype:  jsonform.EnctypeBase64,
				Multiple: true,
				Files: []jsonform.File{
					bytesFile("a.txt", []byte("a")),
					bytesFile("b.txt", []byte("bb")),
				},
			},
			want: map[string]interface{}{
				"docs": []interface{}{
					map[string]interface{}{
						"name":    "a.txt",
						"type":    "application/octet-stream",
						"size":    1.0,
						"enctype": "application/base64",
						"content": "YQ==",
					},
					map[string]interface{}{
						"name":    "b.txt",
						"type":    "application/octet-stream",
						"size":    2.0,
						"enctype": "application/base64",
						"content": "YmI=",
					},
				},
			},
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			body, err := jsonform.Marshal(context.Background(), jsonForm(tt.control))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, decode(t, body)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_FilesKeepDocumentOrder(t *testing.T) {
	t.Parallel()

	form := jsonForm(
		text("title", "report"),
		fileControl("files[]", jsonform.EnctypeBase64, bytesFile("1.txt", []byte("1"))),
		text("files[]", "between"),
		fileControl("files[]", jsonform.EnctypeBase64, bytesFile("2.txt", []byte("2"))),
	)
	// A single reader forces reads to complete strictly one after another.
	b := jsonform.NewBuilder(jsonform.WithMaxConcurrentReads(1), jsonform.WithChunkSize(1))

	root, err := b.Build(context.Background(), form)
	if err != nil {
		t.Fatal(err)
	}
	files, ok := root.Get("files")
	if !ok || files.Len() != 3 {
		t.Fatalf("files = %v", files)
	}
	first, _ := files.Index(0)
	middle, _ := files.Index(1)
	last, _ := files.Index(2)
	if f := first.Value().(*jsonform.FileObject); f.Name != "1.txt" {
		t.Errorf("files[0] = %s, want 1.txt", f.Name)
	}
	if middle.Value() != "between" {
		t.Errorf("files[1] = %v, want between", middle.Value())
	}
	if f := last.Value().(*jsonform.FileObject); f.Name != "2.txt" {
		t.Errorf("files[2] = %s, want 2.txt", f.Name)
	}
}

func TestBuild_FileReadFailure(t *testing.T) {
	t.Parallel()

	form := jsonForm(
		text("name", "x"),
		fileControl("doc", jsonform.EnctypeBase64, brokenFile{}),
	)
	root, err := jsonform.NewBuilder().Build(context.Background(), form)
	if root != nil {
		t.Errorf("expected no document, got %v", root.Interface())
	}

	var readErr *jsonform.FileReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *FileReadError, got %v", err)
	}
	if !errors.Is(err, errUnreadable) {
		t.Errorf("expected error to wrap errUnreadable, got %v", err)
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	form := jsonForm(fileControl("doc", jsonform.EnctypeBase64, bytesFile("a.txt", []byte("a"))))
	if _, err := jsonform.NewBuilder().Build(ctx, form); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuild_LogsShapeConflicts(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	b := jsonform.NewBuilder(jsonform.WithLogger(zap.New(core)))

	body, err := b.Marshal(context.Background(), jsonForm(
		text("a[]", "x"),
		text("a[b]", "y"),
		text("c", "z"),
	))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"a":["x"],"c":"z"}`, string(body)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	entries := logs.FilterMessage("field conflicts with an earlier field").All()
	if len(entries) != 1 {
		t.Fatalf("expected one conflict log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["name"]; got != "a[b]" {
		t.Errorf("logged name = %v, want a[b]", got)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("logged level = %v, want warn", entries[0].Level)
	}
}

func TestBuild_SkipsOversizedIndex(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	b := jsonform.NewBuilder(jsonform.WithLogger(zap.New(core)))

	body, err := b.Marshal(context.Background(), jsonForm(
		text("q[200000]", "x"),
		text("r[0][70000]", "y"),
		text("s", "z"),
	))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"s":"z"}`, string(body)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if n := logs.FilterMessage("field skipped").Len(); n != 2 {
		t.Errorf("expected two skipped fields, got %d", n)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	form := jsonForm(
		text("user[name]", "jane \"J\" <doe>"),
		number("user[age]", "30"),
		checkbox("user[admin]", true),
		text("user[tags][]", "a"),
		text("user[tags][]", "b"),
		text("rows[1][id]", "r1"),
		number("rows[1][score]", ""),
		text("matrix[0][]", "m"),
		text("unicode", "ünïcødé ✓"),
		fileControl("raw", jsonform.EnctypeOctetStream, bytesFile("r.bin", []byte{255, 0})),
	)

	root, err := jsonform.NewBuilder().Build(context.Background(), form)
	if err != nil {
		t.Fatal(err)
	}
	body, err := root.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	// The tree converted to plain values and pushed through the JSON codec
	// must equal the decoded body.
	plain, err := jsonMarshal(root.Interface())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(decode(t, plain), decode(t, body)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
