package jsonform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Enctypes a file control may declare. Any other value disables inlining of
// the control's files.
const (
	EnctypeBase64      = "application/base64"
	EnctypeOctetStream = "application/octet-stream"
)

// DefaultChunkSize is the number of bytes read from a file at a time.
const DefaultChunkSize = 32 * 1024

func knownEnctype(enctype string) bool {
	return enctype == EnctypeBase64 || enctype == EnctypeOctetStream
}

// File is a file selected in a file control.
type File interface {
	Name() string
	Type() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// BytesFile is a [File] held in memory.
type BytesFile struct {
	FileName string
	MIMEType string
	Data     []byte
}

func (f *BytesFile) Name() string { return f.FileName }
func (f *BytesFile) Type() string { return f.MIMEType }
func (f *BytesFile) Size() int64  { return int64(len(f.Data)) }

func (f *BytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

// DiskFile is a [File] backed by a path on disk. Its size is taken when the
// file is selected, the way a browser snapshots a selection.
type DiskFile struct {
	path     string
	mimeType string
	size     int64
}

// NewDiskFile selects the file at path. The MIME type is guessed from the
// file extension.
func NewDiskFile(path string) (*DiskFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("jsonform: select %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("jsonform: select %s: is a directory", path)
	}
	return &DiskFile{
		path:     path,
		mimeType: mime.TypeByExtension(filepath.Ext(path)),
		size:     info.Size(),
	}, nil
}

func (f *DiskFile) Name() string { return filepath.Base(f.path) }
func (f *DiskFile) Type() string { return f.mimeType }
func (f *DiskFile) Size() int64  { return f.size }

func (f *DiskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// FileObject is the JSON form of an inlined file. Content is a base64 string
// for [EnctypeBase64] and a [ByteArray] for [EnctypeOctetStream].
type FileObject struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Size    int64       `json:"size"`
	Enctype string      `json:"enctype"`
	Content interface{} `json:"content"`
}

// ByteArray serialises as a JSON array of byte values instead of the base64
// string encoding/json uses for []byte.
type ByteArray []byte

// MarshalJSON implements [json.Marshaler].
func (b ByteArray) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 2+len(b)*4)
	buf = append(buf, '[')
	for i, c := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(c), 10)
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var values []uint8
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("jsonform: byte array: %w", err)
	}
	*b = ByteArray(values)
	return nil
}

// FileReadError reports a file whose content could not be read.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("jsonform: read file %q: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// EncodeFile reads f and returns its JSON form using the given enctype.
func EncodeFile(ctx context.Context, f File, enctype string) (*FileObject, error) {
	return encodeFile(ctx, f, enctype, DefaultChunkSize)
}

func encodeFile(ctx context.Context, f File, enctype string, chunkSize int) (*FileObject, error) {
	if !knownEnctype(enctype) {
		return nil, fmt.Errorf("jsonform: unsupported enctype %q", enctype)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	r, err := f.Open()
	if err != nil {
		return nil, &FileReadError{Name: f.Name(), Err: err}
	}
	defer r.Close()

	obj := &FileObject{
		Name:    f.Name(),
		Type:    f.Type(),
		Size:    f.Size(),
		Enctype: enctype,
	}

	switch enctype {
	case EnctypeBase64:
		var sb strings.Builder
		enc := base64.NewEncoder(base64.StdEncoding, &sb)
		if err := copyChunks(ctx, enc, r, chunkSize); err != nil {
			return nil, &FileReadError{Name: f.Name(), Err: err}
		}
		// Close flushes the final partial block and its padding.
		if err := enc.Close(); err != nil {
			return nil, &FileReadError{Name: f.Name(), Err: err}
		}
		obj.Content = sb.String()
	default:
		var buf bytes.Buffer
		if err := copyChunks(ctx, &buf, r, chunkSize); err != nil {
			return nil, &FileReadError{Name: f.Name(), Err: err}
		}
		obj.Content = ByteArray(buf.Bytes())
	}
	return obj, nil
}

// copyChunks copies r to w chunkSize bytes at a time, checking ctx between
// chunks.
func copyChunks(ctx context.Context, w io.Writer, r io.Reader, chunkSize int) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
