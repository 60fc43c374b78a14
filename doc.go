// Package jsonform serialises HTML-style forms into JSON documents.
//
// Controls are read in document order and folded into a single tree using the
// bracket naming convention understood by most form libraries: a[b][c] nests
// objects, a[] appends to an array and a[3] writes a sparse array index. Two
// controls sharing a name collapse into an array of both values. File controls
// that declare an enctype of application/base64 or application/octet-stream
// are inlined into the document, and a [SizeGuard] bounds the aggregate size
// of files selected across a form.
package jsonform
