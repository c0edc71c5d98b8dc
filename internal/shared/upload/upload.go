// Package upload describes files received from multipart forms before they
// are stored, plus the categories they are stored under.
package upload

import (
	"io"
	"mime/multipart"
	"strings"
)

// Status reports how a single file input arrived.
type Status int

const (
	// StatusNone means the input carried no file at all.
	StatusNone Status = iota
	// StatusReceived means the file arrived intact and can be opened.
	StatusReceived
	// StatusFailed means the client attempted a file but transport broke.
	StatusFailed
)

// String renders the status for logs.
func (s Status) String() string {
	switch s {
	case StatusReceived:
		return "received"
	case StatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// Opener yields the temporary artifact holding an uploaded file's bytes.
type Opener interface {
	Open() (io.ReadCloser, error)
}

// File is the transient descriptor of one submitted file input.
type File struct {
	Filename string
	Size     int64
	Status   Status
	Source   Opener
}

// None is the descriptor for an input that carried no file.
var None = File{Status: StatusNone}

// Attached reports whether the client attempted to send a file.
func (f File) Attached() bool {
	return f.Status != StatusNone
}

// Category is the destination directory under the upload root.
type Category string

const (
	CategoryProfiles Category = "profiles"
	CategoryPets     Category = "pets"
)

// RootDir is the first segment of every stored reference.
const RootDir = "uploads"

// StoredSeed recovers the name seed from a reference of the form
// "uploads/<category>/<seed>_<hex>.<ext>". ok is false for any other shape.
func StoredSeed(ref string, category Category) (seed string, ok bool) {
	name, ok := strings.CutPrefix(ref, RootDir+"/"+string(category)+"/")
	if !ok || strings.ContainsAny(name, "/\\") {
		return "", false
	}
	stem, ext, ok := strings.Cut(name, ".")
	if !ok || ext == "" || strings.Contains(ext, ".") {
		return "", false
	}
	i := strings.LastIndexByte(stem, '_')
	if i <= 0 || !isHex(stem[i+1:]) {
		return "", false
	}
	return stem[:i], true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

// FromHeader converts a multipart header into a descriptor. A nil header is
// treated as no file; a header whose temp artifact cannot be opened is
// reported as a transport failure.
func FromHeader(fh *multipart.FileHeader) File {
	if fh == nil || fh.Filename == "" {
		return None
	}
	f, err := fh.Open()
	if err != nil {
		return File{Filename: fh.Filename, Size: fh.Size, Status: StatusFailed}
	}
	_ = f.Close()
	return File{Filename: fh.Filename, Size: fh.Size, Status: StatusReceived, Source: headerOpener{fh}}
}

type headerOpener struct {
	fh *multipart.FileHeader
}

func (o headerOpener) Open() (io.ReadCloser, error) {
	return o.fh.Open()
}
