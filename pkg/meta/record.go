package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrUnknownType is returned when a raw entry carries a type discriminator
// that is neither a file nor a directory.
var ErrUnknownType = errors.New("unknown entry type")

// Kind discriminates files from directories.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "directory"
)

// ParseKind maps a driver's type discriminator onto a Kind.
func ParseKind(t string) (Kind, error) {
	switch strings.ToLower(t) {
	case "file", "blob":
		return KindFile, nil
	case "dir", "directory", "tree":
		return KindDir, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// UnmarshalJSON accepts every discriminator ParseKind does.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	*k, err = ParseKind(s)
	return err
}

// CleanPath returns the canonical form of a container path: rooted at "/",
// slash separated and without a trailing slash. "", "." and "/" all name
// the root "/".
func CleanPath(p string) string {
	return path.Clean("/" + p)
}

// Record is the canonical metadata of a single container entry.
type Record struct {
	Type      Kind   `json:"type"`
	Path      string `json:"path"` // in CleanPath form
	Timestamp int64  `json:"timestamp"`
	Dirname   string `json:"dirname"`
	Basename  string `json:"basename"`
	Filename  string `json:"filename"`
	Extension string `json:"extension,omitempty"`
	Size      *int64 `json:"size,omitempty"`
}

func (r Record) IsFile() bool {
	return r.Type == KindFile
}

func (r Record) IsDir() bool {
	return r.Type == KindDir
}

// Normalize converts a raw listing entry into a Record.
func Normalize(e RawEntry) (Record, error) {
	kind, err := ParseKind(e.Type())
	if err != nil {
		return Record{}, err
	}

	res := newRecord(kind, e.Path(), e.LastModified())
	if kind == KindFile {
		sze := e.FileSize()
		res.Size = &sze
	}
	return res, nil
}

func newRecord(kind Kind, p string, timestamp int64) Record {
	p = CleanPath(p)

	dir, base := path.Dir(p), path.Base(p)
	if dir == "/" {
		dir = ""
	}

	res := Record{
		Type:      kind,
		Path:      p,
		Timestamp: timestamp,
		Dirname:   dir,
		Basename:  base,
		Filename:  base,
	}
	if ext := path.Ext(base); ext != "" {
		res.Extension = ext[1:]
		res.Filename = strings.TrimSuffix(base, ext)
	}
	return res
}
