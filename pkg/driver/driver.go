// Package driver provides the storage drivers whose contents get indexed.
//
// All paths are relative and slash separated. "", "." and "/" name the root.
package driver

import (
	"context"
	"sort"
	"strings"

	"github.com/csweichel/assetidx/pkg/meta"
)

// Driver lists and stats the contents of a storage backend.
type Driver interface {
	meta.Stater

	// ListContents lists the entries below dir, sorted by path.
	ListContents(ctx context.Context, dir string, recursive bool) ([]meta.RawEntry, error)
}

func cleanPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func isChild(dir, p string, recursive bool) bool {
	if dir != "" {
		if !strings.HasPrefix(p, dir+"/") {
			return false
		}
		p = p[len(dir)+1:]
	}
	if p == "" {
		return false
	}
	return recursive || !strings.Contains(p, "/")
}

func sortEntries(es []meta.RawEntry) {
	sort.Slice(es, func(i, j int) bool { return es[i].Path() < es[j].Path() })
}

type entry struct {
	Typ   string
	Pth   string
	Mtime int64
	Sze   int64
}

var _ meta.RawEntry = (*entry)(nil)

func (e *entry) Type() string        { return e.Typ }
func (e *entry) Path() string        { return e.Pth }
func (e *entry) LastModified() int64 { return e.Mtime }
func (e *entry) FileSize() int64     { return e.Sze }
