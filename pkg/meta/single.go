package meta

import (
	"context"
	"fmt"
)

// Stater answers single-path metadata questions.
type Stater interface {
	DirectoryExists(ctx context.Context, path string) (bool, error)
	Has(ctx context.Context, path string) (bool, error)
	LastModified(ctx context.Context, path string) (int64, error)
	FileSize(ctx context.Context, path string) (int64, error)
}

// NormalizeSingle looks up the metadata of a single path. If the path does
// not exist ok is false and err is nil.
func NormalizeSingle(ctx context.Context, s Stater, p string) (res Record, ok bool, err error) {
	kind := KindDir
	isDir, err := s.DirectoryExists(ctx, p)
	if err != nil {
		return Record{}, false, fmt.Errorf("cannot check directory %s: %w", p, err)
	}
	if !isDir {
		exists, err := s.Has(ctx, p)
		if err != nil {
			return Record{}, false, fmt.Errorf("cannot check %s: %w", p, err)
		}
		if !exists {
			return Record{}, false, nil
		}
		kind = KindFile
	}

	mtime, err := s.LastModified(ctx, p)
	if err != nil {
		return Record{}, false, fmt.Errorf("cannot get mtime of %s: %w", p, err)
	}

	res = newRecord(kind, p, mtime)
	if kind == KindFile {
		sze, err := s.FileSize(ctx, p)
		if err != nil {
			return Record{}, false, fmt.Errorf("cannot get size of %s: %w", p, err)
		}
		res.Size = &sze
	}
	return res, true, nil
}
