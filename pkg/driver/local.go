package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/csweichel/assetidx/pkg/meta"
	log "github.com/sirupsen/logrus"
)

// NewLocal produces a driver for a directory on disk.
func NewLocal(root string) (*Local, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: root, Err: errors.New("not a directory")}
	}
	return &Local{Root: root}, nil
}

var _ Driver = (*Local)(nil)

type Local struct {
	Root string
}

func (l *Local) abs(p string) string {
	return filepath.Join(l.Root, filepath.FromSlash(cleanPath(p)))
}

// stat does not follow symlinks. Symlinks are not listed and count as absent.
func (l *Local) stat(p string) (os.FileInfo, bool, error) {
	stat, err := os.Lstat(l.abs(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if stat.Mode()&fs.ModeSymlink != 0 {
		return nil, false, nil
	}
	return stat, true, nil
}

func (l *Local) mustStat(p string) (os.FileInfo, error) {
	stat, ok, err := l.stat(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: l.abs(p), Err: fs.ErrNotExist}
	}
	return stat, nil
}

// ListContents implements Driver
func (l *Local) ListContents(ctx context.Context, dir string, recursive bool) ([]meta.RawEntry, error) {
	dir = cleanPath(dir)
	base := l.abs(dir)

	t0 := time.Now()
	var (
		res []meta.RawEntry
		mu  sync.Mutex
	)
	add := func(p string, info fs.FileInfo) {
		e := &entry{Typ: "file", Pth: p, Mtime: info.ModTime().Unix(), Sze: info.Size()}
		if info.IsDir() {
			e.Typ, e.Sze = "dir", 0
		}
		mu.Lock()
		res = append(res, e)
		mu.Unlock()
	}

	if recursive {
		conf := fastwalk.Config{Follow: false}
		err := fastwalk.Walk(&conf, base, func(p string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(l.Root, p)
			if err != nil {
				return err
			}
			if rel == "." || p == base {
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}

			info, err := d.Info()
			if errors.Is(err, fs.ErrNotExist) {
				// removed while we were walking
				return nil
			}
			if err != nil {
				return err
			}
			add(filepath.ToSlash(rel), info)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		des, err := os.ReadDir(base)
		if err != nil {
			return nil, err
		}
		for _, d := range des {
			if d.Type()&fs.ModeSymlink != 0 {
				continue
			}
			info, err := d.Info()
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			add(joinPath(dir, d.Name()), info)
		}
	}

	sortEntries(res)
	log.WithField("root", l.Root).WithField("dir", dir).WithField("entries", len(res)).WithField("duration", time.Since(t0)).Debug("listed local contents")
	return res, nil
}

// DirectoryExists implements meta.Stater
func (l *Local) DirectoryExists(ctx context.Context, p string) (bool, error) {
	stat, ok, err := l.stat(p)
	if err != nil || !ok {
		return false, err
	}
	return stat.IsDir(), nil
}

// Has implements meta.Stater
func (l *Local) Has(ctx context.Context, p string) (bool, error) {
	_, ok, err := l.stat(p)
	return ok, err
}

// LastModified implements meta.Stater
func (l *Local) LastModified(ctx context.Context, p string) (int64, error) {
	stat, err := l.mustStat(p)
	if err != nil {
		return 0, err
	}
	return stat.ModTime().Unix(), nil
}

// FileSize implements meta.Stater
func (l *Local) FileSize(ctx context.Context, p string) (int64, error) {
	stat, err := l.mustStat(p)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
