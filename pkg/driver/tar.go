package driver

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/csweichel/assetidx/pkg/meta"
	badger "github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
)

// OpenTarIndex opens a tar driver from a header index produced by ProduceIndexFromTar.
func OpenTarIndex(index string) (*Tar, error) {
	db, err := badger.Open(badger.DefaultOptions(index).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return NewTar(db), nil
}

// GenerateTarIndex writes the header index of the tar stream in into a new
// badger database at dst and opens a tar driver on it.
func GenerateTarIndex(dst string, in io.Reader) (*Tar, error) {
	db, err := badger.Open(badger.DefaultOptions(dst).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	err = ProduceIndexFromTar(db, in)
	if err != nil {
		db.Close()
		return nil, err
	}
	return NewTar(db), nil
}

// NewTar produces a tar driver on top of an existing header index.
func NewTar(db *badger.DB) *Tar {
	return &Tar{Index: db}
}

var _ Driver = (*Tar)(nil)

// Tar serves the contents of a tar archive from an index of its headers.
type Tar struct {
	Index *badger.DB
}

type indexEntry struct {
	TarHeader *tar.Header
}

func (e indexEntry) toEntry() *entry {
	hdr := e.TarHeader
	if hdr.Typeflag == tar.TypeDir {
		return &entry{Typ: "dir", Pth: hdr.Name, Mtime: hdr.ModTime.Unix()}
	}
	return &entry{Typ: "file", Pth: hdr.Name, Mtime: hdr.ModTime.Unix(), Sze: hdr.Size}
}

func (t *Tar) scan(ctx context.Context, prefix []byte, include func(path string) bool) ([]meta.RawEntry, error) {
	var res []meta.RawEntry

	err := t.Index.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			if !include(string(item.Key())) {
				continue
			}

			var e indexEntry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return err
			}
			res = append(res, e.toEntry())
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (t *Tar) get(p string) (*indexEntry, error) {
	p = cleanPath(p)
	if p == "" {
		return &indexEntry{TarHeader: &tar.Header{Typeflag: tar.TypeDir}}, nil
	}

	var res *indexEntry
	err := t.Index.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(p))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			res = &indexEntry{}
			return json.Unmarshal(val, res)
		})
	})
	return res, err
}

// ListContents implements Driver
func (t *Tar) ListContents(ctx context.Context, dir string, recursive bool) ([]meta.RawEntry, error) {
	dir = cleanPath(dir)

	var prefix []byte
	if dir != "" {
		prefix = []byte(dir + "/")
	}
	return t.scan(ctx, prefix, func(p string) bool {
		return isChild(dir, p, recursive)
	})
}

// DirectoryExists implements meta.Stater
func (t *Tar) DirectoryExists(ctx context.Context, p string) (bool, error) {
	e, err := t.get(p)
	if err != nil || e == nil {
		return false, err
	}
	return e.TarHeader.Typeflag == tar.TypeDir, nil
}

// Has implements meta.Stater
func (t *Tar) Has(ctx context.Context, p string) (bool, error) {
	e, err := t.get(p)
	return e != nil, err
}

// LastModified implements meta.Stater
func (t *Tar) LastModified(ctx context.Context, p string) (int64, error) {
	e, err := t.get(p)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, fmt.Errorf("%s: not found", p)
	}
	return e.TarHeader.ModTime.Unix(), nil
}

// FileSize implements meta.Stater
func (t *Tar) FileSize(ctx context.Context, p string) (int64, error) {
	e, err := t.get(p)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, fmt.Errorf("%s: not found", p)
	}
	return e.TarHeader.Size, nil
}

func (t *Tar) Close() error {
	return t.Index.Close()
}

// ProduceIndexFromTar reads all headers of a tar archive into db. Parent
// directories the archive does not list explicitly are added. If in is an
// io.Seeker file contents are skipped rather than read.
func ProduceIndexFromTar(db *badger.DB, in io.Reader) error {
	t0 := time.Now()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	var (
		seen = make(map[string]struct{})
		put  = func(hdr *tar.Header) error {
			hdrJson, err := json.Marshal(indexEntry{TarHeader: hdr})
			if err != nil {
				return err
			}
			seen[hdr.Name] = struct{}{}
			log.WithField("name", hdr.Name).Debug("added entry to index")
			return wb.Set([]byte(hdr.Name), hdrJson)
		}
	)

	tarf := tar.NewReader(in)
	for {
		hdr, err := tarf.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("cannot read tar header: %w", err)
		}

		hdr.Name = strings.TrimPrefix(hdr.Name, "./")
		hdr.Name = strings.TrimSuffix(hdr.Name, "/")
		if hdr.Name == "" || hdr.Name == "." {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir, tar.TypeReg, tar.TypeRegA:
		default:
			log.WithField("name", hdr.Name).WithField("type", hdr.Typeflag).Debug("skipping unsupported tar entry")
			continue
		}

		err = put(hdr)
		if err != nil {
			return err
		}

		for dir := path.Dir(hdr.Name); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if _, ok := seen[dir]; ok {
				break
			}
			err = put(&tar.Header{Typeflag: tar.TypeDir, Name: dir, ModTime: hdr.ModTime, Mode: 0755})
			if err != nil {
				return err
			}
		}
	}

	err := wb.Flush()
	if err != nil {
		return err
	}
	log.WithField("entries", len(seen)).WithField("duration", time.Since(t0)).Debug("produced tar index")
	return nil
}
