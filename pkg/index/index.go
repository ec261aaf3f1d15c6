// Package index caches the listing of an asset container and serves
// filtered views of it.
//
// An Index is not safe for concurrent use.
package index

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/csweichel/assetidx/pkg/container"
	"github.com/csweichel/assetidx/pkg/driver"
	"github.com/csweichel/assetidx/pkg/meta"
	"github.com/csweichel/assetidx/pkg/store"
	log "github.com/sirupsen/logrus"
)

const keyPrefix = "asset-list-contents-"

// Option configures an Index
type Option func(*Index)

// WithMetrics makes the index count its loads, mutations and saves.
func WithMetrics(m *Metrics) Option {
	return func(idx *Index) {
		idx.metrics = m
	}
}

// WithTTL sets how long a stored listing stays valid when the container is
// not watched. Defaults to store.NoExpiry.
func WithTTL(ttl time.Duration) Option {
	return func(idx *Index) {
		idx.ttl = ttl
	}
}

// New produces an index for the contents of c, read through d and cached in s.
func New(c container.Container, d driver.Driver, s store.Store, opts ...Option) *Index {
	res := &Index{
		container: c,
		driver:    d,
		store:     s,
		ttl:       store.NoExpiry,
	}
	for _, opt := range opts {
		opt(res)
	}
	res.invalidate()
	return res
}

// Index is the cached listing of a single container.
type Index struct {
	container container.Container
	driver    driver.Driver
	store     store.Store
	metrics   *Metrics
	ttl       time.Duration

	listing       *Listing
	filteredFiles map[string]*Listing
	filteredDirs  map[string]*Listing
}

// Key is the backing store key of the container's listing.
func (idx *Index) Key() string {
	return keyPrefix + idx.container.Handle()
}

// TTL is the expiry of stored listings. Watched containers are stored with
// store.NoExpiry: their listing is kept current through Add, Forget and Save.
func (idx *Index) TTL() time.Duration {
	if idx.container.WatcherEnabled() {
		return store.NoExpiry
	}
	return idx.ttl
}

func (idx *Index) logger() *log.Entry {
	return log.WithField("container", idx.container.Handle())
}

// All returns the complete listing, loading it from the backing store or,
// failing that, from the driver. Once loaded the listing is kept in memory.
func (idx *Index) All(ctx context.Context) (*Listing, error) {
	if idx.listing != nil {
		idx.metrics.load(idx.container.Handle(), "memory")
		return idx.listing, nil
	}

	var fromDriver bool
	data, err := idx.store.Remember(ctx, idx.Key(), idx.TTL(), func(ctx context.Context) ([]byte, error) {
		fromDriver = true
		l, err := idx.listContents(ctx)
		if err != nil {
			return nil, err
		}
		return encodeListing(l)
	})
	if err != nil {
		return nil, err
	}
	l, err := decodeListing(data)
	if err != nil {
		return nil, err
	}

	src := "store"
	if fromDriver {
		src = "driver"
	}
	idx.metrics.load(idx.container.Handle(), src)
	idx.logger().WithField("source", src).WithField("entries", l.Len()).Debug("loaded listing")

	idx.listing = l
	return l, nil
}

func (idx *Index) listContents(ctx context.Context) (*Listing, error) {
	t0 := time.Now()
	entries, err := idx.driver.ListContents(ctx, "/", true)
	if err != nil {
		return nil, fmt.Errorf("cannot list contents of %s: %w", idx.container.Handle(), err)
	}

	records := make([]meta.Record, 0, len(entries))
	for _, e := range entries {
		r, err := meta.Normalize(e)
		if err != nil {
			return nil, fmt.Errorf("cannot normalize %s: %w", e.Path(), err)
		}
		records = append(records, r)
	}
	idx.logger().WithField("entries", len(records)).WithField("duration", time.Since(t0)).Debug("listed container contents")

	return NewListing(records...), nil
}

// Cached returns the listing held by the backing store without loading it
// from the driver and without keeping it in memory.
func (idx *Index) Cached(ctx context.Context) (*Listing, bool, error) {
	data, ok, err := idx.store.Get(ctx, idx.Key())
	if err != nil || !ok {
		return nil, false, err
	}
	l, err := decodeListing(data)
	if err != nil {
		return nil, false, err
	}
	return l, true, nil
}

// Files returns all file records.
func (idx *Index) Files(ctx context.Context) (*Listing, error) {
	l, err := idx.All(ctx)
	if err != nil {
		return nil, err
	}
	return l.Filter(meta.Record.IsFile), nil
}

// Directories returns all directory records.
func (idx *Index) Directories(ctx context.Context) (*Listing, error) {
	l, err := idx.All(ctx)
	if err != nil {
		return nil, err
	}
	return l.Filter(meta.Record.IsDir), nil
}

// FilteredFilesIn returns the visible files in folder, or below it if recursive is true.
func (idx *Index) FilteredFilesIn(ctx context.Context, folder string, recursive bool) (*Listing, error) {
	folder = meta.CleanPath(folder)
	key := filterKey(folder, recursive)
	if res, ok := idx.filteredFiles[key]; ok {
		return res, nil
	}

	files, err := idx.Files(ctx)
	if err != nil {
		return nil, err
	}
	res := files.Filter(func(r meta.Record) bool {
		return inFolder(r, folder, recursive) && !hiddenFile(r.Path)
	})

	idx.filteredFiles[key] = res
	return res, nil
}

// FilteredDirectoriesIn returns the visible directories in folder, or below it if recursive is true.
func (idx *Index) FilteredDirectoriesIn(ctx context.Context, folder string, recursive bool) (*Listing, error) {
	folder = meta.CleanPath(folder)
	key := filterKey(folder, recursive)
	if res, ok := idx.filteredDirs[key]; ok {
		return res, nil
	}

	dirs, err := idx.Directories(ctx)
	if err != nil {
		return nil, err
	}
	res := dirs.Filter(func(r meta.Record) bool {
		return inFolder(r, folder, recursive) && !hiddenDir(r)
	})

	idx.filteredDirs[key] = res
	return res, nil
}

// Add looks up p and its parent directories through the driver and puts them
// into the listing. p may be given with or without a leading slash. Paths that
// do not exist are ignored. Add does not persist the listing, call Save for that.
func (idx *Index) Add(ctx context.Context, p string) error {
	p = meta.CleanPath(p)
	if p == "/" {
		return nil
	}

	rec, ok, err := meta.NormalizeSingle(ctx, idx.driver, p)
	if err != nil {
		return err
	}
	if !ok {
		idx.logger().WithField("path", p).Debug("not adding missing path")
		return nil
	}

	if dir := path.Dir(p); dir != "/" {
		err = idx.Add(ctx, dir)
		if err != nil {
			return err
		}
	}

	l, err := idx.All(ctx)
	if err != nil {
		return err
	}
	l.Put(rec)
	idx.invalidate()

	idx.metrics.mutation(idx.container.Handle(), "add")
	idx.logger().WithField("path", p).Debug("added path")
	return nil
}

// Forget removes p from the listing. Like Add it does not persist the listing.
func (idx *Index) Forget(ctx context.Context, p string) error {
	p = meta.CleanPath(p)
	l, err := idx.All(ctx)
	if err != nil {
		return err
	}
	if l.Delete(p) {
		idx.metrics.mutation(idx.container.Handle(), "forget")
		idx.logger().WithField("path", p).Debug("forgot path")
	}
	idx.invalidate()
	return nil
}

// Save writes the listing to the backing store.
func (idx *Index) Save(ctx context.Context) error {
	l, err := idx.All(ctx)
	if err != nil {
		return err
	}
	data, err := encodeListing(l)
	if err != nil {
		return err
	}

	err = idx.store.Put(ctx, idx.Key(), data, idx.TTL())
	if err != nil {
		return fmt.Errorf("cannot save listing of %s: %w", idx.container.Handle(), err)
	}
	idx.metrics.save()
	idx.logger().WithField("entries", l.Len()).WithField("ttl", idx.TTL()).Debug("saved listing")
	return nil
}

func (idx *Index) invalidate() {
	idx.filteredFiles = make(map[string]*Listing)
	idx.filteredDirs = make(map[string]*Listing)
}
