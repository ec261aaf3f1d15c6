// Package watch keeps the index of a watched container in sync with its driver.
package watch

import (
	"context"
	"time"

	"github.com/csweichel/assetidx/pkg/driver"
	"github.com/csweichel/assetidx/pkg/index"
	"github.com/csweichel/assetidx/pkg/meta"
	log "github.com/sirupsen/logrus"
)

// Poller periodically compares a driver's listing with an index and applies
// the difference.
type Poller struct {
	Index    *index.Index
	Driver   driver.Driver
	Interval time.Duration
}

// Changes summarizes a single poll.
type Changes struct {
	Added   []string
	Removed []string
}

func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Tick polls once. The index is saved if anything changed.
func (p *Poller) Tick(ctx context.Context) (*Changes, error) {
	entries, err := p.Driver.ListContents(ctx, "/", true)
	if err != nil {
		return nil, err
	}
	current, err := p.Index.All(ctx)
	if err != nil {
		return nil, err
	}

	var (
		res  Changes
		seen = make(map[string]struct{}, len(entries))
	)
	for _, e := range entries {
		rec, err := meta.Normalize(e)
		if err != nil {
			return nil, err
		}
		seen[rec.Path] = struct{}{}

		if old, ok := current.Get(rec.Path); ok && !changed(old, rec) {
			continue
		}
		res.Added = append(res.Added, rec.Path)
	}
	for _, path := range current.Paths() {
		if _, ok := seen[path]; !ok {
			res.Removed = append(res.Removed, path)
		}
	}

	for _, path := range res.Added {
		err = p.Index.Add(ctx, path)
		if err != nil {
			return nil, err
		}
	}
	for _, path := range res.Removed {
		err = p.Index.Forget(ctx, path)
		if err != nil {
			return nil, err
		}
	}
	if res.Empty() {
		return &res, nil
	}

	err = p.Index.Save(ctx)
	if err != nil {
		return nil, err
	}
	log.WithField("added", len(res.Added)).WithField("removed", len(res.Removed)).Info("index updated")
	return &res, nil
}

// Run polls until ctx is done. Failed polls are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.Interval)
	defer t.Stop()

	for {
		_, err := p.Tick(ctx)
		if err != nil {
			log.WithError(err).Warn("cannot poll container")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func changed(a, b meta.Record) bool {
	if a.Type != b.Type || a.Timestamp != b.Timestamp {
		return true
	}
	if a.Size == nil || b.Size == nil {
		return a.Size != b.Size
	}
	return *a.Size != *b.Size
}
