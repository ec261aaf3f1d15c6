package index

import (
	"encoding/json"
	"sort"

	"github.com/csweichel/assetidx/pkg/meta"
)

// Listing maps paths to records and remembers the order in which they were added.
type Listing struct {
	paths   []string
	records map[string]meta.Record
}

// NewListing produces a listing of the given records in path order.
func NewListing(records ...meta.Record) *Listing {
	sorted := make([]meta.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	res := &Listing{records: make(map[string]meta.Record, len(sorted))}
	for _, r := range sorted {
		res.Put(r)
	}
	return res
}

func (l *Listing) Len() int {
	return len(l.paths)
}

func (l *Listing) Get(path string) (meta.Record, bool) {
	r, ok := l.records[path]
	return r, ok
}

// Put adds a record, or replaces the record with the same path in place.
func (l *Listing) Put(r meta.Record) {
	if l.records == nil {
		l.records = make(map[string]meta.Record)
	}
	if _, exists := l.records[r.Path]; !exists {
		l.paths = append(l.paths, r.Path)
	}
	l.records[r.Path] = r
}

// Delete removes path from the listing and reports whether it was present.
func (l *Listing) Delete(path string) bool {
	if _, exists := l.records[path]; !exists {
		return false
	}
	delete(l.records, path)
	for i, p := range l.paths {
		if p == path {
			l.paths = append(l.paths[:i], l.paths[i+1:]...)
			break
		}
	}
	return true
}

// Paths returns all paths in listing order.
func (l *Listing) Paths() []string {
	res := make([]string, len(l.paths))
	copy(res, l.paths)
	return res
}

// Records returns all records in listing order.
func (l *Listing) Records() []meta.Record {
	res := make([]meta.Record, 0, len(l.paths))
	for _, p := range l.paths {
		res = append(res, l.records[p])
	}
	return res
}

// Filter produces a new listing of the records for which keep returns true.
func (l *Listing) Filter(keep func(meta.Record) bool) *Listing {
	res := &Listing{records: make(map[string]meta.Record)}
	for _, p := range l.paths {
		if r := l.records[p]; keep(r) {
			res.paths = append(res.paths, p)
			res.records[p] = r
		}
	}
	return res
}

// MarshalJSON encodes the listing as an array of records in listing order.
func (l *Listing) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Records())
}

func (l *Listing) UnmarshalJSON(data []byte) error {
	var records []meta.Record
	err := json.Unmarshal(data, &records)
	if err != nil {
		return err
	}

	*l = Listing{records: make(map[string]meta.Record, len(records))}
	for _, r := range records {
		l.Put(r)
	}
	return nil
}
