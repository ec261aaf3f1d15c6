package meta_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/csweichel/assetidx/pkg/meta"
	"github.com/google/go-cmp/cmp"
)

type accessorEntry struct {
	typ   string
	path  string
	mtime int64
	size  int64
}

func (e accessorEntry) Type() string        { return e.typ }
func (e accessorEntry) Path() string        { return e.path }
func (e accessorEntry) LastModified() int64 { return e.mtime }
func (e accessorEntry) FileSize() int64     { return e.size }

func size(n int64) *int64 { return &n }

func TestNormalize(t *testing.T) {
	type Expectation struct {
		Record meta.Record
		Err    string
	}
	tests := []struct {
		Name        string
		Entry       interface{}
		Expectation Expectation
	}{
		{
			Name:  "nested file",
			Entry: accessorEntry{typ: "file", path: "/a/b/c.txt", mtime: 1600000000, size: 12},
			Expectation: Expectation{
				Record: meta.Record{
					Type:      meta.KindFile,
					Path:      "/a/b/c.txt",
					Timestamp: 1600000000,
					Dirname:   "/a/b",
					Basename:  "c.txt",
					Filename:  "c",
					Extension: "txt",
					Size:      size(12),
				},
			},
		},
		{
			Name:  "root file",
			Entry: accessorEntry{typ: "file", path: "c.txt", mtime: 1, size: 0},
			Expectation: Expectation{
				Record: meta.Record{
					Type:      meta.KindFile,
					Path:      "/c.txt",
					Timestamp: 1,
					Dirname:   "",
					Basename:  "c.txt",
					Filename:  "c",
					Extension: "txt",
					Size:      size(0),
				},
			},
		},
		{
			Name:  "directory without extension",
			Entry: accessorEntry{typ: "dir", path: "foo/bar/", mtime: 5, size: 4096},
			Expectation: Expectation{
				Record: meta.Record{
					Type:      meta.KindDir,
					Path:      "/foo/bar",
					Timestamp: 5,
					Dirname:   "/foo",
					Basename:  "bar",
					Filename:  "bar",
				},
			},
		},
		{
			Name: "attribute map",
			Entry: map[string]interface{}{
				"type":      "file",
				"path":      "docs/.gitignore",
				"timestamp": json.Number("1700000000"),
				"size":      float64(42),
			},
			Expectation: Expectation{
				Record: meta.Record{
					Type:      meta.KindFile,
					Path:      "/docs/.gitignore",
					Timestamp: 1700000000,
					Dirname:   "/docs",
					Basename:  ".gitignore",
					Filename:  "",
					Extension: "gitignore",
					Size:      size(42),
				},
			},
		},
		{
			Name:  "attribute map directory",
			Entry: map[string]interface{}{"type": "directory", "path": "assets", "timestamp": 7},
			Expectation: Expectation{
				Record: meta.Record{
					Type:      meta.KindDir,
					Path:      "/assets",
					Timestamp: 7,
					Basename:  "assets",
					Filename:  "assets",
				},
			},
		},
		{
			Name:  "unknown type",
			Entry: accessorEntry{typ: "symlink", path: "foo"},
			Expectation: Expectation{
				Err: `unknown entry type: "symlink"`,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			e, err := meta.Adapt(test.Entry)
			if err != nil {
				t.Fatalf("cannot adapt entry: %v", err)
			}

			var act Expectation
			act.Record, err = meta.Normalize(e)
			if err != nil {
				act.Err = err.Error()
			}

			if diff := cmp.Diff(test.Expectation, act); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeShapesAgree(t *testing.T) {
	fromAccessor, err := meta.Normalize(accessorEntry{typ: "file", path: "img/logo.png", mtime: 99, size: 1024})
	if err != nil {
		t.Fatal(err)
	}
	fromMap, err := meta.Normalize(meta.Attributes{"type": "file", "path": "img/logo.png", "timestamp": int64(99), "size": 1024})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromAccessor, fromMap); diff != "" {
		t.Errorf("shape mismatch (-accessor +map):\n%s", diff)
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		Input    string
		Expected string
	}{
		{"", "/"},
		{".", "/"},
		{"/", "/"},
		{"a/b/c.txt", "/a/b/c.txt"},
		{"/a/b/c.txt", "/a/b/c.txt"},
		{"a/b/", "/a/b"},
		{"//a/./b", "/a/b"},
	}
	for _, test := range tests {
		if act := meta.CleanPath(test.Input); act != test.Expected {
			t.Errorf("CleanPath(%q) = %q, expected %q", test.Input, act, test.Expected)
		}
	}
}

func TestNormalizePathForms(t *testing.T) {
	rooted, err := meta.Normalize(accessorEntry{typ: "file", path: "/a/b/c.txt", mtime: 1, size: 2})
	if err != nil {
		t.Fatal(err)
	}
	relative, err := meta.Normalize(accessorEntry{typ: "file", path: "a/b/c.txt", mtime: 1, size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rooted, relative); diff != "" {
		t.Errorf("path form mismatch (-rooted +relative):\n%s", diff)
	}
}

func TestKindUnmarshalJSON(t *testing.T) {
	var act []meta.Kind
	err := json.Unmarshal([]byte(`["file","dir","directory","tree"]`), &act)
	if err != nil {
		t.Fatal(err)
	}
	exp := []meta.Kind{meta.KindFile, meta.KindDir, meta.KindDir, meta.KindDir}
	if diff := cmp.Diff(exp, act); diff != "" {
		t.Errorf("Kind.UnmarshalJSON() mismatch (-want +got):\n%s", diff)
	}

	var k meta.Kind
	if err := json.Unmarshal([]byte(`"symlink"`), &k); !errors.Is(err, meta.ErrUnknownType) {
		t.Errorf("Kind.UnmarshalJSON() returned %v, expected %v", err, meta.ErrUnknownType)
	}
}

func TestAdaptUnsupported(t *testing.T) {
	_, err := meta.Adapt(42)
	if err == nil {
		t.Fatal("expected error for unsupported entry")
	}
}

type fakeStater struct {
	dirs  map[string]int64
	files map[string][2]int64
	err   error
}

func (f *fakeStater) DirectoryExists(ctx context.Context, p string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.dirs[p]
	return ok, nil
}

func (f *fakeStater) Has(ctx context.Context, p string) (bool, error) {
	_, ok := f.files[p]
	return ok, nil
}

func (f *fakeStater) LastModified(ctx context.Context, p string) (int64, error) {
	if t, ok := f.dirs[p]; ok {
		return t, nil
	}
	return f.files[p][0], nil
}

func (f *fakeStater) FileSize(ctx context.Context, p string) (int64, error) {
	return f.files[p][1], nil
}

func TestNormalizeSingle(t *testing.T) {
	type Expectation struct {
		Record meta.Record
		OK     bool
		Err    bool
	}
	stater := &fakeStater{
		dirs:  map[string]int64{"a": 10},
		files: map[string][2]int64{"a/b.md": {20, 3}},
	}
	tests := []struct {
		Name        string
		Stater      meta.Stater
		Path        string
		Expectation Expectation
	}{
		{
			Name:   "directory",
			Stater: stater,
			Path:   "a",
			Expectation: Expectation{
				OK:     true,
				Record: meta.Record{Type: meta.KindDir, Path: "/a", Timestamp: 10, Basename: "a", Filename: "a"},
			},
		},
		{
			Name:   "file",
			Stater: stater,
			Path:   "a/b.md",
			Expectation: Expectation{
				OK: true,
				Record: meta.Record{
					Type:      meta.KindFile,
					Path:      "/a/b.md",
					Timestamp: 20,
					Dirname:   "/a",
					Basename:  "b.md",
					Filename:  "b",
					Extension: "md",
					Size:      size(3),
				},
			},
		},
		{
			Name:        "absent",
			Stater:      stater,
			Path:        "gone.txt",
			Expectation: Expectation{},
		},
		{
			Name:        "driver failure",
			Stater:      &fakeStater{err: errors.New("permission denied")},
			Path:        "a",
			Expectation: Expectation{Err: true},
		},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var (
				act Expectation
				err error
			)
			act.Record, act.OK, err = meta.NormalizeSingle(context.Background(), test.Stater, test.Path)
			act.Err = err != nil

			if diff := cmp.Diff(test.Expectation, act); diff != "" {
				t.Errorf("NormalizeSingle() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
