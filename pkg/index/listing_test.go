package index

import (
	"testing"

	"github.com/csweichel/assetidx/pkg/meta"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestListingOrder(t *testing.T) {
	l := NewListing(
		meta.Record{Path: "b", Type: meta.KindDir},
		meta.Record{Path: "a.txt", Type: meta.KindFile},
		meta.Record{Path: "b/c.txt", Type: meta.KindFile},
	)
	l.Put(meta.Record{Path: "a", Type: meta.KindDir})
	l.Put(meta.Record{Path: "b", Type: meta.KindDir, Timestamp: 5})

	if diff := cmp.Diff([]string{"a.txt", "b", "b/c.txt", "a"}, l.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}
	if r, _ := l.Get("b"); r.Timestamp != 5 {
		t.Errorf("Put() did not overwrite b: %+v", r)
	}

	if !l.Delete("b") {
		t.Error("Delete(b) reported a missing path")
	}
	if l.Delete("b") {
		t.Error("second Delete(b) reported a present path")
	}
	if diff := cmp.Diff([]string{"a.txt", "b/c.txt", "a"}, l.Paths()); diff != "" {
		t.Errorf("Paths() after Delete() mismatch (-want +got):\n%s", diff)
	}
}

func TestListingCodec(t *testing.T) {
	sze := int64(12)
	l := NewListing(
		meta.Record{Type: meta.KindDir, Path: "img", Timestamp: 1, Basename: "img", Filename: "img"},
		meta.Record{Type: meta.KindFile, Path: "img/a.png", Timestamp: 2, Dirname: "img", Basename: "a.png", Filename: "a", Extension: "png", Size: &sze},
	)
	l.Put(meta.Record{Type: meta.KindFile, Path: "0.txt", Basename: "0.txt", Filename: "0", Extension: "txt", Size: &sze})

	data, err := encodeListing(l)
	if err != nil {
		t.Fatal(err)
	}
	act, err := decodeListing(data)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(l, act, cmp.AllowUnexported(Listing{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decodeListing() mismatch (-want +got):\n%s", diff)
	}

	_, err = decodeListing([]byte("not zstd"))
	if err == nil {
		t.Error("decodeListing() accepted garbage")
	}
}
