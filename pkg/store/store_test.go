package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/csweichel/assetidx/pkg/store"
	"github.com/google/go-cmp/cmp"
)

func openStores(t *testing.T) map[string]store.Store {
	bdg, err := store.OpenBadger("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { bdg.Close() })

	mem, err := store.NewMemory(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mem.Close() })

	return map[string]store.Store{
		"badger": bdg,
		"memory": mem,
	}
}

func TestGetPut(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, "missing")
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatal("Get() reported a hit for a missing key")
			}

			err = s.Put(ctx, "key", []byte("value"), store.NoExpiry)
			if err != nil {
				t.Fatal(err)
			}
			act, ok, err := s.Get(ctx, "key")
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatal("Get() missed a stored key")
			}
			if diff := cmp.Diff("value", string(act)); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}

			err = s.Put(ctx, "key", []byte("other"), time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			act, _, _ = s.Get(ctx, "key")
			if diff := cmp.Diff("other", string(act)); diff != "" {
				t.Errorf("Get() after overwrite mismatch (-want +got):\n%s", diff)
			}

			err = s.Put(ctx, "short", []byte("short"), time.Second)
			if err != nil {
				t.Fatal(err)
			}
			err = s.Put(ctx, "forever", []byte("forever"), store.NoExpiry)
			if err != nil {
				t.Fatal(err)
			}
			time.Sleep(2100 * time.Millisecond)

			_, ok, err = s.Get(ctx, "short")
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Error("Get() returned an expired value")
			}
			act, ok, err = s.Get(ctx, "forever")
			if err != nil {
				t.Fatal(err)
			}
			if !ok || string(act) != "forever" {
				t.Errorf("value stored without expiry is gone: %q %v", act, ok)
			}
		})
	}
}

func TestRemember(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var calls int
			produce := func(ctx context.Context) ([]byte, error) {
				calls++
				return []byte("produced"), nil
			}

			for i := 0; i < 2; i++ {
				act, err := s.Remember(ctx, "remembered", store.NoExpiry, produce)
				if err != nil {
					t.Fatal(err)
				}
				if diff := cmp.Diff("produced", string(act)); diff != "" {
					t.Errorf("Remember() mismatch (-want +got):\n%s", diff)
				}
			}
			if calls != 1 {
				t.Errorf("producer called %d times, expected once", calls)
			}
		})
	}
}

func TestRememberFailureStoresNothing(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			errBoom := errors.New("boom")

			_, err := s.Remember(ctx, "failing", store.NoExpiry, func(ctx context.Context) ([]byte, error) {
				return nil, errBoom
			})
			if !errors.Is(err, errBoom) {
				t.Fatalf("Remember() returned %v, expected %v", err, errBoom)
			}

			_, ok, err := s.Get(ctx, "failing")
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Error("failed producer left a value behind")
			}
		})
	}
}
