package resolve

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheSharesInFlightFetch(t *testing.T) {
	c := NewCache[string, int]()
	release := make(chan struct{})
	var calls atomic.Int32

	const callers = 50
	var wg sync.WaitGroup
	results := make([]int, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Error(err)
			}
			results[i] = v
		}()
	}
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fetch ran %d times, want 1", n)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("caller %d got %d", i, v)
		}
	}
}

func TestCacheRemembersFailures(t *testing.T) {
	c := NewCache[string, int]()
	boom := errors.New("boom")
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return 0, boom
	}

	for range 3 {
		if _, err := c.GetOrFetch(context.Background(), "k", fetch); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("failing fetch ran %d times, want 1", calls)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCacheKeysDoNotCollide(t *testing.T) {
	type key struct{ a, b string }
	c := NewCache[key, string]()
	get := func(k key) string {
		v, _ := c.GetOrFetch(context.Background(), k, func(context.Context) (string, error) {
			return k.a + "|" + k.b, nil
		})
		return v
	}
	if got := get(key{"a:b", "c"}); got != "a:b|c" {
		t.Errorf("got %q", got)
	}
	if got := get(key{"a", "b:c"}); got != "a|b:c" {
		t.Errorf("got %q", got)
	}
}
