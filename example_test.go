package fetchcache_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fetchcache/fetchcache"
)

func ExampleCache_Get() {
	c := fetchcache.New(fetchcache.Config[string]{
		DefaultTTL: time.Minute,
		Fetcher: func(ctx context.Context, key string, params any, c *fetchcache.Cache[string]) (string, error) {
			// stands in for a database query or HTTP call
			return strings.ToUpper(key), nil
		},
	})

	val, err := c.Get(context.Background(), "hello", nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(val)
	// Output: HELLO
}

func ExampleCache_Get_perCallOptions() {
	c := fetchcache.New(fetchcache.Config[string]{})

	val, err := c.Get(context.Background(), "user:42", &fetchcache.GetOptions[string]{
		TTL:    fetchcache.NoExpire,
		Params: "with-posts",
		Fetcher: func(ctx context.Context, key string, params any, c *fetchcache.Cache[string]) (string, error) {
			return fmt.Sprintf("%s (%v)", key, params), nil
		},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(val)
	// Output: user:42 (with-posts)
}

func ExampleCache_Invalidate() {
	calls := 0

	c := fetchcache.New(fetchcache.Config[int]{
		Fetcher: func(ctx context.Context, key string, params any, c *fetchcache.Cache[int]) (int, error) {
			calls++
			return calls, nil
		},
	})

	first, _ := c.Get(context.Background(), "counter", nil)
	cached, _ := c.Get(context.Background(), "counter", nil)

	c.Invalidate("counter")

	refetched, _ := c.Get(context.Background(), "counter", nil)

	fmt.Println(first, cached, refetched)
	// Output: 1 1 2
}
