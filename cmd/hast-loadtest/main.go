// Command hast-loadtest drives concurrent session traffic through hastauth
// clients and reports latency percentiles per phase.
//
// Without --base-url it runs against the in-process fake backend; without
// --redis-addr (or REDIS_ADDR) credentials live in miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hast-app/hastauth"
	"github.com/hast-app/hastauth/internal/hasttest"
	"github.com/hast-app/hastauth/session"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		clients     = flag.Int("clients", 8, "independent clients sharing one credential store")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 5000, "operations per phase")
		baseURL     = flag.String("base-url", "", "backend base url; empty starts the in-process fake")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "hast-loadtest", "credential key prefix")
		username    = flag.String("user", "gv001", "account to sign in with")
		password    = flag.String("password", "secret123", "password of --user")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	target := *baseURL
	if target == "" {
		backend := hasttest.New()
		defer backend.Close()
		target = backend.URL
		fmt.Printf("using in-process backend at %s\n", target)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := session.NewRedisStore(rdb, *prefix)

	pool := make([]*hastauth.Client, *clients)
	for i := range pool {
		cfg := hastauth.DefaultConfig()
		cfg.API.BaseURL = target
		c, err := hastauth.New().
			WithConfig(cfg).
			WithStore(store).
			WithMetricsEnabled(true).
			WithLatencyHistograms(true).
			Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build client: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()
		pool[i] = c
	}

	if res := pool[0].Login(ctx, *username, *password); !res.Success {
		fmt.Fprintf(os.Stderr, "initial login failed: %s\n", res.Error)
		os.Exit(1)
	}

	readStats := runPhase(*ops, *concurrency, func(i int) bool {
		c := pool[i%len(pool)]
		if i%2 == 0 {
			return c.GetProfile(ctx).Success
		}
		return c.GetMyAttendance(ctx).Success
	})
	loginStats := runPhase(*ops, *concurrency, func(i int) bool {
		return pool[i%len(pool)].Login(ctx, *username, *password).Success
	})

	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("login", loginStats)

	var cleared, network uint64
	for _, c := range pool {
		snap := c.MetricsSnapshot()
		cleared += snap.Counters[hastauth.MetricSessionCleared]
		network += snap.Counters[hastauth.MetricNetworkError]
	}
	fmt.Printf("session clears=%d network errors=%d\n", cleared, network)
}

// runPhase runs op ops times across concurrency workers. op reports
// whether the call succeeded.
func runPhase(ops, concurrency int, op func(i int) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				ok := op(i)
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
