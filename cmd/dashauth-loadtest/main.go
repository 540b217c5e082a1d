package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway/fake"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type viewer struct {
	client *dashauth.Client
}

func main() {
	var (
		viewers   = flag.Int("viewers", 200, "number of signed-in viewers")
		callers   = flag.Int("callers", 16, "concurrent callers per refresh burst")
		bursts    = flag.Int("bursts", 5, "refresh bursts per viewer")
		reads     = flag.Int("reads", 100000, "access-token reads in the read phase")
		workers   = flag.Int("workers", 64, "workers in the read phase")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix    = flag.String("prefix", "dashauth-load", "credential key prefix")
	)
	flag.Parse()

	if *viewers <= 0 || *callers <= 0 || *bursts <= 0 || *reads <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "viewers, callers, bursts, reads and workers must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

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
		addr = mr.Addr()
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	gw, err := fake.NewDev()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fake gateway: %v\n", err)
		os.Exit(1)
	}

	cfg := dashauth.DefaultConfig()
	cfg.Store.Backend = dashauth.StoreRedis
	cfg.Store.RedisAddr = addr
	cfg.Store.Prefix = *prefix
	cfg.Metrics.EnableLatencyHistograms = true

	accounts := fake.DevUsers()
	vs := make([]viewer, *viewers)
	fmt.Printf("signing in %d viewers...\n", *viewers)
	startLogin := time.Now()
	for i := range vs {
		store := credstore.NewRedisStore(rdb, fmt.Sprintf("%s:%d", *prefix, i), 0)
		client, err := dashauth.New().WithConfig(cfg).WithGateway(gw).WithStore(store).Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build client: %v\n", err)
			os.Exit(1)
		}
		acc := accounts[i%len(accounts)]
		if _, err := client.Login(ctx, dashauth.Credentials{Email: acc.Email, Password: acc.Password}); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		vs[i] = viewer{client: client}
	}
	defer func() {
		for _, v := range vs {
			v.client.Close()
		}
	}()
	fmt.Printf("signed in in %s\n", time.Since(startLogin).Round(time.Millisecond))

	refreshStats := runRefreshPhase(ctx, vs, *callers, *bursts)
	readStats := runReadPhase(ctx, vs, *reads, *workers)

	fmt.Println("---- results ----")
	printStats("refresh", refreshStats)
	printStats("access-token", readStats)

	var deduplicated uint64
	for _, v := range vs {
		deduplicated += v.client.Metrics().Value(dashauth.MetricRefreshDeduplicated)
	}
	refreshCalls := gw.Calls(fake.OpRefresh)
	fmt.Printf("gateway refreshes=%d callers=%d deduplicated=%d\n", refreshCalls, refreshStats.ops, deduplicated)
	if want := int64(*viewers * *bursts); refreshCalls != want {
		fmt.Printf("WARNING: expected %d gateway refreshes (one per burst), got %d\n", want, refreshCalls)
	}
}

// runRefreshPhase fires callers simultaneous EnsureFreshToken calls at every viewer, bursts
// times. Each burst must collapse into a single gateway refresh.
func runRefreshPhase(ctx context.Context, vs []viewer, callers, bursts int) phaseStats {
	var (
		wg        sync.WaitGroup
		failures  int64
		latencies = make([]time.Duration, 0, len(vs)*callers*bursts)
		mu        sync.Mutex
	)

	start := time.Now()
	for i := range vs {
		wg.Add(1)
		go func(v viewer) {
			defer wg.Done()
			for b := 0; b < bursts; b++ {
				var (
					gate  sync.WaitGroup
					burst sync.WaitGroup
				)
				gate.Add(1)
				for c := 0; c < callers; c++ {
					burst.Add(1)
					go func() {
						defer burst.Done()
						gate.Wait()
						t0 := time.Now()
						_, err := v.client.EnsureFreshToken(ctx)
						d := time.Since(t0)
						if err != nil {
							atomic.AddInt64(&failures, 1)
						}
						mu.Lock()
						latencies = append(latencies, d)
						mu.Unlock()
					}()
				}
				gate.Done()
				burst.Wait()
			}
		}(vs[i])
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runReadPhase(ctx context.Context, vs []viewer, ops, concurrency int) phaseStats {
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
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				v := vs[r.Intn(len(vs))]
				t0 := time.Now()
				_, err := v.client.AccessToken(ctx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
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
