// Command bench drives a synthetic session workload against a session.Store
// and exposes optional pprof and Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	pmet "github.com/IvanBrykalov/memstore/metrics/prom"
	"github.com/IvanBrykalov/memstore/session"
)

func main() {
	// ---- Flags ----
	var (
		capacity    = flag.Int64("max", 100_000, "store capacity (sessions)")
		maxAge      = flag.Duration("maxage", 30*time.Second, "cookie maxAge of written sessions")
		checkPeriod = flag.Duration("check", time.Second, "sweep period (0 = lazy expiry only)")
		secret      = flag.String("secret", "", "encrypt stored sessions with this secret")
		verbose     = flag.Bool("v", false, "log every store operation (slow)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 70, "read percentage [0..100]")
		touchPct = flag.Int("touches", 20, "touch percentage [0..100-reads]")

		keys    = flag.Int("keys", 1_000_000, "session id space")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload sessions (0 = max/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	if *readPct+*touchPct > 100 {
		log.Fatalf("reads+touches must not exceed 100 (got %d)", *readPct+*touchPct)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "memstore", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build store ----
	opt := session.Options{
		Max:         *capacity,
		CheckPeriod: *checkPeriod,
		Secret:      *secret,
		Metrics:     metrics,
	}
	if *verbose {
		opt.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	store, err := session.New(opt)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	newSession := func(n int) *session.Session {
		return &session.Session{
			Cookie: session.Cookie{MaxAge: session.MaxAge(*maxAge), Path: "/", HTTPOnly: true},
			Values: map[string]any{"user": "u" + strconv.Itoa(n), "visits": float64(n % 100)},
		}
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = int(*capacity / 2)
	}
	for i := 0; i < pl; i++ {
		if err := store.Set("sid:"+strconv.Itoa(i), newSession(i)); err != nil {
			log.Fatal(err)
		}
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal, touchPctVal := *readPct, *touchPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, touches, hits, misses, total atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one RNG and Zipf per worker.
			r := rand.New(rand.NewSource(seedBase + int64(w)*9973))
			zipf := rand.NewZipf(r, *zipfS, *zipfV, keysMax)

			for ctx.Err() == nil {
				total.Add(1)
				n := int(zipf.Uint64())
				sid := "sid:" + strconv.Itoa(n)

				switch p := int(r.Int31n(100)); {
				case p < readPctVal:
					reads.Add(1)
					sess, err := store.Get(sid)
					if err != nil {
						return err
					}
					if sess != nil {
						hits.Add(1)
					} else {
						misses.Add(1)
					}
				case p < readPctVal+touchPctVal:
					touches.Add(1)
					if err := store.Touch(sid, newSession(n)); err != nil {
						return err
					}
				default:
					writes.Add(1)
					if err := store.Set(sid, newSession(n)); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	readsN := reads.Load()
	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hits.Load()) / float64(readsN) * 100
	}
	n, _ := store.Len()

	fmt.Printf("max=%d maxage=%v check=%v encrypted=%t workers=%d keys=%d dur=%v seed=%d\n",
		*capacity, *maxAge, *checkPeriod, *secret != "", workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  touches=%d  writes=%d\n",
		total.Load(), float64(total.Load())/elapsed.Seconds(), readsN, touches.Load(), writes.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hits.Load(), misses.Load(), hitRate)
	fmt.Printf("Len()=%d\n", n)
}
