package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/facebookgo/flagenv"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uvensys/agentgate"
	"github.com/uvensys/agentgate/internal"
	"github.com/uvensys/agentgate/lib/gate"
	"github.com/uvensys/agentgate/lib/guard"

	// challenge implementations
	_ "github.com/uvensys/agentgate/lib/generator/builtin"
)

var (
	bind            = flag.String("bind", ":8923", "network address to bind HTTP to")
	metricsBind     = flag.String("metrics-bind", ":9090", "network address to bind metrics to, set to an empty string to disable")
	configFname     = flag.String("config", "", "full path to an agentgate config file, overrides the gate flags below")
	secret          = flag.String("secret", "", "secret used to sign challenge and access tokens")
	secretFile      = flag.String("secret-file", "", "file name containing the signing secret")
	difficulty      = flag.String("difficulty", agentgate.DefaultDifficulty, "difficulty tier of generated challenges (easy, medium, hard)")
	ttl             = flag.Duration("ttl", agentgate.DefaultTTL, "how long issued challenges stay solvable")
	types           = flag.String("types", "", "comma-separated allow-list of challenge types, empty means the whole difficulty tier")
	persistent      = flag.Bool("persistent", true, "if true, solved challenges earn a reusable access token")
	agentID         = flag.String("agent-id", "", "identity claim embedded in minted access tokens")
	dynamicProvider = flag.String("dynamic-provider", "", "if set, LLM provider for dynamically generated challenges (openai, anthropic, google)")
	dynamicModel    = flag.String("dynamic-model", "", "model for dynamic challenge generation, provider default if empty")
	slogLevel       = flag.String("slog-level", "INFO", "logging level (see https://pkg.go.dev/log/slog#hdr-Levels)")
	healthcheck     = flag.Bool("healthcheck", false, "run a health check against agentgate")
	versionFlag     = flag.Bool("version", false, "print agentgate version")
)

func gateOptions() (gate.Options, error) {
	if *configFname != "" {
		return gate.LoadConfig(*configFname)
	}

	sec := *secret
	if *secretFile != "" {
		raw, err := os.ReadFile(*secretFile)
		if err != nil {
			return gate.Options{}, fmt.Errorf("can't read secret file: %w", err)
		}
		sec = strings.TrimSpace(string(raw))
	}

	var allowed []string
	for _, name := range strings.Split(*types, ",") {
		if name = strings.TrimSpace(name); name != "" {
			allowed = append(allowed, name)
		}
	}

	return gate.Options{
		Secret:     sec,
		Difficulty: *difficulty,
		TTL:        *ttl,
		Types:      allowed,
		Persistent: *persistent,
		AgentID:    *agentID,
	}, nil
}

func doHealthCheck() error {
	resp, err := http.Get("http://localhost" + *metricsBind + "/metrics")
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

func main() {
	flagenv.Parse()
	flag.Parse()

	if *versionFlag {
		fmt.Println("agentgate", agentgate.Version)
		return
	}

	if *healthcheck {
		if err := doHealthCheck(); err != nil {
			log.Fatal(err)
		}
		return
	}

	internal.InitSlog(*slogLevel)

	opts, err := gateOptions()
	if err != nil {
		log.Fatalf("can't resolve gate options: %v", err)
	}

	if *dynamicProvider != "" {
		client, err := guard.Keys{}.Client(guard.Provider(*dynamicProvider), *dynamicModel)
		if err != nil {
			log.Fatalf("can't set up dynamic generation: %v", err)
		}
		opts.Dynamic = guard.Dynamic(client, opts.Difficulty)
	}

	g, err := gate.New(opts)
	if err != nil {
		log.Fatalf("can't build gate: %v", err)
	}

	wg := new(sync.WaitGroup)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsBind != "" {
		wg.Add(1)
		go metricsServer(ctx, wg.Done)
	}

	mux := http.NewServeMux()
	mux.Handle(agentgate.APIPrefix+"gate", g.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": agentgate.Version})
	})

	srv := http.Server{Addr: *bind, Handler: mux}
	slog.Info(
		"listening",
		"bind", *bind,
		"difficulty", opts.Difficulty,
		"ttl", opts.TTL,
		"persistent", opts.Persistent,
		"dynamic-provider", *dynamicProvider,
		"version", agentgate.Version,
	)

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			log.Printf("cannot shut down: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	wg.Wait()
}

func metricsServer(ctx context.Context, done func()) {
	defer done()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := http.Server{Addr: *metricsBind, Handler: mux}
	slog.Debug("listening for metrics", "bind", *metricsBind)

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			log.Printf("cannot shut down: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
