package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	agentpkg "github.com/hrygo/shopdesk/ai/agents"
	"github.com/hrygo/shopdesk/ai/agents/tools"
	"github.com/hrygo/shopdesk/ai/metrics"
	"github.com/hrygo/shopdesk/ai/routing"
	"github.com/hrygo/shopdesk/ai/vocabulary"
	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/db"
)

// engine bundles the dispatcher with the pieces commands report on.
type engine struct {
	dispatcher *agentpkg.Dispatcher
	router     *routing.Service
	metrics    *metrics.PrometheusExporter
}

// newEngine loads the corpus once and wires the dispatcher around it.
func newEngine(ctx context.Context, p *profile.Profile) (*engine, error) {
	corpus, err := loadCorpus(ctx, p)
	if err != nil {
		return nil, err
	}

	vocab, err := vocabulary.Load(p.ConfigDir)
	if err != nil {
		return nil, err
	}

	override, err := p.NowOverride()
	if err != nil {
		return nil, err
	}
	now := time.Now
	if !override.IsZero() {
		now = func() time.Time { return override }
	}

	policy, err := tools.NewCancelPolicy(tools.PolicyConfig{
		Window: time.Duration(p.CancelWindowMinutes) * time.Minute,
		Rule:   p.CancelRule,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())

	routerCfg := routing.DefaultConfig()
	routerCfg.Vocabulary = vocab
	routerCfg.Cache.Observer = exporter
	router := routing.NewService(routerCfg)

	dispatcher, err := agentpkg.NewDispatcher(agentpkg.Config{
		Classifier: router,
		Catalog:    tools.NewCatalog(corpus.Products()),
		Orders:     tools.NewOrderBook(corpus.Orders()),
		Policy:     policy,
		Vocabulary: &vocab,
		Now:        now,
		Metrics:    exporter,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("engine ready",
		"driver", p.Driver,
		"products", len(corpus.Products()),
		"orders", len(corpus.Orders()),
		"cancel_window_min", p.CancelWindowMinutes,
		"clock_override", p.Now)

	return &engine{dispatcher: dispatcher, router: router, metrics: exporter}, nil
}

func loadCorpus(ctx context.Context, p *profile.Profile) (*store.Corpus, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		printCorpusError(os.Stderr, err, p)
		return nil, err
	}
	storeInstance := store.New(driver, p)
	defer storeInstance.Close()

	corpus, err := storeInstance.LoadCorpus(ctx)
	if err != nil {
		printCorpusError(os.Stderr, err, p)
		return nil, err
	}
	return corpus, nil
}

// printCorpusError adds a hint for the common ways loading the corpus goes wrong.
// Outside prod the wrapped error is printed with its stack.
func printCorpusError(w io.Writer, err error, p *profile.Profile) {
	fmt.Fprintln(w, "\nCorpus could not be loaded")
	fmt.Fprintln(w, strings.Repeat("-", 40))

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(w, "\nPostgreSQL is not reachable.")
		fmt.Fprintf(w, "   Check SHOPDESK_DSN, or fall back to the bundled corpus with --driver=json\n")

	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(w, "\nPostgreSQL SSL configuration mismatch.")
		fmt.Fprintf(w, "   Add ?sslmode=disable to your DSN\n")

	case strings.Contains(errMsg, "not imported yet"):
		fmt.Fprintln(w, "\nThe database holds no corpus.")
		fmt.Fprintf(w, "   Run: shopdesk import --driver=%s --dsn=...\n", p.Driver)

	case strings.Contains(errMsg, "no such file or directory"):
		fmt.Fprintln(w, "\nA corpus file is missing.")
		fmt.Fprintf(w, "   --data must hold products.json and orders.json (got %q)\n", p.Data)

	default:
		fmt.Fprintf(w, "\n   %v\n", err)
	}

	if p.IsDev() {
		fmt.Fprintf(w, "\n%+v\n", err)
	}
	fmt.Fprintln(w)
}
