package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/searchflow/config"
	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/paging"
	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/search"
	"github.com/smallnest/searchflow/state"
)

const fixtureSize = 1000

type searchOptions struct {
	fixture     bool
	fresh       bool
	autosave    bool
	window      int
	metricsAddr string
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search interactively, one phrase per line",
		Long: `Reads commands from standard input. Every plain line is a search phrase.
Control commands:
  :more          load the next page
  :scroll <row>  report the first visible row; loads more near the end
  :clear         clear the search
  :quit          exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.search(ctx, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.fixture, "fixture", false, "search generated profiles instead of the remote endpoint")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "ignore the saved snapshot")
	cmd.Flags().BoolVar(&opts.autosave, "autosave", false, "save a snapshot after every completed page")
	cmd.Flags().IntVar(&opts.window, "window", 10, "rows visible at once, used by :scroll")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func (a *app) client(fixture bool) profile.Client {
	if fixture {
		return profile.NewFixtureClient(fixtureSize)
	}
	opts := []profile.HTTPOption{
		profile.WithEndpoint(a.cfg.Endpoint),
		profile.WithHTTPLogger(log.GetDefaultLogger()),
	}
	if a.cfg.HTTPTimeout > 0 {
		opts = append(opts, profile.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}))
	}
	if a.cfg.RequestsPerSecond > 0 {
		opts = append(opts, profile.WithRateLimit(a.cfg.RequestsPerSecond, 1))
	}
	return profile.NewHTTPClient(opts...)
}

func (a *app) search(ctx context.Context, opts searchOptions) error {
	if opts.window <= 0 {
		return fmt.Errorf("--window must be positive")
	}
	detector, err := paging.NewEdgeDetector(a.cfg.Autoload.DistanceTrigger)
	if err != nil {
		return err
	}

	cp, closeStore, err := config.Checkpointer(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	initial := state.Blank()
	if !opts.fresh {
		vs, ok, err := cp.Restore(ctx)
		if err != nil {
			return fmt.Errorf("failed to restore session %s: %w", a.cfg.Store.Session, err)
		}
		if ok {
			initial = vs
		}
	}

	reg := prometheus.NewRegistry()
	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server: %v", err)
			}
		}()
		defer srv.Close()
	}

	orch := search.New(a.client(opts.fixture),
		search.WithInitialState(initial),
		search.WithPageLimit(a.cfg.PageLimit),
		search.WithMetrics(search.NewMetrics(reg)),
		search.WithLogger(log.GetDefaultLogger()),
	)

	in := &input{
		detector: detector,
		window:   opts.window,
		current:  orch.Current,
		errOut:   a.stderr,
	}
	render := newRenderer(a.stdout)
	if err := render.print(initial); err != nil {
		return err
	}
	sub := orch.Subscribe()

	phrases := make(chan string)
	edges := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return in.run(gctx, readLines(a.stdin), phrases, edges)
	})
	g.Go(func() error {
		defer orch.Close()
		return orch.Run(gctx, phrases, edges)
	})
	g.Go(func() error {
		return render.run(gctx, sub)
	})
	if opts.autosave {
		watched := orch.Subscribe()
		g.Go(func() error {
			defer watched.Unsubscribe()
			return cp.Watch(gctx, watched.C())
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// ctx may already be cancelled by a signal; the final save still runs.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cp.Save(saveCtx, orch.Current()); err != nil {
		return fmt.Errorf("failed to save session %s: %w", a.cfg.Store.Session, err)
	}
	return nil
}
