package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/config"
	"github.com/jrsteele09/go-adcampaign-dashboard/server"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var ephemeral bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, root.cfg, ephemeral)
		},
	}
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")
	return cmd
}

func run(ctx context.Context, c config.Config, ephemeral bool) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	repo, closeStore, err := openStore(c, ephemeral)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Err(err).Msg("Failed to close session store")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var client *apiclient.Client
	state := sessions.New(repo, sessions.WithLogoutNotifier(sessions.NotifierFunc(func(ctx context.Context) error {
		return client.NotifyLogout(ctx)
	})))
	client = apiclient.New(c.GetAPIBaseURL(), state,
		apiclient.WithTimeout(c.GetAPITimeout()),
		apiclient.WithMetrics(apiclient.NewMetrics(registry)),
		apiclient.WithCitySearchRate(c.GetCitySearchRate()),
		apiclient.WithSessionEndedHook(func() {
			log.Warn().Msg("Session ended by the API, signed out")
		}),
	)

	accounts, err := auth.NewService(client, state)
	if err != nil {
		return err
	}
	handler, err := server.New(c, state, accounts, client, server.WithGatherer(registry))
	if err != nil {
		return err
	}

	syncCtx, stopSync := context.WithCancel(context.Background())
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		_ = state.Run(syncCtx)
	}()
	go state.Hydrate(ctx)

	// Cancelled on shutdown so long lived session feeds let go of their connections.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case <-ctx.Done():
	case returnError = <-serveErr:
	}

	cancelBase()
	if err := shutdown(httpServer); err != nil && returnError == nil {
		returnError = err
	}

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFlush()
	if err := state.Flush(flushCtx); err != nil {
		log.Err(err).Msg("Failed to flush session store")
	}
	stopSync()
	<-syncDone

	log.Info().Msg("Server stopped")
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
