package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/jrsteele09/go-adcampaign-dashboard/campaigns"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/config"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const defaultReadyWait = 2 * time.Second

// CampaignAPI is the part of the campaign API the campaign pages use
type CampaignAPI interface {
	CampaignOptions(ctx context.Context) (*campaigns.Options, error)
	ListCampaigns(ctx context.Context) ([]campaigns.Campaign, error)
	CreateCampaign(ctx context.Context, d campaigns.Draft) (*campaigns.Campaign, error)
	UploadFile(ctx context.Context, filename string, content io.Reader) (string, error)
	SearchCities(ctx context.Context, query string) ([]campaigns.Location, error)
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	router     chi.Router
	fileServer http.Handler
	pages      *pageSet
	config     config.Config
	state      *sessions.State
	accounts   *auth.Service
	api        CampaignAPI
	catalogue  *campaigns.Catalogue
	registry   prometheus.Gatherer
	readyWait  time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithGatherer exposes the given registry on /metrics
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.registry = g
	}
}

// WithCatalogue replaces the embedded platform catalogue
func WithCatalogue(c *campaigns.Catalogue) Option {
	return func(s *Server) {
		s.catalogue = c
	}
}

// WithReadyWait sets how long a navigation waits for hydration before the
// loading page is shown instead
func WithReadyWait(d time.Duration) Option {
	return func(s *Server) {
		s.readyWait = d
	}
}

func New(cfg config.Config, state *sessions.State, accounts *auth.Service, api CampaignAPI, opts ...Option) (*Server, error) {
	if state == nil || accounts == nil || api == nil {
		return nil, errors.New("[Server New] session state, account service and campaign API are required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse page templates: %w", err)
	}

	s := &Server{
		env:        cfg.GetEnv(),
		fileServer: FileServerHandler(),
		pages:      pages,
		config:     cfg,
		state:      state,
		accounts:   accounts,
		api:        api,
		catalogue:  campaigns.DefaultCatalogue(),
		registry:   prometheus.DefaultGatherer,
		readyWait:  defaultReadyWait,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logRoute(method, route)
		return nil
	})
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
