package onboard

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/talentops/onboard/callback"
	"github.com/talentops/onboard/engine"
	"github.com/talentops/onboard/gateway"
	"github.com/talentops/onboard/gateway/httpgw"
	"github.com/talentops/onboard/metrics"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
	pfs "github.com/talentops/onboard/service/dao/process/fs"
	pmemory "github.com/talentops/onboard/service/dao/process/memory"
	psqlite "github.com/talentops/onboard/service/dao/process/sqlite"
	"github.com/talentops/onboard/service/event"
)

// Service is the bootstrap façade: it wires the step registry, the
// activation engine, the callback resolver and their collaborators from a
// Config plus options, and owns their lifecycle.
type Service struct {
	config          *Config
	gateway         gateway.Service
	processDAO      dao.Service[string, model.Process]
	events          *event.Service
	logger          *zap.Logger
	metricsRegistry *prometheus.Registry
	metrics         *metrics.Metrics

	engine   *engine.Service
	resolver *callback.Resolver
}

// New creates the fully wired service. The gateway must come from the
// config's endpoints or from WithGateway - there is no ambient default.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metricsRegistry == nil {
		s.metricsRegistry = prometheus.NewRegistry()
	}
	s.metrics = metrics.New(s.metricsRegistry)
	if s.events == nil {
		s.events = event.New(event.WithLogger(s.logger))
	}

	if s.gateway == nil {
		if s.config.Gateway == nil {
			return fmt.Errorf("gateway is required: configure endpoints or inject one with WithGateway")
		}
		gw, err := httpgw.New(s.config.Gateway)
		if err != nil {
			return err
		}
		s.gateway = gw
	}

	if s.processDAO == nil {
		store, err := s.newProcessDAO()
		if err != nil {
			return err
		}
		s.processDAO = store
	}

	reg, err := engine.NewOnboardingRegistry(s.gateway, s.config.Onboarding)
	if err != nil {
		return err
	}
	s.engine, err = engine.New(reg, s.processDAO,
		engine.WithLogger(s.logger),
		engine.WithEvents(s.events),
		engine.WithMetrics(s.metrics))
	if err != nil {
		return err
	}
	s.resolver = callback.New(s.engine,
		callback.WithLogger(s.logger),
		callback.WithMetrics(s.metrics))
	return nil
}

func (s *Service) newProcessDAO() (dao.Service[string, model.Process], error) {
	switch s.config.Store.Backend {
	case "", StoreMemory:
		return pmemory.New(), nil
	case StoreFS:
		return pfs.New(s.config.Store.Path)
	case StoreSQLite:
		return psqlite.New(s.config.Store.Path)
	}
	return nil, fmt.Errorf("unknown store backend %q", s.config.Store.Backend)
}

// Engine returns the activation engine.
func (s *Service) Engine() *engine.Service { return s.engine }

// Resolver returns the callback resolver.
func (s *Service) Resolver() *callback.Resolver { return s.resolver }

// Events returns the transition-event service.
func (s *Service) Events() *event.Service { return s.events }

// Logger returns the shared logger.
func (s *Service) Logger() *zap.Logger { return s.logger }

// MetricsRegistry returns the Prometheus registry for exposition.
func (s *Service) MetricsRegistry() *prometheus.Registry { return s.metricsRegistry }

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }
