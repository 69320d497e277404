package onboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/talentops/onboard/gateway"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
	"github.com/talentops/onboard/service/event"
)

// Option customises the Service façade.
type Option func(s *Service)

// WithConfig supplies the serialisable configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithGateway injects the external service gateway; required unless the
// config carries gateway endpoints.
func WithGateway(gw gateway.Service) Option {
	return func(s *Service) { s.gateway = gw }
}

// WithProcessDAO overrides the process store selected by the config.
func WithProcessDAO(store dao.Service[string, model.Process]) Option {
	return func(s *Service) { s.processDAO = store }
}

// WithLogger sets the structured logger shared by all components.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithEventService sets the transition-event service.
func WithEventService(events *event.Service) Option {
	return func(s *Service) { s.events = events }
}

// WithMetricsRegistry sets the Prometheus registry collectors register with.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *Service) { s.metricsRegistry = registry }
}
