package factory

import (
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/httpserver"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/ports"
)

// ServerFactory creates the inbound listing server
type ServerFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	service   *core.EvaluatorService
	blocklist core.BlocklistStore
	cache     core.DecisionCache
	renderer  *httpserver.HTMLRenderer
}

// NewServerFactory creates a new server factory
func NewServerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.EvaluatorService,
	blocklist core.BlocklistStore,
	cache core.DecisionCache,
	renderer *httpserver.HTMLRenderer,
) *ServerFactory {
	return &ServerFactory{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		blocklist: blocklist,
		cache:     cache,
		renderer:  renderer,
	}
}

// CreateListingServer creates the configured listing server
func (f *ServerFactory) CreateListingServer() (ports.ListingServer, error) {
	return httpserver.NewServer(
		f.service,
		f.blocklist,
		f.cache,
		f.renderer,
		f.cfg.GetString("server.listen_address"),
		f.logger,
	), nil
}
