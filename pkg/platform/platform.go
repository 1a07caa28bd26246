package platform

import (
	"github.com/jobdesk/jobdesk/pkg/config"
	"github.com/jobdesk/jobdesk/pkg/platform/auth"
	"github.com/jobdesk/jobdesk/pkg/platform/backup"
	"github.com/jobdesk/jobdesk/pkg/platform/graphql"
	"github.com/jobdesk/jobdesk/pkg/platform/store"
	"github.com/jobdesk/jobdesk/pkg/platform/tracker"
	"go.uber.org/zap"
)

// Platform wires the application subsystems together: the file store, the
// auth engine, the tracker operations, the GraphQL engine and the optional
// backup scheduler.
type Platform struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *store.FileUserStore
	authEngine *auth.AuthEngine
	tracker    *tracker.Service
	gqlEngine  *graphql.GraphQLEngine
	backup     *backup.Scheduler
}

func NewPlatform(cfg *config.Config, logger *zap.Logger) *Platform {
	return &Platform{
		cfg:    cfg,
		logger: logger,
	}
}

// Start initializes all platform subsystems.
func (p *Platform) Start() error {
	p.logger.Info("Starting JobDesk Platform...")

	p.store = store.NewFileUserStore(p.cfg.Store.Path)

	var err error
	p.authEngine, err = auth.NewAuthEngine(
		p.cfg.Auth.Secret,
		p.cfg.Auth.TokenTTL,
		p.cfg.Auth.BcryptCost,
		p.logger,
	)
	if err != nil {
		p.logger.Error("Failed to initialize Auth Engine", zap.Error(err))
		return err
	}

	p.tracker = tracker.NewService(p.store, p.authEngine, p.logger)

	p.gqlEngine = graphql.NewGraphQLEngine(p.tracker, p.logger)
	if err := p.gqlEngine.BuildSchema(); err != nil {
		p.logger.Error("Failed to build GraphQL schema", zap.Error(err))
		return err
	}

	if p.cfg.Backup.Enabled {
		p.backup = backup.NewScheduler(
			p.cfg.Store.Path,
			p.cfg.Backup.Dir,
			p.cfg.Backup.Schedule,
			p.logger,
		)
		if err := p.backup.Start(); err != nil {
			p.logger.Error("Failed to start backup scheduler", zap.Error(err))
			return err
		}
	}

	return nil
}

// Stop shuts down background subsystems.
func (p *Platform) Stop() {
	if p.backup != nil {
		p.backup.Stop()
	}
}

// Tracker exposes the domain operations, mainly for tests.
func (p *Platform) Tracker() *tracker.Service {
	return p.tracker
}
