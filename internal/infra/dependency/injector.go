// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/period-engine/config"
	"github.com/finance-tracker/period-engine/internal/application/adapter"
	billingcycle "github.com/finance-tracker/period-engine/internal/application/usecase/billing_cycle"
	"github.com/finance-tracker/period-engine/internal/application/usecase/period"
	"github.com/finance-tracker/period-engine/internal/application/usecase/recurring"
	"github.com/finance-tracker/period-engine/internal/application/usecase/rollover"
	"github.com/finance-tracker/period-engine/internal/application/usecase/transaction"
	"github.com/finance-tracker/period-engine/internal/infra/server/router"
	"github.com/finance-tracker/period-engine/internal/integration/adapters"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/period-engine/internal/integration/messaging"
	"github.com/finance-tracker/period-engine/internal/integration/metrics"
	"github.com/finance-tracker/period-engine/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config   *config.Config
	DB       *gorm.DB
	Router   *router.Router
	Registry *prometheus.Registry

	// Broker is nil when AMQP is not configured.
	Broker *messaging.Client

	RateLimiter *middleware.RateLimiter

	RunDueTemplates *recurring.RunDueTemplatesUseCase
	ApplyRollover   *rollover.ApplyRolloverUseCase
}

// Option customizes the injector.
type Option func(*options)

type options struct {
	clock adapter.Clock
}

// WithClock replaces the wall clock used by the engine.
func WithClock(clock adapter.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// NewInjector creates a new dependency injector with all dependencies wired. redisClient
// may be nil, in which case the scheduler runs without a dispatch lease.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Injector, error) {
	o := options{clock: adapters.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	policy := recurring.CrossBoundaryPolicy(cfg.Engine.CrossBoundaryPolicy)
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid CROSS_BOUNDARY_POLICY %q", cfg.Engine.CrossBoundaryPolicy)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	clock := o.clock

	// Create repositories
	uow := persistence.NewUnitOfWork(db)
	periodRepo := persistence.NewPeriodRepository(db, clock)
	transactionRepo := persistence.NewTransactionRepository(db)
	walletRepo := persistence.NewWalletRepository(db)
	templateRepo := persistence.NewRecurringTemplateRepository(db)
	occurrenceRepo := persistence.NewRecurringOccurrenceRepository(db)
	rolloverRepo := persistence.NewRolloverRepository(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)
	var lease adapter.DispatchLease
	if redisClient != nil {
		lease = adapters.NewRedisLease(redisClient)
	}

	// Period lock guard and ledger writer
	guard := period.NewGuard(periodRepo, recorder)
	ledgerWriter := transaction.NewLedgerWriter(guard, transactionRepo)

	// Create rollover use cases
	applyRolloverUseCase := rollover.NewApplyRolloverUseCase(uow, periodRepo, rolloverRepo, transactionRepo, ledgerWriter, recorder, clock)

	injector := &Injector{
		Config:        cfg,
		DB:            db,
		Registry:      registry,
		ApplyRollover: applyRolloverUseCase,
	}

	publisher, err := injector.periodEventPublisher(applyRolloverUseCase)
	if err != nil {
		return nil, err
	}

	// Create period use cases
	getStatusUseCase := period.NewGetStatusUseCase(periodRepo)
	listPeriodsUseCase := period.NewListPeriodsUseCase(periodRepo)
	closePeriodUseCase := period.NewClosePeriodUseCase(uow, periodRepo, publisher, recorder, clock)
	reopenPeriodUseCase := period.NewReopenPeriodUseCase(uow, periodRepo, recorder, clock)

	// Create billing cycle use cases
	computeWindowUseCase := billingcycle.NewComputeWindowUseCase()
	walletWindowUseCase := billingcycle.NewGetWalletWindowUseCase(walletRepo, transactionRepo, clock)

	// Create recurring use cases
	generateUseCase := recurring.NewGenerateOccurrenceUseCase(uow, occurrenceRepo, guard, ledgerWriter, recorder, clock, policy)
	createTemplateUseCase := recurring.NewCreateTemplateUseCase(templateRepo, walletRepo)
	listTemplatesUseCase := recurring.NewListTemplatesUseCase(templateRepo)
	setTemplateActiveUseCase := recurring.NewSetTemplateActiveUseCase(templateRepo, clock)
	triggerUseCase := recurring.NewTriggerOccurrenceUseCase(templateRepo, generateUseCase)
	listOccurrencesUseCase := recurring.NewListOccurrencesUseCase(occurrenceRepo)
	injector.RunDueTemplates = recurring.NewRunDueTemplatesUseCase(
		templateRepo,
		occurrenceRepo,
		generateUseCase,
		lease,
		recorder,
		clock,
		recurring.RunDueConfig{
			Concurrency:     cfg.Scheduler.Concurrency,
			UnitTimeout:     cfg.Scheduler.UnitTimeout,
			LookbackPeriods: cfg.Scheduler.LookbackPeriods,
			LeaseTTL:        cfg.Scheduler.LeaseTTL,
		},
	)

	// Create transaction use cases
	createTransactionUseCase := transaction.NewCreateTransactionUseCase(uow, ledgerWriter, walletRepo)
	updateTransactionUseCase := transaction.NewUpdateTransactionUseCase(uow, guard, transactionRepo, clock)
	deleteTransactionUseCase := transaction.NewDeleteTransactionUseCase(uow, guard, transactionRepo)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	})
	periodController := controller.NewPeriodController(
		getStatusUseCase,
		listPeriodsUseCase,
		closePeriodUseCase,
		reopenPeriodUseCase,
		applyRolloverUseCase,
	)
	billingController := controller.NewBillingController(computeWindowUseCase, walletWindowUseCase)
	recurringController := controller.NewRecurringController(
		createTemplateUseCase,
		listTemplatesUseCase,
		setTemplateActiveUseCase,
		triggerUseCase,
		listOccurrencesUseCase,
	)
	transactionController := controller.NewTransactionController(
		createTransactionUseCase,
		updateTransactionUseCase,
		deleteTransactionUseCase,
	)

	// Create middleware
	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitWindow)
	injector.RateLimiter = rateLimiter
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	injector.Router = router.NewRouter(
		healthController,
		periodController,
		billingController,
		recurringController,
		transactionController,
		rateLimiter,
		authMiddleware,
		registry,
	)

	return injector, nil
}

// periodEventPublisher picks where period.closed events go: the broker when configured,
// the in-process rollover applier when rollover-on-close is enabled, or nowhere.
func (i *Injector) periodEventPublisher(applier *rollover.ApplyRolloverUseCase) (adapter.PeriodEventPublisher, error) {
	if i.Config.AMQP.URL != "" {
		client, err := messaging.NewClient(i.Config.AMQP.URL, i.Config.AMQP.ExchangeName, i.Config.AMQP.QueueName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		i.Broker = client
		slog.Info("Publishing period events to broker", "exchange", i.Config.AMQP.ExchangeName)
		return client, nil
	}
	if i.Config.Engine.RolloverOnClose {
		slog.Info("Applying rollovers synchronously on close")
		return rollover.NewApplyOnClose(applier), nil
	}
	return nil, nil
}

// Close releases the connections the injector opened.
func (i *Injector) Close() error {
	if i.Broker != nil {
		return i.Broker.Close()
	}
	return nil
}
