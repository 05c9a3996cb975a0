package background

import (
	"context"
	"sync"
	"time"

	"stationsupply/internal/config"
	"stationsupply/internal/jobs"
	"stationsupply/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// JobScheduler manages the periodic scans: low stock, expiring lots and the
// reorder suggestion cache warm-up.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	alertSvc   *jobs.StockAlertService
	reorderSvc services.ReorderService
	cfg        config.AlertConfig
	jobHandles map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(alertSvc *jobs.StockAlertService, reorderSvc services.ReorderService, cfg config.AlertConfig) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		alertSvc:   alertSvc,
		reorderSvc: reorderSvc,
		cfg:        cfg,
		jobHandles: make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

func (js *JobScheduler) Start() {
	log.Info().Msg("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info().Msg("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	scanEvery := time.Duration(js.cfg.ScanIntervalMins) * time.Minute
	if scanEvery <= 0 {
		scanEvery = time.Hour
	}
	suggestEvery := time.Duration(js.cfg.SuggestionInterval) * time.Minute
	if suggestEvery <= 0 {
		suggestEvery = 30 * time.Minute
	}

	js.addJob("low-stock-scan", scanEvery, js.runLowStockScan)
	js.addJob("expiry-scan", scanEvery, js.runExpiryScan)
	js.addJob("suggestion-refresh", suggestEvery, js.runSuggestionRefresh)
}

func (js *JobScheduler) addJob(name string, every time.Duration, task func(context.Context)) {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("failed to register job")
		return
	}

	js.mu.Lock()
	js.jobHandles[name] = job
	js.mu.Unlock()
}

func (js *JobScheduler) runLowStockScan(ctx context.Context) {
	alerts, err := js.alertSvc.CheckLowStock(ctx)
	if err != nil {
		return
	}
	js.alertSvc.LogLowStockAlerts(alerts)
}

func (js *JobScheduler) runExpiryScan(ctx context.Context) {
	alerts, err := js.alertSvc.CheckExpiring(ctx, js.cfg.ExpiryWindowDays)
	if err != nil {
		return
	}
	js.alertSvc.LogExpiryAlerts(alerts)
}

// runSuggestionRefresh recomputes the unfiltered suggestion report so the
// cache stays warm between stock mutations.
func (js *JobScheduler) runSuggestionRefresh(ctx context.Context) {
	suggestions, err := js.reorderSvc.Suggestions(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("suggestion refresh failed")
		return
	}
	log.Debug().Int("count", len(suggestions)).Msg("reorder suggestions refreshed")
}
