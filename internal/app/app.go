package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"price-tracker/internal/alerting"
	"price-tracker/internal/config"
	"price-tracker/internal/fetcher"
	"price-tracker/internal/report"
	"price-tracker/internal/scheduler"
	"price-tracker/internal/scrape"
	"price-tracker/internal/storage"
	"price-tracker/internal/tracker"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.PageFetcher {
	return fetcher.NewPage(fetcher.PageOptions{
		Timeout:        a.Config.Fetch.Timeout,
		UserAgent:      a.Config.Fetch.UserAgent,
		AcceptLanguage: a.Config.Fetch.AcceptLanguage,
	}, a.Logger)
}

func (a *App) newStore() *storage.Store {
	return storage.NewStore(a.Config.Storage.HistoryPath, a.Logger)
}

func (a *App) newNotifiers() []alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}

	var notifiers []alerting.Notifier
	for _, channel := range a.Config.Alerting.Channels {
		switch channel {
		case "email":
			if cfg := a.Config.Alerting.Email; cfg.Enabled {
				notifiers = append(notifiers, alerting.NewEmailNotifier(alerting.EmailOptions{
					Host:     cfg.Host,
					Port:     cfg.Port,
					Sender:   cfg.Sender,
					Password: cfg.Password,
					Receiver: cfg.Receiver,
				}, a.Logger))
			}
		case "telegram":
			if cfg := a.Config.Alerting.Telegram; cfg.Enabled {
				notifiers = append(notifiers, alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger))
			}
		default:
			a.Logger.Warn().Str("channel", channel).Msg("unknown alerting channel, ignoring")
		}
	}
	return notifiers
}

// Track executes one tracking run over the configured URLs and delivers
// the resulting report. Delivery failures are logged and never roll back
// the already-persisted history.
func (a *App) Track(ctx context.Context) error {
	urls := a.Config.Tracker.URLs
	if len(urls) == 0 {
		a.Logger.Warn().Msg("tracker.urls is empty; nothing to track")
	}

	svc := tracker.New(urls, a.newFetcher(), scrape.NewDispatcher(), a.newStore(), a.Logger)

	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	rpt := report.Build(a.Config.Report.Title, result.Summary, result.Drops)
	for _, notifier := range a.newNotifiers() {
		if err := notifier.Notify(ctx, rpt); err != nil {
			a.Logger.Error().Err(err).Msg("report delivery failed")
		}
	}

	return nil
}

// Watch runs tracking cycles on the configured schedule until interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Schedule.Interval,
		AlignToStart: a.Config.Schedule.AlignToStart,
		StartupDelay: a.Config.Schedule.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Schedule.Interval).Msg("starting watch mode")
	err := sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
		return a.Track(ctx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch mode terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch mode stopped")
	return nil
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ExportOptions hold parameters for exporting historical observations.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	CSVPath   string
	PNGPath   string
	MaxPoints int
}
