package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"reddit-status-alerts/internal/alerting"
	"reddit-status-alerts/internal/api"
	"reddit-status-alerts/internal/auth"
	"reddit-status-alerts/internal/config"
	"reddit-status-alerts/internal/fetcher"
	"reddit-status-alerts/internal/metrics"
	"reddit-status-alerts/internal/poller"
	"reddit-status-alerts/internal/report"
	"reddit-status-alerts/internal/scheduler"
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

func (a *App) newAggregator() *report.Aggregator {
	tokens := auth.NewTokenSource(auth.Options{
		ClientID:     a.Config.Reddit.ClientID,
		ClientSecret: a.Config.Reddit.ClientSecret,
		TokenURL:     a.Config.Reddit.TokenURL,
		UserAgent:    a.Config.Reddit.UserAgent,
	}, a.Logger)

	oauth := fetcher.NewOAuthSearch(fetcher.OAuthOptions{
		SearchURL: a.Config.Reddit.OAuthSearch,
		UserAgent: a.Config.Reddit.UserAgent,
		PageLimit: a.Config.Search.PageLimit,
		MaxPages:  a.Config.Search.MaxPages,
		Timeout:   a.Config.Search.RequestTimeout,
	}, tokens, a.Logger)

	public := fetcher.NewPublicSearch(fetcher.PublicOptions{
		SearchURL: a.Config.Reddit.PublicSearch,
		UserAgent: a.Config.Reddit.UserAgent,
		Limit:     a.Config.Search.PublicLimit,
		Timeout:   a.Config.Search.RequestTimeout,
	}, a.Logger)

	return report.NewAggregator(oauth, public, a.Logger)
}

func (a *App) newPoller() *poller.Poller {
	statusPage := fetcher.NewStatusPage(fetcher.StatusPageOptions{
		URL:       a.Config.Reddit.StatusURL,
		UserAgent: a.Config.Reddit.UserAgent,
		Timeout:   a.Config.Poller.RequestTimeout,
	}, a.Logger)

	return poller.New(statusPage, a.Config.Poller.HistorySize, a.Config.Poller.OperationalMarker, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

// Run executes the long-running monitoring service: the status poll loop and,
// when enabled, the liveness/metrics HTTP listener.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !a.Config.HasRedditCredentials() {
		a.Logger.Warn().Msg("reddit client credentials not configured; authenticated search disabled")
	}

	aggregator := a.newAggregator()
	statusPoller := a.newPoller()
	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("alerting disabled; status transitions will only be logged")
	}

	var server *http.Server
	if a.Config.Server.Enabled {
		handler := api.New(aggregator, statusPoller, a.Config.Search.Phrases, a.Logger)
		server = &http.Server{Addr: a.Config.Server.Addr, Handler: handler}
		go func() {
			a.Logger.Info().Str("addr", a.Config.Server.Addr).Msg("http listener started")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Logger.Error().Err(err).Msg("http listener terminated")
			}
		}()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Poller.Interval,
		AlignToStart: a.Config.Poller.AlignToBucket,
		StartupDelay: a.Config.Poller.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Msg("starting status poll loop")
	err := sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
		return a.pollOnce(ctx, statusPoller, notifier)
	})

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("poll loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// pollOnce runs a single poll cycle and dispatches a transition alert when one
// is detected. Delivery is fire-and-forget: a notifier failure is logged and
// never interrupts the loop or the history mutation that already happened.
func (a *App) pollOnce(ctx context.Context, statusPoller *poller.Poller, notifier alerting.Notifier) error {
	snap, transition, err := statusPoller.Poll(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("status poll cycle skipped")
		return nil
	}

	a.Logger.Info().
		Str("description", snap.Description).
		Int("open_incidents", snap.OpenIncidents).
		Bool("transitioned", transition.Changed).
		Msg("status polled")

	if !transition.Changed {
		return nil
	}

	if notifier == nil {
		return nil
	}

	note := alerting.Notification{
		Description:   snap.Description,
		Previous:      transition.Previous,
		Operational:   statusPoller.Operational(snap.Description),
		OpenIncidents: snap.OpenIncidents,
		ObservedAt:    snap.ObservedAt,
	}
	if err := notifier.Notify(ctx, note); err != nil {
		metrics.AlertsDispatched.WithLabelValues("failed").Inc()
		a.Logger.Error().Err(err).Msg("failed to dispatch transition alert")
		return nil
	}
	metrics.AlertsDispatched.WithLabelValues("sent").Inc()
	return nil
}

// ExportOptions hold parameters for exporting the current report series.
type ExportOptions struct {
	PNGPath string
	CSVPath string
}

// ReportOptions configure the one-shot report command.
type ReportOptions struct {
	JSON bool
}
