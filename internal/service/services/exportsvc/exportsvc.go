package exportsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/openmagecz/roivenue-export/internal/clock"
	"github.com/openmagecz/roivenue-export/internal/config"
	"github.com/openmagecz/roivenue-export/internal/dal/interfaces/iorderrepo"
	"github.com/openmagecz/roivenue-export/internal/dal/interfaces/irunlogrepo"
	"github.com/openmagecz/roivenue-export/internal/service/models/feedevent"
	"github.com/openmagecz/roivenue-export/internal/service/models/order"
	"github.com/openmagecz/roivenue-export/internal/service/models/runlog"
	"github.com/openmagecz/roivenue-export/internal/service/models/window"
	"github.com/openmagecz/roivenue-export/internal/service/services/feedsvc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// feedBuilder assembles the document for one run.
type feedBuilder interface {
	Build(ctx context.Context, orders []order.Order, win window.Window) (*feedsvc.Feed, error)
}

// feedWriter persists the document locally.
type feedWriter interface {
	Write(fileName string, body []byte) (string, error)
}

// feedUploader hands the document to remote storage.
type feedUploader interface {
	Upload(ctx context.Context, fileName string, body []byte) error
}

// feedNotifier announces a finished export downstream.
type feedNotifier interface {
	Publish(ctx context.Context, event feedevent.Event) error
}

// ExportService runs the whole pipeline once: window, fetch, build, write,
// upload. Fully synchronous; each invocation is independent and stateless.
type ExportService struct {
	cfg        config.Export
	clock      clock.Clock
	orderRepo  iorderrepo.IOrderRepository
	feedSvc    feedBuilder
	store      feedWriter
	uploader   feedUploader
	notifier   feedNotifier
	runLogRepo irunlogrepo.IRunLogRepository
	tracer     trace.Tracer
}

// Option is a function that configures the ExportService.
type Option func(*ExportService)

// MustNewExportService creates a new ExportService.
func MustNewExportService(opts ...Option) *ExportService {
	s := &ExportService{
		clock:  clock.NewSystem(),
		tracer: otel.Tracer("exportsvc"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.orderRepo == nil || s.feedSvc == nil || s.store == nil || s.uploader == nil {
		panic("exportsvc: order repository, feed service, store and uploader are required")
	}

	return s
}

// WithConfig sets the deployment constants for the ExportService.
func WithConfig(cfg config.Export) Option {
	return func(s *ExportService) {
		s.cfg = cfg
	}
}

// WithClock sets the time source for the ExportService.
func WithClock(c clock.Clock) Option {
	return func(s *ExportService) {
		s.clock = c
	}
}

// WithOrderRepository sets the order fetch boundary.
func WithOrderRepository(repo iorderrepo.IOrderRepository) Option {
	return func(s *ExportService) {
		s.orderRepo = repo
	}
}

// WithFeedService sets the feed builder.
func WithFeedService(builder feedBuilder) Option {
	return func(s *ExportService) {
		s.feedSvc = builder
	}
}

// WithStore sets the local sink.
func WithStore(store feedWriter) Option {
	return func(s *ExportService) {
		s.store = store
	}
}

// WithUploader sets the remote storage boundary.
func WithUploader(uploader feedUploader) Option {
	return func(s *ExportService) {
		s.uploader = uploader
	}
}

// WithNotifier sets the optional downstream notifier.
func WithNotifier(notifier feedNotifier) Option {
	return func(s *ExportService) {
		s.notifier = notifier
	}
}

// WithRunLogRepository sets the optional export_runs audit repository.
func WithRunLogRepository(repo irunlogrepo.IRunLogRepository) Option {
	return func(s *ExportService) {
		s.runLogRepo = repo
	}
}

// Run executes one export end to end and returns the first fatal error.
// Failures of the run log and the notifier are logged, never fatal.
func (s *ExportService) Run(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "export.run")
	defer span.End()

	s.logClockEnv()

	now := s.clock.Now().In(s.cfg.Location)
	win := window.Calculate(now, s.cfg.LookbackWeeks)
	slog.Info("Export window computed",
		"from", win.From.Format("2006-01-02"),
		"to", win.To.Format("2006-01-02"),
		"lookback_weeks", s.cfg.LookbackWeeks,
	)

	runID := s.startRunLog(ctx, win)

	feed, err := s.runPipeline(ctx, win)
	s.finishRunLog(ctx, runID, feed, err)
	if err != nil {
		slog.Error("Export failed", "error", err)
		return err
	}

	slog.Info("Export complete", "file", feed.FileName, "orders", feed.OrderCount)

	return nil
}

func (s *ExportService) runPipeline(ctx context.Context, win window.Window) (*feedsvc.Feed, error) {
	fetchCtx, fetchSpan := s.tracer.Start(ctx, "export.fetch")
	orders, err := s.orderRepo.ListByWindow(fetchCtx, s.cfg.StoreID, win)
	fetchSpan.End()
	if err != nil {
		return nil, err
	}

	if len(orders) > 0 {
		slog.Info("Orders fetched",
			"count", len(orders),
			"first_created_at", orders[0].CreatedAt,
			"last_created_at", orders[len(orders)-1].CreatedAt,
		)
	} else {
		slog.Info("No orders in window, exporting empty feed")
	}

	buildCtx, buildSpan := s.tracer.Start(ctx, "export.build")
	feed, err := s.feedSvc.Build(buildCtx, orders, win)
	buildSpan.End()
	if err != nil {
		return nil, err
	}

	path, err := s.store.Write(feed.FileName, feed.Body)
	if err != nil {
		return feed, err
	}
	slog.Info("Feed written", "path", path, "bytes", len(feed.Body))

	uploadCtx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()
	uploadCtx, uploadSpan := s.tracer.Start(uploadCtx, "export.upload")
	err = s.uploader.Upload(uploadCtx, feed.FileName, feed.Body)
	uploadSpan.End()
	if err != nil {
		return feed, err
	}

	s.publish(ctx, feed)

	return feed, nil
}

// logClockEnv records the host timezone against the configured store
// timezone, mirroring what the integration has always logged at run start.
func (s *ExportService) logClockEnv() {
	now := s.clock.Now()
	hostZone, _ := now.Zone()
	slog.Info("Clock environment",
		"host_timezone", hostZone,
		"store_timezone", s.cfg.Location.String(),
		"host_time", now.Format(time.RFC3339),
		"store_time", now.In(s.cfg.Location).Format(time.RFC3339),
	)
}

func (s *ExportService) publish(ctx context.Context, feed *feedsvc.Feed) {
	if s.notifier == nil {
		return
	}
	event := feedevent.Event{
		FileName:   feed.FileName,
		OrderCount: feed.OrderCount,
		StartDate:  feed.StartDate,
		EndDate:    feed.EndDate,
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish feed event", "error", err)
	}
}

func (s *ExportService) startRunLog(ctx context.Context, win window.Window) int64 {
	if s.runLogRepo == nil {
		return 0
	}
	id, err := s.runLogRepo.Start(ctx, runlog.RunLog{
		StartedAt:  s.clock.Now(),
		WindowFrom: win.From,
		WindowTo:   win.To,
	})
	if err != nil {
		slog.Error("Failed to start run log", "error", err)
		return 0
	}
	return id
}

func (s *ExportService) finishRunLog(ctx context.Context, id int64, feed *feedsvc.Feed, runErr error) {
	if s.runLogRepo == nil || id == 0 {
		return
	}

	finished := s.clock.Now()
	run := runlog.RunLog{
		ID:         id,
		FinishedAt: &finished,
		Status:     runlog.StatusDone,
	}
	if feed != nil {
		run.FileName = feed.FileName
		run.OrderCount = feed.OrderCount
	}
	if runErr != nil {
		run.Status = runlog.StatusFailed
		run.Error = runErr.Error()
	}

	if err := s.runLogRepo.Finish(ctx, run); err != nil {
		slog.Error("Failed to finish run log", "error", err)
	}
}
