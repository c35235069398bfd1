package exportsvc

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openmagecz/roivenue-export/internal/clock"
	"github.com/openmagecz/roivenue-export/internal/config"
	"github.com/openmagecz/roivenue-export/internal/dal/azure"
	"github.com/openmagecz/roivenue-export/internal/service/models/feedevent"
	"github.com/openmagecz/roivenue-export/internal/service/models/order"
	"github.com/openmagecz/roivenue-export/internal/service/models/runlog"
	"github.com/openmagecz/roivenue-export/internal/service/models/window"
	"github.com/openmagecz/roivenue-export/internal/service/services/feedsvc"
)

type fakeOrderRepo struct {
	orders []order.Order
	err    error

	gotStoreID int64
	gotWindow  window.Window
}

func (f *fakeOrderRepo) ListByWindow(_ context.Context, storeID int64, win window.Window) ([]order.Order, error) {
	f.gotStoreID = storeID
	f.gotWindow = win
	return f.orders, f.err
}

type fakeFeedBuilder struct {
	feed *feedsvc.Feed
	err  error
}

func (f *fakeFeedBuilder) Build(_ context.Context, orders []order.Order, win window.Window) (*feedsvc.Feed, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.feed != nil {
		return f.feed, nil
	}
	return &feedsvc.Feed{
		FileName:   "oms-extract-orders_acme_2024-01-01-2024-01-02.xml",
		Body:       []byte("<Orders></Orders>"),
		StartDate:  win.From.Format("2006-01-02"),
		EndDate:    win.To.Format("2006-01-02"),
		OrderCount: len(orders),
	}, nil
}

type fakeWriter struct {
	fileName string
	body     []byte
	err      error
}

func (f *fakeWriter) Write(fileName string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.fileName = fileName
	f.body = body
	return "/tmp/" + fileName, nil
}

type fakeUploader struct {
	fileName string
	body     []byte
	err      error
	calls    int
}

func (f *fakeUploader) Upload(_ context.Context, fileName string, body []byte) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.fileName = fileName
	f.body = body
	return nil
}

type fakeNotifier struct {
	events []feedevent.Event
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, event feedevent.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeRunLog struct {
	started  []runlog.RunLog
	finished []runlog.RunLog
	startErr error
}

func (f *fakeRunLog) Start(_ context.Context, run runlog.RunLog) (int64, error) {
	if f.startErr != nil {
		return 0, f.startErr
	}
	f.started = append(f.started, run)
	return int64(len(f.started)), nil
}

func (f *fakeRunLog) Finish(_ context.Context, run runlog.RunLog) error {
	f.finished = append(f.finished, run)
	return nil
}

func testConfig() config.Export {
	return config.Export{
		StoreID:       1,
		PropertyCode:  "acme",
		LookbackWeeks: 13,
		Location:      time.UTC,
		UploadTimeout: time.Minute,
	}
}

func TestExportService_Run(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)

	t.Run("happy path writes and uploads the same bytes", func(t *testing.T) {
		repo := &fakeOrderRepo{orders: []order.Order{{IncrementID: "1", CreatedAt: now}}}
		writer := &fakeWriter{}
		uploader := &fakeUploader{}
		notifier := &fakeNotifier{}
		runLog := &fakeRunLog{}

		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(repo),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(writer),
			WithUploader(uploader),
			WithNotifier(notifier),
			WithRunLogRepository(runLog),
		)

		if err := svc.Run(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if repo.gotStoreID != 1 {
			t.Fatalf("expected store id 1, got %d", repo.gotStoreID)
		}
		wantFrom := time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)
		if !repo.gotWindow.From.Equal(wantFrom) {
			t.Fatalf("expected window from %v, got %v", wantFrom, repo.gotWindow.From)
		}

		if writer.fileName != uploader.fileName {
			t.Fatalf("expected same file name, got %q and %q", writer.fileName, uploader.fileName)
		}
		if !bytes.Equal(writer.body, uploader.body) {
			t.Fatalf("expected identical bytes written and uploaded")
		}

		if len(notifier.events) != 1 {
			t.Fatalf("expected one feed event, got %d", len(notifier.events))
		}
		if notifier.events[0].OrderCount != 1 {
			t.Fatalf("expected order count 1 in event, got %d", notifier.events[0].OrderCount)
		}

		if len(runLog.finished) != 1 {
			t.Fatalf("expected one finished run log, got %d", len(runLog.finished))
		}
		if runLog.finished[0].Status != runlog.StatusDone {
			t.Fatalf("expected done status, got %s", runLog.finished[0].Status)
		}
	})

	t.Run("empty window still exports a feed", func(t *testing.T) {
		writer := &fakeWriter{}
		uploader := &fakeUploader{}

		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(&fakeOrderRepo{}),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(writer),
			WithUploader(uploader),
		)

		if err := svc.Run(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if uploader.calls != 1 {
			t.Fatalf("expected upload of empty feed, got %d calls", uploader.calls)
		}
	})

	t.Run("upload failure is surfaced", func(t *testing.T) {
		uploadErr := &azure.UploadError{Share: "roi-share", Path: "export/feed.xml", Err: errors.New("boom")}
		runLog := &fakeRunLog{}

		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(&fakeOrderRepo{}),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(&fakeWriter{}),
			WithUploader(&fakeUploader{err: uploadErr}),
			WithRunLogRepository(runLog),
		)

		err := svc.Run(context.Background())
		var ue *azure.UploadError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UploadError, got %v", err)
		}

		if len(runLog.finished) != 1 || runLog.finished[0].Status != runlog.StatusFailed {
			t.Fatalf("expected failed run log, got %+v", runLog.finished)
		}
	})

	t.Run("fetch failure aborts before any write", func(t *testing.T) {
		writer := &fakeWriter{}
		uploader := &fakeUploader{}

		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(&fakeOrderRepo{err: errors.New("db down")}),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(writer),
			WithUploader(uploader),
		)

		if err := svc.Run(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
		if writer.fileName != "" || uploader.calls != 0 {
			t.Fatalf("expected no sink activity after fetch failure")
		}
	})

	t.Run("write failure prevents the upload", func(t *testing.T) {
		uploader := &fakeUploader{}

		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(&fakeOrderRepo{}),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(&fakeWriter{err: errors.New("disk full")}),
			WithUploader(uploader),
		)

		if err := svc.Run(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
		if uploader.calls != 0 {
			t.Fatalf("expected no upload after write failure")
		}
	})

	t.Run("run log failures never abort the export", func(t *testing.T) {
		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(&fakeOrderRepo{}),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(&fakeWriter{}),
			WithUploader(&fakeUploader{}),
			WithRunLogRepository(&fakeRunLog{startErr: errors.New("table missing")}),
		)

		if err := svc.Run(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("notifier failure never aborts the export", func(t *testing.T) {
		svc := MustNewExportService(
			WithConfig(testConfig()),
			WithClock(clock.NewFixed(now)),
			WithOrderRepository(&fakeOrderRepo{}),
			WithFeedService(&fakeFeedBuilder{}),
			WithStore(&fakeWriter{}),
			WithUploader(&fakeUploader{}),
			WithNotifier(&fakeNotifier{err: errors.New("broker gone")}),
		)

		if err := svc.Run(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}
