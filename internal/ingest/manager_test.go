package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"shoebox/internal/catalog"
	"shoebox/internal/ingest"
	"shoebox/internal/services"
	"shoebox/internal/testsupport"
)

type stubStage struct {
	execute func(ctx context.Context, item *catalog.Item) error
}

func (s *stubStage) Prepare(ctx context.Context, item *catalog.Item) error { return nil }

func (s *stubStage) Execute(ctx context.Context, item *catalog.Item) error {
	if s.execute != nil {
		return s.execute(ctx, item)
	}
	return nil
}

func inspectStub() *stubStage {
	return &stubStage{execute: func(ctx context.Context, item *catalog.Item) error {
		captured := time.Date(2023, 12, 14, 10, 0, 0, 0, time.UTC)
		item.CapturedAt = &captured
		item.TimeSource = catalog.TimeSourceMtime
		return nil
	}}
}

func TestRunProcessesAllDiscoveredItems(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(2))
	store := testsupport.MustOpenStore(t, cfg)

	for _, name := range []string{"IMG_0001.jpg", "IMG_0002.jpg", "MOV_0001.mp4"} {
		testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, name), 64)
	}

	manager := ingest.NewManagerWithStages(cfg, store, nil, inspectStub(), &stubStage{})
	report, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected a run id")
	}
	if report.Scan.Discovered != 3 {
		t.Fatalf("discovered = %d, want 3", report.Scan.Discovered)
	}
	if report.Completed != 3 || report.Failed != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}

	summary, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Completed != 3 {
		t.Fatalf("completed in catalog = %d, want 3", summary.Completed)
	}
}

func TestRunMarksStageFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "IMG_0001.jpg"), 64)

	boom := errors.New("conversion exploded")
	manager := ingest.NewManagerWithStages(cfg, store, nil, inspectStub(), &stubStage{
		execute: func(ctx context.Context, item *catalog.Item) error { return boom },
	})

	report, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Completed != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}

	items, err := store.List(context.Background(), catalog.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("failed items = %d, want 1", len(items))
	}
	if items[0].ErrorMessage == "" {
		t.Fatal("expected error message on failed item")
	}
}

func TestRunSkipsItemsWithValidationErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "IMG_0001.jpg"), 64)

	manager := ingest.NewManagerWithStages(cfg, store, nil, inspectStub(), &stubStage{
		execute: func(ctx context.Context, item *catalog.Item) error {
			return services.Wrap(services.ErrValidation, "process", "probe container",
				"no video stream", nil)
		},
	})

	report, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Skipped != 1 || report.Failed != 0 || report.Completed != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}

	summary, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %#v", summary)
	}

	items, err := store.List(context.Background(), catalog.StatusSkipped)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].ErrorMessage == "" {
		t.Fatalf("skipped items = %#v", items)
	}
}

func TestRunDoesNotReprocessCompletedItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "IMG_0001.jpg"), 64)

	executions := 0
	manager := ingest.NewManagerWithStages(cfg, store, nil, inspectStub(), &stubStage{
		execute: func(ctx context.Context, item *catalog.Item) error {
			executions++
			return nil
		},
	})

	if _, err := manager.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	report, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if executions != 1 {
		t.Fatalf("process executed %d times, want 1", executions)
	}
	if report.Scan.Known != 1 {
		t.Fatalf("known = %d, want 1", report.Scan.Known)
	}
}

func TestRunRefusesConcurrentRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	holder := flock.New(filepath.Join(cfg.Paths.LogDir, ingest.LockFileName))
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer func() { _ = holder.Unlock() }()

	manager := ingest.NewManagerWithStages(cfg, store, nil, inspectStub(), &stubStage{})
	if _, err := manager.Run(context.Background()); !errors.Is(err, ingest.ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
}

func TestRunResumesInterruptedProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	src := filepath.Join(cfg.Paths.InputDir, "MOV_0001.mp4")
	testsupport.WriteFile(t, src, 64)

	// Simulate an item abandoned mid-processing by a crashed run.
	item := testsupport.NewItem(t, store, src, catalog.KindVideo)
	captured := time.Date(2023, 12, 14, 10, 0, 0, 0, time.UTC)
	item.CapturedAt = &captured
	item.Status = catalog.StatusProcessing
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	inspections := 0
	manager := ingest.NewManagerWithStages(cfg, store, nil,
		&stubStage{execute: func(ctx context.Context, it *catalog.Item) error {
			inspections++
			captured := time.Date(2023, 12, 14, 10, 0, 0, 0, time.UTC)
			it.CapturedAt = &captured
			return nil
		}},
		&stubStage{},
	)

	report, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Completed != 1 {
		t.Fatalf("completed = %d, want 1", report.Completed)
	}
	if inspections != 0 {
		t.Fatalf("inspect ran %d times; a rolled-back processing item should skip inspection", inspections)
	}
}
