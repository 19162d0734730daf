package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// LockFileName guards against concurrent ingest runs sharing a catalog.
const LockFileName = "shoebox.lock"

// ErrRunInProgress is returned when another process holds the run lock.
var ErrRunInProgress = errors.New("another ingest run is already in progress")

// RunReport summarizes a completed ingest run.
type RunReport struct {
	RunID     string
	Scan      ScanResult
	Completed int
	Failed    int
	Skipped   int
}

// Manager coordinates catalog scanning and stage execution for a run.
type Manager struct {
	cfg     *config.Config
	store   *catalog.Store
	logger  *slog.Logger
	scanner *Scanner
	inspect stage.Handler
	process stage.Handler

	mu        sync.Mutex
	completed int
	failed    int
	skipped   int
}

// NewManager constructs an ingest manager with default stage handlers.
func NewManager(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Manager {
	return NewManagerWithStages(cfg, store, logger,
		NewInspectStage(cfg, logger),
		NewProcessStage(cfg, store, logger),
	)
}

// NewManagerWithStages constructs a manager with injected stage handlers
// (used in tests).
func NewManagerWithStages(cfg *config.Config, store *catalog.Store, logger *slog.Logger, inspect, process stage.Handler) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "ingest"),
		scanner: NewScanner(cfg, store, logger),
		inspect: inspect,
		process: process,
	}
}

// Run scans the input directory and drives every waiting catalog item
// through inspection and processing. It holds an exclusive lock for the
// duration of the run so two processes never share day counters.
func (m *Manager) Run(ctx context.Context) (RunReport, error) {
	lock := flock.New(filepath.Join(m.cfg.Paths.LogDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return RunReport{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return RunReport{}, ErrRunInProgress
	}
	defer func() { _ = lock.Unlock() }()

	report := RunReport{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, m.logger)

	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		return report, fmt.Errorf("reset interrupted items: %w", err)
	} else if reset > 0 {
		logger.Info("reset interrupted items from a previous run", logging.Int64("count", reset))
	}

	report.Scan, err = m.scanner.Scan(ctx, report.RunID)
	if err != nil {
		return report, err
	}

	m.mu.Lock()
	m.completed = 0
	m.failed = 0
	m.skipped = 0
	m.mu.Unlock()

	var wg sync.WaitGroup
	workerErrs := make([]error, m.cfg.Ingest.Workers)
	for i := 0; i < m.cfg.Ingest.Workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			workerErrs[slot] = m.workLoop(ctx)
		}(i)
	}
	wg.Wait()

	for _, workerErr := range workerErrs {
		if workerErr != nil && !errors.Is(workerErr, context.Canceled) {
			return m.snapshotReport(report), workerErr
		}
	}

	report = m.snapshotReport(report)
	logger.Info("ingest run finished",
		logging.Int("discovered", report.Scan.Discovered),
		logging.Int("completed", report.Completed),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
	)
	return report, ctx.Err()
}

func (m *Manager) snapshotReport(report RunReport) RunReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	report.Completed = m.completed
	report.Failed = m.failed
	report.Skipped = m.skipped
	return report
}

// workLoop claims items until none are waiting. Items interrupted mid-run
// in a previous session resume at the processing stage.
func (m *Manager) workLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := m.store.Claim(ctx, catalog.StatusPending, catalog.StatusInspecting)
		if err != nil {
			return err
		}
		needsInspection := item != nil
		if item == nil {
			item, err = m.store.Claim(ctx, catalog.StatusInspected, catalog.StatusProcessing)
			if err != nil {
				return err
			}
		}
		if item == nil {
			return nil
		}

		m.runItem(ctx, item, needsInspection)
	}
}

func (m *Manager) runItem(ctx context.Context, item *catalog.Item, needsInspection bool) {
	itemCtx := services.WithItemID(ctx, item.ID)
	logger := logging.WithContext(itemCtx, m.logger)

	if needsInspection {
		if err := m.runStage(services.WithStage(itemCtx, "inspect"), m.inspect, item); err != nil {
			m.failItem(itemCtx, item, err)
			return
		}
		item.Status = catalog.StatusInspected
		if err := m.store.Update(itemCtx, item); err != nil {
			logger.Error("persist inspected item", logging.Error(err))
			return
		}
		item.Status = catalog.StatusProcessing
		if err := m.store.Update(itemCtx, item); err != nil {
			logger.Error("mark item processing", logging.Error(err))
			return
		}
	}

	if err := m.runStage(services.WithStage(itemCtx, "process"), m.process, item); err != nil {
		m.failItem(itemCtx, item, err)
		return
	}

	item.Status = catalog.StatusCompleted
	item.SetProgress("Completed", filepath.Base(item.DestPath), 100)
	if err := m.store.Update(itemCtx, item); err != nil {
		logger.Error("persist completed item", logging.Error(err))
		return
	}

	m.mu.Lock()
	m.completed++
	m.mu.Unlock()
}

func (m *Manager) runStage(ctx context.Context, handler stage.Handler, item *catalog.Item) error {
	if err := handler.Prepare(ctx, item); err != nil {
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		return err
	}
	return handler.Execute(ctx, item)
}

func (m *Manager) failItem(ctx context.Context, item *catalog.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)

	status := services.FailureStatus(stageErr)
	if status == catalog.StatusSkipped {
		logger.Warn("item skipped",
			logging.String("source_path", item.SourcePath),
			logging.Error(stageErr),
		)
		item.SetSkipped(stageErr.Error())
	} else {
		logger.Error("item failed",
			logging.String("source_path", item.SourcePath),
			logging.Error(stageErr),
		)
		item.SetFailed(stageErr.Error())
	}

	if err := m.store.Update(ctx, item); err != nil {
		logger.Error("persist failed item", logging.Error(err))
	}

	m.mu.Lock()
	if status == catalog.StatusSkipped {
		m.skipped++
	} else {
		m.failed++
	}
	m.mu.Unlock()
}
