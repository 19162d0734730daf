package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/services"
	"shoebox/internal/timestamp"
)

// InspectStage resolves capture times for cataloged items.
type InspectStage struct {
	resolver *timestamp.Resolver
	logger   *slog.Logger
}

// NewInspectStage constructs the inspection stage handler.
func NewInspectStage(cfg *config.Config, logger *slog.Logger) *InspectStage {
	return &InspectStage{
		resolver: timestamp.NewResolver(cfg, logger),
		logger:   logging.NewComponentLogger(logger, "inspect"),
	}
}

func (s *InspectStage) Prepare(ctx context.Context, item *catalog.Item) error {
	item.SetProgress("Inspecting", "Resolving capture time", 0)
	item.ErrorMessage = ""
	return nil
}

func (s *InspectStage) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	var (
		resolution timestamp.Resolution
		err        error
	)
	switch item.Kind {
	case catalog.KindPhoto:
		resolution, err = s.resolver.Photo(item.SourcePath)
	case catalog.KindVideo:
		resolution, err = s.resolver.Video(ctx, item.SourcePath)
	default:
		return services.Wrap(services.ErrValidation, "inspect", "classify", fmt.Sprintf("unknown media kind %q", item.Kind), nil)
	}
	if err != nil {
		return services.Wrap(services.ErrNotFound, "inspect", "resolve capture time", item.SourcePath, err)
	}

	captured := resolution.CapturedAt
	item.CapturedAt = &captured
	item.TimeSource = resolution.Source
	item.SetProgress("Inspected", "Capture time resolved", 100)

	logger.Info("capture time resolved",
		logging.String("source_path", item.SourcePath),
		logging.Time("captured_at", captured),
		logging.String("time_source", string(resolution.Source)),
	)
	return nil
}
