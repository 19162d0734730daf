package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/media/ffprobe"
	"shoebox/internal/organizer"
	"shoebox/internal/services"
	"shoebox/internal/services/ffmpeg"
)

// ProcessStage copies photos and converts videos into the output directory.
type ProcessStage struct {
	cfg       *config.Config
	store     *catalog.Store
	organizer *organizer.Organizer
	converter ffmpeg.Client
	inspect   func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	logger    *slog.Logger
}

// NewProcessStage constructs the processing stage handler with default
// collaborators.
func NewProcessStage(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *ProcessStage {
	return NewProcessStageWithDependencies(cfg, store, logger,
		ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary())), ffprobe.Inspect)
}

// NewProcessStageWithDependencies allows injecting collaborators (used in tests).
func NewProcessStageWithDependencies(
	cfg *config.Config,
	store *catalog.Store,
	logger *slog.Logger,
	converter ffmpeg.Client,
	inspect func(ctx context.Context, binary, path string) (ffprobe.Result, error),
) *ProcessStage {
	return &ProcessStage{
		cfg:       cfg,
		store:     store,
		organizer: organizer.New(cfg, store, logger),
		converter: converter,
		inspect:   inspect,
		logger:    logging.NewComponentLogger(logger, "process"),
	}
}

func (s *ProcessStage) Prepare(ctx context.Context, item *catalog.Item) error {
	if item.CapturedAt == nil {
		return services.Wrap(services.ErrValidation, "process", "validate inputs",
			"no capture time resolved; the item must pass inspection first", nil)
	}
	item.SetProgress("Processing", "Preparing output placement", 0)
	item.ErrorMessage = ""
	return nil
}

func (s *ProcessStage) Execute(ctx context.Context, item *catalog.Item) error {
	// Items cataloged under a broader mode may linger as pending after the
	// mode narrows; they stay in the catalog but are not processed.
	switch item.Kind {
	case catalog.KindPhoto:
		if !s.cfg.PhotoEnabled() {
			return services.Wrap(services.ErrConfiguration, "process", "check mode",
				fmt.Sprintf("photos are out of scope for mode %q", s.cfg.Ingest.Mode), nil)
		}
		return s.processPhoto(ctx, item)
	case catalog.KindVideo:
		if !s.cfg.VideoEnabled() {
			return services.Wrap(services.ErrConfiguration, "process", "check mode",
				fmt.Sprintf("videos are out of scope for mode %q", s.cfg.Ingest.Mode), nil)
		}
		return s.processVideo(ctx, item)
	default:
		return services.Wrap(services.ErrValidation, "process", "classify", fmt.Sprintf("unknown media kind %q", item.Kind), nil)
	}
}

func (s *ProcessStage) processPhoto(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	captured := *item.CapturedAt

	dest, err := s.organizer.DestinationFor(ctx, captured, filepath.Ext(item.SourcePath))
	if err != nil {
		return services.Wrap(services.ErrTransient, "process", "reserve destination", item.SourcePath, err)
	}
	item.DestPath = dest
	item.SetProgress("Processing", fmt.Sprintf("Copying to %s", filepath.Base(dest)), 10)

	if err := s.organizer.PlacePhoto(ctx, item.SourcePath, dest, captured); err != nil {
		return services.Wrap(services.ErrTransient, "process", "copy photo", item.SourcePath, err)
	}

	logger.Info("photo ingested",
		logging.String("source_path", item.SourcePath),
		logging.String("dest_path", dest),
	)
	return nil
}

func (s *ProcessStage) processVideo(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	captured := *item.CapturedAt

	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Video.ProbeTimeout)*time.Second)
	probe, probeErr := s.inspect(probeCtx, s.cfg.FFprobeBinary(), item.SourcePath)
	cancel()
	audioCodec := ""
	durationSeconds := 0.0
	if probeErr != nil {
		// Conversion can still work; ffmpeg will transcode the audio.
		logger.Warn("audio probe failed before conversion",
			logging.String("source_path", item.SourcePath),
			logging.Error(probeErr),
		)
	} else {
		if probe.VideoStreamCount() == 0 {
			return services.Wrap(services.ErrValidation, "process", "probe container",
				fmt.Sprintf("%s has no video stream", item.SourcePath), nil)
		}
		audioCodec = probe.FirstAudioCodec()
		durationSeconds = probe.DurationSeconds()
		logger.Debug("container probed",
			logging.String("source_path", item.SourcePath),
			logging.Int("video_streams", probe.VideoStreamCount()),
			logging.Int("audio_streams", probe.AudioStreamCount()),
			logging.Int64("size_bytes", probe.SizeBytes()),
		)
	}

	dest, err := s.organizer.DestinationFor(ctx, captured, ".mp4")
	if err != nil {
		return services.Wrap(services.ErrTransient, "process", "reserve destination", item.SourcePath, err)
	}
	item.DestPath = dest
	item.SetProgress("Processing", fmt.Sprintf("Converting to %s", filepath.Base(dest)), 0)

	convertCtx := ctx
	if s.cfg.Video.ConvertTimeout > 0 {
		var convertCancel context.CancelFunc
		convertCtx, convertCancel = context.WithTimeout(ctx, time.Duration(s.cfg.Video.ConvertTimeout)*time.Second)
		defer convertCancel()
	}

	req := ffmpeg.ConvertRequest{
		InputPath:       item.SourcePath,
		OutputPath:      dest,
		AudioCodec:      audioCodec,
		AudioBitrate:    s.cfg.Video.AudioBitrate,
		DurationSeconds: durationSeconds,
	}
	err = s.converter.Convert(convertCtx, req, func(update ffmpeg.ProgressUpdate) {
		message := fmt.Sprintf("Converting to %s", filepath.Base(dest))
		if update.Speed != "" {
			message = fmt.Sprintf("%s (%s)", message, update.Speed)
		}
		item.SetProgress("Processing", message, update.Percent)
		if updateErr := s.store.Update(ctx, item); updateErr != nil {
			logger.Warn("progress update failed", logging.Error(updateErr))
		}
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "process", "convert video", item.SourcePath, err)
	}

	if err := s.organizer.ApplyCaptureTime(dest, captured); err != nil {
		return services.Wrap(services.ErrTransient, "process", "finalize output", dest, err)
	}

	logger.Info("video ingested",
		logging.String("source_path", item.SourcePath),
		logging.String("dest_path", dest),
		logging.String("audio_codec", audioOrUnknown(audioCodec)),
	)
	return nil
}

func audioOrUnknown(codec string) string {
	if strings.TrimSpace(codec) == "" {
		return "unknown"
	}
	return codec
}
