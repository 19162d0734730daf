package timestamp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/media/ffprobe"
)

// inspectVideo is swapped out in tests to avoid invoking a real ffprobe.
var inspectVideo = ffprobe.Inspect

// Resolution is a resolved capture time together with its provenance.
type Resolution struct {
	CapturedAt time.Time
	Source     catalog.TimeSource
}

// Resolver determines capture times for photos and videos.
type Resolver struct {
	probeBinary  string
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewResolver constructs a resolver from application config.
func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		probeBinary:  cfg.FFprobeBinary(),
		probeTimeout: time.Duration(cfg.Video.ProbeTimeout) * time.Second,
		logger:       logging.NewComponentLogger(logger, "timestamp"),
	}
}

// Photo resolves the capture time of a photo from its EXIF DateTime tag,
// falling back to the file modification time when the tag is absent or the
// EXIF block cannot be decoded.
func (r *Resolver) Photo(path string) (Resolution, error) {
	fallback, err := mtimeResolution(path)
	if err != nil {
		return Resolution{}, err
	}

	captured, err := exifDateTime(path)
	if err != nil {
		r.logger.Debug("exif unavailable, using mtime",
			logging.String("path", path),
			logging.Error(err),
		)
		return fallback, nil
	}
	return Resolution{CapturedAt: captured, Source: catalog.TimeSourceEXIF}, nil
}

// Video resolves the capture time of a video from the container's
// creation_time tag via ffprobe, falling back to the file modification time
// when the tag is missing or the probe fails.
func (r *Resolver) Video(ctx context.Context, path string) (Resolution, error) {
	fallback, err := mtimeResolution(path)
	if err != nil {
		return Resolution{}, err
	}

	probeCtx := ctx
	if r.probeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, r.probeTimeout)
		defer cancel()
	}

	result, err := inspectVideo(probeCtx, r.probeBinary, path)
	if err != nil {
		r.logger.Warn("ffprobe failed, using mtime",
			logging.String("path", path),
			logging.Error(err),
		)
		return fallback, nil
	}

	if captured, ok := result.CreationTime(); ok {
		return Resolution{CapturedAt: captured, Source: catalog.TimeSourceContainer}, nil
	}
	r.logger.Debug("no creation_time tag, using mtime", logging.String("path", path))
	return fallback, nil
}

func mtimeResolution(path string) (Resolution, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Resolution{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Resolution{CapturedAt: info.ModTime(), Source: catalog.TimeSourceMtime}, nil
}
