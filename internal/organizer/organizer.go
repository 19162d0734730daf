package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
)

// dayKeyLayout formats a capture time into the naming day key.
const dayKeyLayout = "2006_01_02"

// maxCounterProbes bounds the collision loop when on-disk files shadow the
// persisted counter.
const maxCounterProbes = 10000

// Organizer computes destinations and places photos into the output directory.
type Organizer struct {
	store  *catalog.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an organizer.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Organizer {
	return &Organizer{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organizer"),
	}
}

// DayKey returns the naming day key for a capture time.
func DayKey(capturedAt time.Time) string {
	return capturedAt.Format(dayKeyLayout)
}

// DestinationFor reserves the next date-based name for a capture time and
// returns the full output path. The extension keeps its leading dot and is
// lowercased.
func (o *Organizer) DestinationFor(ctx context.Context, capturedAt time.Time, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return "", errors.New("destination extension required")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	day := DayKey(capturedAt)
	for probe := 0; probe < maxCounterProbes; probe++ {
		counter, err := o.store.NextDayCounter(ctx, day)
		if err != nil {
			return "", err
		}
		name := fmt.Sprintf("%s_%03d%s", day, counter, ext)
		path := filepath.Join(o.cfg.Paths.OutputDir, name)
		if _, err := os.Stat(path); err == nil {
			// A previous run or a foreign file already owns this name;
			// advance the counter and try again.
			o.logger.Debug("destination name taken, advancing counter",
				logging.String("name", name),
			)
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat destination %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free destination name for day %s after %d attempts", day, maxCounterProbes)
}

// PlacePhoto copies a photo to its reserved destination with integrity
// verification and applies the capture time when configured.
func (o *Organizer) PlacePhoto(ctx context.Context, sourcePath, destPath string, capturedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	if err := fileutil.CopyFileVerified(sourcePath, destPath); err != nil {
		return fmt.Errorf("copy photo: %w", err)
	}
	return o.ApplyCaptureTime(destPath, capturedAt)
}

// ApplyCaptureTime sets the destination's atime and mtime to the capture
// time when ingest.preserve_times is enabled.
func (o *Organizer) ApplyCaptureTime(destPath string, capturedAt time.Time) error {
	if !o.cfg.Ingest.PreserveTimes {
		return nil
	}
	if err := os.Chtimes(destPath, capturedAt, capturedAt); err != nil {
		return fmt.Errorf("set file times: %w", err)
	}
	return nil
}
