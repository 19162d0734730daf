package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/logging"
)

// ScanResult summarizes a catalog scan.
type ScanResult struct {
	Discovered int
	Known      int
	Ignored    int
}

// Scanner walks the input tree and catalogs media files.
type Scanner struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger

	photoExts map[string]struct{}
	videoExts map[string]struct{}
}

// NewScanner constructs a scanner honoring the configured mode and
// extension sets.
func NewScanner(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Scanner {
	s := &Scanner{
		cfg:       cfg,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "scanner"),
		photoExts: map[string]struct{}{},
		videoExts: map[string]struct{}{},
	}
	if cfg.PhotoEnabled() {
		for _, ext := range cfg.Ingest.PhotoExtensions {
			s.photoExts[ext] = struct{}{}
		}
	}
	if cfg.VideoEnabled() {
		for _, ext := range cfg.Ingest.VideoExtensions {
			s.videoExts[ext] = struct{}{}
		}
	}
	return s
}

// Scan recursively catalogs media files under the input directory. Files
// already cataloged count as known; files with out-of-scope extensions are
// ignored.
func (s *Scanner) Scan(ctx context.Context, runID string) (ScanResult, error) {
	var result ScanResult

	root := s.cfg.Paths.InputDir
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		kind, ok := s.classify(entry.Name())
		if !ok {
			result.Ignored++
			return nil
		}

		existing, err := s.store.GetBySourcePath(ctx, path)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Known++
			return nil
		}

		item, err := s.store.NewItem(ctx, path, kind)
		if err != nil {
			return err
		}
		item.RunID = runID
		if err := s.store.Update(ctx, item); err != nil {
			return err
		}
		result.Discovered++
		s.logger.Debug("cataloged media file",
			logging.String("path", path),
			logging.String("kind", string(kind)),
		)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("scan %s: %w", root, err)
	}

	s.logger.Info("scan finished",
		logging.Int("discovered", result.Discovered),
		logging.Int("known", result.Known),
		logging.Int("ignored", result.Ignored),
	)
	return result, nil
}

func (s *Scanner) classify(name string) (catalog.Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := s.photoExts[ext]; ok {
		return catalog.KindPhoto, true
	}
	if _, ok := s.videoExts[ext]; ok {
		return catalog.KindVideo, true
	}
	return "", false
}
