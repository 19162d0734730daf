package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.Mode = strings.ToLower(strings.TrimSpace(c.Ingest.Mode))
	if c.Ingest.Mode == "" {
		c.Ingest.Mode = defaultMode
	}
	if len(c.Ingest.PhotoExtensions) == 0 {
		c.Ingest.PhotoExtensions = defaultPhotoExtensions()
	}
	if len(c.Ingest.VideoExtensions) == 0 {
		c.Ingest.VideoExtensions = defaultVideoExtensions()
	}
	c.Ingest.PhotoExtensions = normalizeExtensions(c.Ingest.PhotoExtensions)
	c.Ingest.VideoExtensions = normalizeExtensions(c.Ingest.VideoExtensions)
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = defaultWorkers
	}
}

func (c *Config) normalizeVideo() {
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	c.Video.AudioBitrate = strings.TrimSpace(c.Video.AudioBitrate)
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = defaultAudioBitrate
	}
	if c.Video.ConvertTimeout <= 0 {
		c.Video.ConvertTimeout = defaultConvertTimeout
	}
	if c.Video.ProbeTimeout <= 0 {
		c.Video.ProbeTimeout = defaultProbeTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeExtensions lowercases entries, guarantees a leading dot, and
// drops duplicates while preserving order.
func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		result = append(result, ext)
	}
	return result
}
