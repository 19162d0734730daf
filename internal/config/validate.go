package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.input_dir")
	}
	return nil
}

func (c *Config) validateIngest() error {
	switch c.Ingest.Mode {
	case ModePhoto, ModeVideo, ModeBoth:
	default:
		return fmt.Errorf("ingest.mode must be %q, %q, or %q", ModePhoto, ModeVideo, ModeBoth)
	}
	if c.PhotoEnabled() && len(c.Ingest.PhotoExtensions) == 0 {
		return errors.New("ingest.photo_extensions must not be empty when photos are in scope")
	}
	if c.VideoEnabled() && len(c.Ingest.VideoExtensions) == 0 {
		return errors.New("ingest.video_extensions must not be empty when videos are in scope")
	}
	for _, photoExt := range c.Ingest.PhotoExtensions {
		for _, videoExt := range c.Ingest.VideoExtensions {
			if photoExt == videoExt {
				return fmt.Errorf("extension %q listed as both photo and video", photoExt)
			}
		}
	}
	if c.Ingest.Workers < 1 || c.Ingest.Workers > 32 {
		return errors.New("ingest.workers must be between 1 and 32")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ensurePositiveMap(map[string]int{
		"video.convert_timeout": c.Video.ConvertTimeout,
		"video.probe_timeout":   c.Video.ProbeTimeout,
	}); err != nil {
		return err
	}
	if !validBitrate(c.Video.AudioBitrate) {
		return fmt.Errorf("video.audio_bitrate %q is not a valid ffmpeg bitrate (e.g. \"192k\")", c.Video.AudioBitrate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// validBitrate accepts ffmpeg-style bitrates: digits with an optional
// k/K/m/M suffix.
func validBitrate(value string) bool {
	if value == "" {
		return false
	}
	digits := value
	switch value[len(value)-1] {
	case 'k', 'K', 'm', 'M':
		digits = value[:len(value)-1]
	}
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
