package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shoebox/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.InputDir != filepath.Join(tempHome, "Pictures", "camera") {
		t.Fatalf("unexpected input dir: %q", cfg.Paths.InputDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "Pictures", "output") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "shoebox", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Ingest.Mode != config.ModeBoth {
		t.Fatalf("unexpected default mode: %q", cfg.Ingest.Mode)
	}
	if !cfg.Ingest.PreserveTimes {
		t.Fatal("expected preserve_times enabled by default")
	}
	if cfg.Video.AudioBitrate != "192k" {
		t.Fatalf("unexpected default audio bitrate: %q", cfg.Video.AudioBitrate)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected default binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	// The input directory must not be created on the user's behalf.
	if _, err := os.Stat(cfg.Paths.InputDir); !os.IsNotExist(err) {
		t.Fatalf("expected input dir to stay absent, stat err: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shoebox.toml")

	type payload struct {
		Paths struct {
			InputDir  string `toml:"input_dir"`
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Ingest struct {
			Mode            string   `toml:"mode"`
			PhotoExtensions []string `toml:"photo_extensions"`
			Workers         int      `toml:"workers"`
		} `toml:"ingest"`
		Video struct {
			AudioBitrate   string `toml:"audio_bitrate"`
			ConvertTimeout int    `toml:"convert_timeout"`
		} `toml:"video"`
	}
	custom := payload{}
	custom.Paths.InputDir = filepath.Join(tempDir, "in")
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Ingest.Mode = "photo"
	custom.Ingest.PhotoExtensions = []string{"JPG", ".Jpeg"}
	custom.Ingest.Workers = 4
	custom.Video.AudioBitrate = "256k"
	custom.Video.ConvertTimeout = 600

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Ingest.Mode != config.ModePhoto {
		t.Fatalf("expected photo mode, got %q", cfg.Ingest.Mode)
	}
	if cfg.Ingest.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Ingest.Workers)
	}
	if cfg.Video.AudioBitrate != "256k" {
		t.Fatalf("expected bitrate override, got %q", cfg.Video.AudioBitrate)
	}
	if cfg.Video.ConvertTimeout != 600 {
		t.Fatalf("expected convert timeout 600, got %d", cfg.Video.ConvertTimeout)
	}

	// Extensions normalize to lowercase dotted form.
	want := []string{".jpg", ".jpeg"}
	if len(cfg.Ingest.PhotoExtensions) != len(want) {
		t.Fatalf("unexpected photo extensions: %v", cfg.Ingest.PhotoExtensions)
	}
	for i, ext := range want {
		if cfg.Ingest.PhotoExtensions[i] != ext {
			t.Fatalf("unexpected photo extensions: %v", cfg.Ingest.PhotoExtensions)
		}
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad mode", "[ingest]\nmode = \"everything\"\n"},
		{"same input and output", "[paths]\ninput_dir = \"/tmp/same\"\noutput_dir = \"/tmp/same\"\n"},
		{"bad bitrate", "[video]\naudio_bitrate = \"loud\"\n"},
		{"too many workers", "[ingest]\nworkers = 64\n"},
		{"bad log level", "[logging]\nlevel = \"verbose\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "shoebox.toml")
			if err := os.WriteFile(configPath, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(configPath); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "input_dir") {
		t.Fatalf("sample config missing input_dir: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Ingest.Mode != config.ModeBoth {
		t.Fatalf("expected sample mode both, got %q", cfg.Ingest.Mode)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.PhotoExtensions = []string{".jpg"}
	cfg.Ingest.VideoExtensions = []string{".jpg"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected overlapping extension sets to fail validation")
	}
}
