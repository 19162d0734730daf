package config

// Ingest mode values.
const (
	ModePhoto = "photo"
	ModeVideo = "video"
	ModeBoth  = "both"
)

const (
	defaultInputDir       = "~/Pictures/camera"
	defaultOutputDir      = "~/Pictures/output"
	defaultLogDir         = "~/.local/share/shoebox/logs"
	defaultMode           = ModeBoth
	defaultWorkers        = 1
	defaultAudioBitrate   = "192k"
	defaultConvertTimeout = 1800
	defaultProbeTimeout   = 30
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

func defaultPhotoExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

func defaultVideoExtensions() []string {
	return []string{
		".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mpg",
		".mpeg", ".m4v", ".3gp", ".3g2", ".ts", ".mts", ".m2ts", ".vob",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Ingest: Ingest{
			Mode:            defaultMode,
			PhotoExtensions: defaultPhotoExtensions(),
			VideoExtensions: defaultVideoExtensions(),
			Workers:         defaultWorkers,
			PreserveTimes:   true,
		},
		Video: Video{
			AudioBitrate:   defaultAudioBitrate,
			ConvertTimeout: defaultConvertTimeout,
			ProbeTimeout:   defaultProbeTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
