package config

import "audioscribe/internal/verify"

const (
	defaultOutputDir       = "~/.local/share/audioscribe/outputs"
	defaultLibraryDir      = "~/music"
	defaultLogDir          = "~/.local/share/audioscribe/logs"
	defaultDataDir         = "~/.local/share/audioscribe"
	defaultYtDlpBinary     = "yt-dlp"
	defaultFFprobeBinary   = "ffprobe"
	defaultDownloadTimeout = 900
	defaultProbeTimeout    = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			DataDir:    defaultDataDir,
		},
		Tools: Tools{
			YtDlpBinary:     defaultYtDlpBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			DownloadTimeout: defaultDownloadTimeout,
			ProbeTimeout:    defaultProbeTimeout,
		},
		Verify: Verify{
			MinDurationSeconds: verify.MinDurationSeconds,
			MinBitrateKbps:     verify.MinBitrateKbps,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
