package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Resolve  ResolveConfig  `mapstructure:"resolve"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ResolveConfig contains search and fallback configuration
type ResolveConfig struct {
	PlatformOrder  []string      `mapstructure:"platform_order"`
	SearchLimit    int           `mapstructure:"search_limit"`
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`
	YouTubeCookies string        `mapstructure:"youtube_cookies"` // optional cookies.txt
	MixcloudAPI    string        `mapstructure:"mixcloud_api"`
	BandcampURL    string        `mapstructure:"bandcamp_url"`
}

// ExtractConfig contains extraction backend configuration
type ExtractConfig struct {
	YTDLPBinary string        `mapstructure:"ytdlp_binary"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PipelineConfig contains download/transcode configuration
type PipelineConfig struct {
	WorkDir        string        `mapstructure:"work_dir"`
	CompletedDir   string        `mapstructure:"completed_dir"`
	FFmpegBinary   string        `mapstructure:"ffmpeg_binary"`
	AudioFormat    string        `mapstructure:"audio_format"`
	AudioBitrate   string        `mapstructure:"audio_bitrate"`
	SampleRate     int           `mapstructure:"sample_rate"`
	OverallTimeout time.Duration `mapstructure:"overall_timeout"`
}

// JournalConfig contains request journal configuration
type JournalConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	EventsDir  string `mapstructure:"events_dir"`  // directory for categorized event logs
}

// Order returns the configured platform order as typed tags.
func (c *ResolveConfig) Order() PlatformOrder {
	order := make(PlatformOrder, 0, len(c.PlatformOrder))
	for _, tag := range c.PlatformOrder {
		order = append(order, Platform(tag))
	}
	return order
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Resolve: ResolveConfig{
			PlatformOrder:  []string{"soundcloud", "bandcamp", "mixcloud", "youtube"},
			SearchLimit:    6,
			AdapterTimeout: 20 * time.Second,
			MixcloudAPI:    "https://api.mixcloud.com",
			BandcampURL:    "https://bandcamp.com",
		},
		Extract: ExtractConfig{
			YTDLPBinary: "yt-dlp",
			Timeout:     45 * time.Second,
		},
		Pipeline: PipelineConfig{
			WorkDir:        "$HOME/.tunefetch/work",
			CompletedDir:   "$HOME/.tunefetch/completed",
			FFmpegBinary:   "ffmpeg",
			AudioFormat:    "mp3",
			AudioBitrate:   "192k",
			SampleRate:     44100,
			OverallTimeout: 10 * time.Minute,
		},
		Journal: JournalConfig{
			DatabasePath: "$HOME/.tunefetch/journal.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			EventsDir:  "$HOME/.tunefetch/logs",
		},
	}
}
