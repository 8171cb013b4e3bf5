package config

const (
	defaultBaseURL        = "http://127.0.0.1:8080"
	defaultLogsPath       = "/api/v1/logs"
	defaultTimeoutSeconds = 15
	defaultLines          = 500
	defaultPollIntervalMS = 2000
	defaultMaxEntries     = 5000
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultExportDir      = "~/.local/share/slotwatch/exports"
	defaultExportFormat   = "jsonl"

	minPollIntervalMS = 250
	maxTimeoutSeconds = 300
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Remote: Remote{
			BaseURL:        defaultBaseURL,
			LogsPath:       defaultLogsPath,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Sync: Sync{
			Lines:          defaultLines,
			PollIntervalMS: defaultPollIntervalMS,
			MaxEntries:     defaultMaxEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Export: Export{
			Dir:    defaultExportDir,
			Format: defaultExportFormat,
		},
	}
}
