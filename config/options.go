package config

const (
	defaultLogFile           = "bookhive.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8000
	defaultHost              = "0.0.0.0"
	defaultData              = "data"
	defaultScrapeBaseURL     = "https://books.toscrape.com/"
	defaultScrapeTimeout     = 30
	defaultUserAgent         = "bookhive/1.0 (+https://github.com/bookhive/bookhive)"
	defaultMetricsCollector  = false
)

// Why use mapstructure instead of json, if use json as field tags, it can't recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated, in MiB
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database file
	DSN string `mapstructure:"dsn"`
	// CSVPath is the path of the append-only CSV the scraper writes next to the database
	CSVPath string `mapstructure:"csv_path"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data
	Data string `mapstructure:"data"`
	// ScrapeBaseURL is the root of the catalog site the scraper crawls
	ScrapeBaseURL string `mapstructure:"scrape_base_url"`
	// ScrapeTimeout is the fixed per-request timeout of the scraper, in seconds
	ScrapeTimeout int `mapstructure:"scrape_timeout"`
	// UserAgent is sent on every scraper request
	UserAgent string `mapstructure:"user_agent"`
	// MetricsCollector enables the /metrics endpoint on the API server
	MetricsCollector bool `mapstructure:"metrics_collector"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:           defaultLogFile,
		LogLevel:          defaultLogLevel,
		LogFileMaxSize:    defaultLogFileMaxSize,
		LogFileMaxBackups: defaultLogFileMaxBackups,
		LogFileMaxAge:     defaultLogFileMaxAge,
		LogCompress:       defaultLogCompress,
		Port:              defaultPort,
		Host:              defaultHost,
		Data:              defaultData,
		ScrapeBaseURL:     defaultScrapeBaseURL,
		ScrapeTimeout:     defaultScrapeTimeout,
		UserAgent:         defaultUserAgent,
		MetricsCollector:  defaultMetricsCollector,
	}
	return Opts
}
