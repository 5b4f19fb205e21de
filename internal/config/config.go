package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, logging, website checker, place
// discovery, exports, HTTP server, database connection, background workers
// and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// Log configures the optional rotating log file
	Log struct {
		// File is the log file path, empty disables file logging
		File string `env:"LOG_FILE" env-default:"" yaml:"file"`
		// MaxSizeMB is the size at which the log file is rotated
		MaxSizeMB int `env:"LOG_MAX_SIZE_MB" env-default:"10" yaml:"maxSizeMB"`
		// MaxBackups is the number of rotated files to keep
		MaxBackups int `env:"LOG_MAX_BACKUPS" env-default:"5" yaml:"maxBackups"`
		// MaxAgeDays is how long rotated files are kept
		MaxAgeDays int `env:"LOG_MAX_AGE_DAYS" env-default:"14" yaml:"maxAgeDays"`
	} `yaml:"log"`

	// Checker contains the website prober settings
	Checker struct {
		// ConcurrencyLimit is the maximum number of websites probed at once
		ConcurrencyLimit int `env:"CHECKER_CONCURRENCY_LIMIT" env-default:"100" yaml:"concurrencyLimit"`
		// Timeout bounds every network exchange of a probe attempt
		Timeout time.Duration `env:"CHECKER_TIMEOUT" env-default:"10s" yaml:"timeout"`
		// MaxAttempts is the number of attempts made on unclassified failures, first one included
		MaxAttempts int `env:"CHECKER_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// RetryBackoff is multiplied by the attempt number before each retry
		RetryBackoff time.Duration `env:"CHECKER_RETRY_BACKOFF" env-default:"500ms" yaml:"retryBackoff"`
		// SkipContentCheck disables parking and under-construction page detection
		SkipContentCheck bool `env:"CHECKER_SKIP_CONTENT_CHECK" env-default:"false" yaml:"skipContentCheck"`
		// MaxRedirects caps the redirect chain of a probe
		MaxRedirects int `env:"CHECKER_MAX_REDIRECTS" env-default:"10" yaml:"maxRedirects"`
		// MaxBodyBytes caps how much of a page is inspected
		MaxBodyBytes int64 `env:"CHECKER_MAX_BODY_BYTES" env-default:"1048576" yaml:"maxBodyBytes"`
		// ShortBodyThreshold is the page length under which one placeholder phrase is enough
		ShortBodyThreshold int `env:"CHECKER_SHORT_BODY_THRESHOLD" env-default:"2000" yaml:"shortBodyThreshold"`
		// UserAgent overrides the browser-like user agent
		UserAgent string `env:"CHECKER_USER_AGENT" env-default:"" yaml:"userAgent"`
		// AcceptLanguage overrides the Accept-Language header
		AcceptLanguage string `env:"CHECKER_ACCEPT_LANGUAGE" env-default:"" yaml:"acceptLanguage"`
		// DeadStatuses overrides the statuses counted as dead
		DeadStatuses []string `env:"CHECKER_DEAD_STATUSES" env-separator:"," yaml:"deadStatuses"`
		// SkipDomains overrides the platform domains that are never probed
		SkipDomains []string `env:"CHECKER_SKIP_DOMAINS" env-separator:"," yaml:"skipDomains"`
		// ParkingDomains overrides the registrar and parking domains
		ParkingDomains []string `env:"CHECKER_PARKING_DOMAINS" env-separator:"," yaml:"parkingDomains"`
	} `yaml:"checker"`

	// Places contains the Google Places API settings
	Places struct {
		// APIKey authenticates against the Places API
		APIKey string `env:"GOOGLE_MAPS_API_KEY" env-default:"" yaml:"apiKey"`
		// BaseURL is the Places API root
		BaseURL string `env:"PLACES_BASE_URL" env-default:"https://maps.googleapis.com/maps/api/place" yaml:"baseURL"` //nolint: lll
		// Timeout bounds a single API call
		Timeout time.Duration `env:"PLACES_TIMEOUT" env-default:"30s" yaml:"timeout"`
		// RequestsPerSecond paces API calls
		RequestsPerSecond float64 `env:"PLACES_REQUESTS_PER_SECOND" env-default:"10" yaml:"requestsPerSecond"`
		// PageTokenDelay is the wait before a next page token becomes valid
		PageTokenDelay time.Duration `env:"PLACES_PAGE_TOKEN_DELAY" env-default:"2s" yaml:"pageTokenDelay"`
		// MaxResultsPerKeyword caps how many places a single keyword may yield
		MaxResultsPerKeyword int `env:"PLACES_MAX_RESULTS_PER_KEYWORD" env-default:"60" yaml:"maxResultsPerKeyword"`
		// Radius is the search radius in meters
		Radius int `env:"PLACES_RADIUS" env-default:"10000" yaml:"radius"`
		// Language is the result language
		Language string `env:"PLACES_LANGUAGE" env-default:"th" yaml:"language"`
		// Region biases results to a country
		Region string `env:"PLACES_REGION" env-default:"th" yaml:"region"`
	} `yaml:"places"`

	// Search contains the default discovery query
	Search struct {
		// Keywords are searched one after another
		Keywords []string `env:"SEARCH_KEYWORDS" env-separator:"," yaml:"keywords"`
		// City is a Thai province name in English or Thai
		City string `env:"SEARCH_CITY" env-default:"" yaml:"city"`
		// Bounds is "southLat,westLng,northLat,eastLng"
		Bounds string `env:"SEARCH_BOUNDS" env-default:"" yaml:"bounds"`
		// GridStepKm is the spacing between grid points of a bounds search
		GridStepKm float64 `env:"SEARCH_GRID_STEP_KM" env-default:"5" yaml:"gridStepKm"`
	} `yaml:"search"`

	// Filter contains the default lead filter
	Filter struct {
		// MinRating is the lowest accepted rating
		MinRating float64 `env:"FILTER_MIN_RATING" env-default:"0" yaml:"minRating"`
		// MinReviews is the lowest accepted number of reviews
		MinReviews int `env:"FILTER_MIN_REVIEWS" env-default:"0" yaml:"minReviews"`
		// RequirePhone rejects leads without a phone number
		RequirePhone bool `env:"FILTER_REQUIRE_PHONE" env-default:"false" yaml:"requirePhone"`
		// ExcludeKeywords rejects businesses whose name contains any of them
		ExcludeKeywords []string `env:"FILTER_EXCLUDE_KEYWORDS" env-separator:"," yaml:"excludeKeywords"`
	} `yaml:"filter"`

	// Output contains export settings
	Output struct {
		// Dir is where exports are written
		Dir string `env:"OUTPUT_DIR" env-default:"output" yaml:"dir"`
		// LeadsFilename is the base name of the leads export
		LeadsFilename string `env:"OUTPUT_LEADS_FILENAME" env-default:"leads" yaml:"leadsFilename"`
	} `yaml:"output"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"5m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"4m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// MaxURLsPerRequest caps the batch size accepted by the checks endpoint
		MaxURLsPerRequest int `env:"HTTP_MAX_URLS_PER_REQUEST" env-default:"500" yaml:"maxURLsPerRequest"`
		// JWTPublicKey verifies bearer tokens; empty disables authentication
		JWTPublicKey string `env:"HTTP_JWT_PUBLIC_KEY" env-default:"" yaml:"jwtPublicKey"`
		// AllowedOrigins configures CORS
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*" yaml:"allowedOrigins"`
	} `yaml:"http"`

	// JWT contains token issuing settings
	JWT struct {
		// PrivateKey is the PEM encoded RSA key used by the jwt command
		PrivateKey string `env:"JWT_PRIVATE_KEY" env-default:"" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"finder" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Worker contains background recheck settings
	Worker struct {
		// MaxWorkers is the number of concurrent recheck jobs
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"20" yaml:"maxWorkers"`
		// MaxAttempts is how many times a failed recheck job is retried
		MaxAttempts int `env:"WORKER_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// UniquePeriod deduplicates recheck jobs of the same business
		UniquePeriod time.Duration `env:"WORKER_UNIQUE_PERIOD" env-default:"1h" yaml:"uniquePeriod"`
		// StaleAfter selects businesses whose last check is older than this
		StaleAfter time.Duration `env:"WORKER_STALE_AFTER" env-default:"168h" yaml:"staleAfter"`
	} `yaml:"worker"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// Default returns a Config populated from defaults and environment variables
// only, for runs without a config file.
func Default() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read environment: %w", err)
	}

	return &cfg, nil
}
