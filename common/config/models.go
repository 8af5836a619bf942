package config

type GeneralConfig struct {
	BindAddress  string `yaml:"bindAddress"`
	Port         int    `yaml:"port"`
	LogDirectory string `yaml:"logDirectory"`
	LogColors    bool   `yaml:"logColors"`
	JsonLogs     bool   `yaml:"jsonLogs"`
	LogLevel     string `yaml:"logLevel"`
}

type DatabaseConfig struct {
	Postgres string        `yaml:"postgres"`
	Pool     *DbPoolConfig `yaml:"pool"`
}

type DbPoolConfig struct {
	MaxConnections int `yaml:"maxConnections"`
	MaxIdle        int `yaml:"maxIdleConnections"`
}

// BlobStoreConfig mirrors the datastore blocks most S3-compatible providers
// need. Type is "s3" or "file"; Options carries type-specific settings such
// as endpoint, bucketName, accessKeyId, accessSecret, ssl, publicBaseUrl
// (s3) or path (file).
type BlobStoreConfig struct {
	Type    string            `yaml:"type"`
	Options map[string]string `yaml:"opts"`
}

type MediaConfig struct {
	// MaxUrlLength guards the backing store against oversized inline
	// payloads (embedded base64 data URLs and the like).
	MaxUrlLength int `yaml:"maxUrlLength"`

	// BlobHosts are hosts whose URLs get full normalization (query
	// stripping, percent-decoding). Anything else is only trimmed.
	BlobHosts []string `yaml:"blobHosts"`
}

type SharingConfig struct {
	NumWorkers int `yaml:"numWorkers"`
}

type ArchivesConfig struct {
	NumWorkers       int   `yaml:"numWorkers"`
	PreviewSizeBytes int64 `yaml:"previewSizeBytes"`
}

type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bindAddress"`
	Port        int    `yaml:"port"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

type MainConfig struct {
	General   GeneralConfig   `yaml:"repo"`
	Database  DatabaseConfig  `yaml:"database"`
	BlobStore BlobStoreConfig `yaml:"blobStore"`
	Media     MediaConfig     `yaml:"media"`
	Sharing   SharingConfig   `yaml:"sharing"`
	Archives  ArchivesConfig  `yaml:"archives"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Sentry    SentryConfig    `yaml:"sentry"`
}
