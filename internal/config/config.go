package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	Client   ClientConfig   `mapstructure:"client"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Blob     BlobConfig     `mapstructure:"blob"`
}

// ClientConfig is what the CLI needs to reach the API.
type ClientConfig struct {
	Token     string        `mapstructure:"token"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	DC        string        `mapstructure:"dc"` // default data center slug
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	FileOnly   bool   `mapstructure:"file_only"`
	MaxSizeMB  int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ServerConfig configures the local API emulator.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`

	// Credentials accepted by the emulator besides repository access keys.
	Token     string `mapstructure:"token"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	// PublicURL prefixes sharable links. Defaults to http://localhost:<port>/v2.
	PublicURL string `mapstructure:"public_url"`

	// MaxUploadMB bounds one multipart upload.
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// DatabaseConfig selects the metadata store of the emulator.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite file, or a file: URI
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	URL             string        `mapstructure:"url"` // full postgres URL, wins over the fields above
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// DSN renders the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		if d.URL != "" {
			return d.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	}
	return d.Path
}

// BlobConfig selects where the emulator keeps object content.
type BlobConfig struct {
	Backend   string `mapstructure:"backend"` // memory, local, s3, r2, s3compatible, minio
	Root      string `mapstructure:"root"`    // local backend directory
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// Load reads configPath (or config.yaml from ./configs, . or ~/.uthos), then
// .env, then the environment.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".uthos"))
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d/v2", cfg.Server.Port)
	}
	cfg.Server.PublicURL = strings.TrimSuffix(cfg.Server.PublicURL, "/")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.endpoint", "https://api.utho.com/v2")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.dc", "innoida")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("server.max_upload_mb", 64)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "file::memory:?cache=shared")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("blob.backend", "memory")
	v.SetDefault("blob.bucket", "uthos-devserver")
	v.SetDefault("blob.use_ssl", false)
	v.SetDefault("blob.root", "./data/blobs")
}

// bindEnv maps the conventional variable names onto config keys.
func bindEnv(v *viper.Viper) {
	v.BindEnv("client.token", "UTHO_TOKEN", "UTHO_API_KEY")
	v.BindEnv("client.access_key", "UTHO_ACCESS_KEY")
	v.BindEnv("client.secret_key", "UTHO_SECRET_KEY")
	v.BindEnv("client.endpoint", "UTHO_ENDPOINT")
	v.BindEnv("client.timeout", "UTHO_TIMEOUT")
	v.BindEnv("client.dc", "UTHO_DC")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.file", "LOG_FILE")

	v.BindEnv("server.token", "DEVSERVER_TOKEN")
	v.BindEnv("server.access_key", "DEVSERVER_ACCESS_KEY")
	v.BindEnv("server.secret_key", "DEVSERVER_SECRET_KEY")
	v.BindEnv("server.port", "PORT")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("blob.endpoint", "BLOB_ENDPOINT", "MINIO_ENDPOINT")
	v.BindEnv("blob.access_key", "BLOB_ACCESS_KEY", "MINIO_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	v.BindEnv("blob.secret_key", "BLOB_SECRET_KEY", "MINIO_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("blob.region", "BLOB_REGION", "AWS_REGION")
}
