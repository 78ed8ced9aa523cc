package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Database DatabaseConfig `mapstructure:"database"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Blob     BlobConfig     `mapstructure:"blob"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StoreConfig selects the document store backend: github, mongo, sqlite or file.
type StoreConfig struct {
	Backend      string `mapstructure:"backend"`
	DocumentPath string `mapstructure:"document_path"`
	BackupDir    string `mapstructure:"backup_dir"`
	FallbackPath string `mapstructure:"fallback_path"`
	FileRoot     string `mapstructure:"file_root"`
}

// GitHubConfig is shared by the github document and blob backends.
type GitHubConfig struct {
	Token  string `mapstructure:"token"`
	Repo   string `mapstructure:"repo"` // owner/name
	Owner  string `mapstructure:"owner"`
	Name   string `mapstructure:"name"`
	Branch string `mapstructure:"branch"`
	APIURL string `mapstructure:"api_url"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// BlobConfig selects where uploaded clips go: s3, github or local.
type BlobConfig struct {
	Backend    string `mapstructure:"backend"`
	VideosDir  string `mapstructure:"videos_dir"`
	LocalDir   string `mapstructure:"local_dir"`
	PublicBase string `mapstructure:"public_base"`
}

// S3Config points the blob store at AWS S3 or an S3 compatible endpoint.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type AuthConfig struct {
	HashScheme string `mapstructure:"hash_scheme"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

var ErrMissingGitHubRepo = errors.New("github backend needs github.repo or github.owner and github.name")

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if config.GitHub.Repo == "" && config.GitHub.Owner != "" && config.GitHub.Name != "" {
		config.GitHub.Repo = config.GitHub.Owner + "/" + config.GitHub.Name
	}
	if config.usesGitHub() && config.GitHub.Repo == "" {
		return config, ErrMissingGitHubRepo
	}
	return config, nil
}

func (c Config) usesGitHub() bool {
	return c.Store.Backend == "github" || c.Blob.Backend == "github"
}

// setDefaults registers every key so AutomaticEnv can override keys
// missing from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.document_path", "data/storage.json")
	v.SetDefault("store.backup_dir", "data/backups")
	v.SetDefault("store.fallback_path", "data/storage.local.json")
	v.SetDefault("store.file_root", ".")

	v.SetDefault("github.token", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.name", "")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.api_url", "https://api.github.com")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "gamesense")

	v.SetDefault("sqlite.path", "data/gamesense.db")

	v.SetDefault("blob.backend", "local")
	v.SetDefault("blob.videos_dir", "data/videos")
	v.SetDefault("blob.local_dir", "videos")
	v.SetDefault("blob.public_base", "/media")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.public_base_url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("auth.hash_scheme", "pbkdf2")

	v.SetDefault("upload.max_bytes", 200<<20)
}
