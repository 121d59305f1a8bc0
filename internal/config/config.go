package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	media "github.com/templeatlas/media-pipeline-go/internal/usecase/media"
)

type Settings struct {
	// database
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MediaBucket    string
	// PublicBaseURL is the CDN origin serving the media bucket; empty falls
	// back to direct object-store URLs.
	PublicBaseURL string

	// redis (task queue + cache); empty address disables both
	RedisAddr     string
	RedisPassword string

	// api
	ServerPort int
	JWTSecret  string

	// pipeline
	Folders           []string
	Variants          []media.VariantDef
	MaxImageBytes     int64
	MaxDocumentBytes  int64
	RateLimitCeiling  int
	RateLimitWindow   time.Duration
	WorkerConcurrency int

	// reconciliation sweep
	ReconcileRetriggerAge time.Duration
	ReconcileGiveupAge    time.Duration
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range []string{
		"MARIADB_DSN",
		"MINIO_ENDPOINT",
		"MINIO_ACCESS_KEY",
		"MINIO_SECRET_KEY",
	} {
		if !viper.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	viper.SetDefault("MARIADB_MAX_OPEN_CONN", 25)
	viper.SetDefault("MARIADB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("MARIADB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("MEDIA_BUCKET", "media")
	viper.SetDefault("MONITORED_FOLDERS", strings.Join(media.DefaultFolders, ","))
	viper.SetDefault("VARIANTS", "thumb:200,medium:800")
	viper.SetDefault("MAX_IMAGE_BYTES", media.DefaultMaxImageBytes)
	viper.SetDefault("MAX_DOCUMENT_BYTES", media.DefaultMaxDocumentBytes)
	viper.SetDefault("RATE_LIMIT_CEILING", media.DefaultRateLimitCeiling)
	viper.SetDefault("RATE_LIMIT_WINDOW", int(media.DefaultRateLimitWindow.Seconds()))
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("RECONCILE_RETRIGGER_AGE", 3600)
	viper.SetDefault("RECONCILE_GIVEUP_AGE", 86400)

	variants, err := parseVariants(viper.GetString("VARIANTS"))
	if err != nil {
		return nil, err
	}

	return &Settings{
		MariaDBDSN:      viper.GetString("MARIADB_DSN"),
		MaxOpenConns:    viper.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    viper.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(viper.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		MediaBucket:    viper.GetString("MEDIA_BUCKET"),
		PublicBaseURL:  viper.GetString("MEDIA_PUBLIC_BASE_URL"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		ServerPort: viper.GetInt("SERVER_PORT"),
		JWTSecret:  viper.GetString("JWT_SECRET"),

		Folders:           splitList(viper.GetString("MONITORED_FOLDERS")),
		Variants:          variants,
		MaxImageBytes:     viper.GetInt64("MAX_IMAGE_BYTES"),
		MaxDocumentBytes:  viper.GetInt64("MAX_DOCUMENT_BYTES"),
		RateLimitCeiling:  viper.GetInt("RATE_LIMIT_CEILING"),
		RateLimitWindow:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),

		ReconcileRetriggerAge: time.Duration(viper.GetInt("RECONCILE_RETRIGGER_AGE")) * time.Second,
		ReconcileGiveupAge:    time.Duration(viper.GetInt("RECONCILE_GIVEUP_AGE")) * time.Second,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseVariants reads "name:width" pairs, e.g. "thumb:200,medium:800".
// Order is preserved; the generator processes variants in this order.
func parseVariants(s string) ([]media.VariantDef, error) {
	var defs []media.VariantDef
	for _, part := range splitList(s) {
		name, widthStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid variant definition %q, want name:width", part)
		}
		width, err := strconv.Atoi(widthStr)
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("invalid variant width in %q", part)
		}
		defs = append(defs, media.VariantDef{Name: name, MaxWidth: width})
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("at least one variant definition is required")
	}
	return defs, nil
}
