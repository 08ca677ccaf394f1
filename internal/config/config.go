package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	DiscordToken    string
	ApplicationID   string
	StatusText      string
	LogLevel        string
	GuildConfigPath string
	HTTPPort        string
	MasterToken     string
	DatabaseDSN     string
	DBDriver        string
	EventLogDir     string
	UserCacheSize   int
	UserCacheTTL    time.Duration
	HistoryCapacity int
	DispatchRate    float64
	Reconcile       ReconcileConfig
	Postgres        PostgresConfig
	Storage         StorageConfig
	Webhook         WebhookConfig
}

// ReconcileConfig holds the departure classification timing.
type ReconcileConfig struct {
	GraceInterval   time.Duration
	RecheckAttempts int
	RecheckInterval time.Duration
}

// WebhookConfig mirrors notifications to an HTTP endpoint.
type WebhookConfig struct {
	URL     string
	Roles   []string
	Headers map[string]string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
	PublicURL string
}

func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

func Load() *AppConfig {
	pg := PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		DBName:   getEnv("POSTGRES_DB", ""),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}

	storage := StorageConfig{
		Endpoint:  getEnv("STORAGE_ENDPOINT", getEnv("MINIO_ENDPOINT", "")),
		AccessKey: getEnv("STORAGE_ACCESS_KEY", getEnv("MINIO_ACCESS_KEY", "")),
		SecretKey: getEnv("STORAGE_SECRET_KEY", getEnv("MINIO_SECRET_KEY", "")),
		Bucket:    getEnv("STORAGE_BUCKET", getEnv("MINIO_BUCKET", "")),
		Region:    getEnv("STORAGE_REGION", getEnv("MINIO_REGION", "")),
		Prefix:    getEnv("STORAGE_PREFIX", ""),
		UseSSL:    getBool("STORAGE_USE_SSL", getBool("MINIO_USE_SSL", false)),
		PublicURL: getEnv("STORAGE_PUBLIC_URL", getEnv("MINIO_PUBLIC_URL", "")),
	}

	dsn := getEnv("DATABASE_DSN", "")
	driver := strings.ToLower(getEnv("DB_DRIVER", ""))
	if driver == "" {
		lower := strings.ToLower(dsn)
		switch {
		case strings.HasPrefix(lower, "postgres"):
			driver = "postgres"
		case pg.Host != "":
			driver = "postgres"
		case dsn != "":
			driver = "sqlite"
		default:
			driver = "memory"
		}
	}
	switch driver {
	case "postgres":
		if dsn == "" {
			dsn = buildPostgresDSN(pg)
		}
	case "sqlite":
		if dsn == "" {
			dsn = "file:guild-notifier.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
	}

	return &AppConfig{
		DiscordToken:    strings.TrimSpace(getEnv("DISCORD_TOKEN", "")),
		ApplicationID:   strings.TrimSpace(getEnv("DISCORD_APPLICATION_ID", "")),
		StatusText:      getEnv("BOT_STATUS_TEXT", ""),
		LogLevel:        strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		GuildConfigPath: getEnv("GUILD_CONFIG_PATH", "config.json"),
		HTTPPort:        os.Getenv("HTTP_PORT"),
		MasterToken:     getEnv("API_MASTER_TOKEN", ""),
		DatabaseDSN:     dsn,
		DBDriver:        driver,
		EventLogDir:     getEnv("EVENT_LOG_DIR", ""),
		UserCacheSize:   getInt("USER_CACHE_SIZE", 1024),
		UserCacheTTL:    getDuration("USER_CACHE_TTL", 10*time.Minute),
		HistoryCapacity: getInt("HISTORY_CAPACITY", 500),
		DispatchRate:    getFloat("DISPATCH_RATE", 0),
		Reconcile: ReconcileConfig{
			GraceInterval:   getDuration("GRACE_INTERVAL", time.Second),
			RecheckAttempts: getInt("RECHECK_ATTEMPTS", 2),
			RecheckInterval: getDuration("RECHECK_INTERVAL", 500*time.Millisecond),
		},
		Postgres: pg,
		Storage:  storage,
		Webhook: WebhookConfig{
			URL:     strings.TrimSpace(getEnv("WEBHOOK_URL", "")),
			Roles:   getList("WEBHOOK_ROLES"),
			Headers: getHeaders("WEBHOOK_HEADERS"),
		},
	}
}

func buildPostgresDSN(pg PostgresConfig) string {
	host := pg.Host
	if host == "" {
		host = "localhost"
	}
	port := pg.Port
	if port == "" {
		port = "5432"
	}
	ssl := pg.SSLMode
	if ssl == "" {
		ssl = "disable"
	}

	u := &url.URL{Scheme: "postgres", Host: fmt.Sprintf("%s:%s", host, port)}
	if pg.User != "" {
		if pg.Password != "" {
			u.User = url.UserPassword(pg.User, pg.Password)
		} else {
			u.User = url.User(pg.User)
		}
	}
	if pg.DBName != "" {
		u.Path = pg.DBName
	}
	q := u.Query()
	q.Set("sslmode", ssl)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("warning: %s=%q is not a boolean, using %v", key, v, def)
		return def
	}
	return b
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("warning: %s=%q is not a number, using %v", key, v, def)
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("warning: %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getHeaders parses "Name: value, Other: value".
func getHeaders(key string) map[string]string {
	headers := make(map[string]string)
	for _, item := range getList(key) {
		name, value, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(name) == "" {
			log.Printf("warning: ignoring malformed %s entry %q", key, item)
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

func MustLoad() *AppConfig {
	cfg := Load()
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN environment variable is not set")
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN required for postgres driver")
	}
	if cfg.Reconcile.GraceInterval < 0 || cfg.Reconcile.RecheckAttempts < 0 {
		log.Fatal("GRACE_INTERVAL and RECHECK_ATTEMPTS must not be negative")
	}
	return cfg
}
