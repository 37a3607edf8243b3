package skills

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type AppConfig struct {
	Mode      string
	ApiPort   string
	LogLevel  string
	InputDir  string
	OutputDir string
	NatsURL   string

	// optional YAML override layer applied before routing
	OverridesFile string

	JWTConfig struct {
		Secret     string
		Expiration int // in minutes
		// bcrypt hash of the password accepted by the token endpoint
		PasswordHash string
		User         string
	}
	MainDatabase struct {
		Host         string
		Port         string
		User         string
		Password     string
		DatabaseName string
		SSLMode      string
	}
	RedisConfig struct {
		Host     string
		Port     string
		Password string
		DB       int
		CacheTTL time.Duration
	}
}

var config AppConfig

// InitConfig loads envfile when present, then the environment. Only the
// logger is always initialised; the database and redis are opened by
// ConnectDatabase and ConnectRedis when configured.
func InitConfig(envfile string) {
	if err := godotenv.Load(envfile); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not load %s: %v", envfile, err)
	}
	config = AppConfig{
		Mode:      GetEnv("RUN_MODE", "prod"),
		ApiPort:   GetEnv("API_PORT", ":8080"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		InputDir:  GetEnv("INPUT_DIR", "nodes"),
		OutputDir: GetEnv("OUTPUT_DIR", "generated"),
		NatsURL:   GetEnv("NATS_URL", ""),

		OverridesFile: GetEnv("OVERRIDES_FILE", ""),

		JWTConfig: struct {
			Secret       string
			Expiration   int
			PasswordHash string
			User         string
		}{
			Secret:       GetEnv("JWT_SECRET", ""),
			Expiration:   getIntEnvOrDefault("JWT_EXPIRATION_MINUTES", 60),
			PasswordHash: GetEnv("API_PASSWORD_HASH", ""),
			User:         GetEnv("API_USER", "admin"),
		},
		MainDatabase: struct {
			Host         string
			Port         string
			User         string
			Password     string
			DatabaseName string
			SSLMode      string
		}{
			Host:         GetEnv("DB_HOSTNAME", ""),
			Port:         GetEnv("DB_PORT", "5432"),
			User:         GetEnv("DB_USERNAME", ""),
			Password:     GetEnv("DB_PASSWORD", ""),
			DatabaseName: GetEnv("DB_NAME", ""),
			SSLMode:      GetEnv("DB_SSL_MODE", "disable"),
		},
		RedisConfig: struct {
			Host     string
			Port     string
			Password string
			DB       int
			CacheTTL time.Duration
		}{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnvOrDefault("REDIS_DB", 0),
			CacheTTL: time.Duration(getIntEnvOrDefault("CACHE_TTL_SECONDS", 3600)) * time.Second,
		},
	}
	Logger = initLogger(config.LogLevel)
}

func GetConfig() AppConfig {
	return config
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// ConnectDatabase opens the main database when DB_HOSTNAME is set
func ConnectDatabase() error {
	c := config.MainDatabase
	if c.Host == "" {
		return nil
	}
	db, err := connectToPostgres(c.Host, c.User, c.Password, c.DatabaseName, c.Port, c.SSLMode)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// ConnectRedis opens the redis client when REDIS_HOST is set
func ConnectRedis(ctx context.Context) error {
	c := config.RedisConfig
	if c.Host == "" {
		return nil
	}
	client, err := connectToRedis(ctx, c.Host, c.Port, c.Password, c.DB)
	if err != nil {
		return err
	}
	Redis = client
	return nil
}

func connectToPostgres(host string, username string, password string, dbname string, port string, ssl string) (*gorm.DB, error) {
	var err error
	var db *gorm.DB
	var conn *sql.DB

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, username, password, dbname, port, ssl)
	if db, err = gorm.Open(postgres.Open(dsn),
		&gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold: 0,
					LogLevel:      logger.Error,
				},
			),
			TranslateError: true,
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			}}); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if conn, err = db.DB(); err != nil {
		return nil, err
	}
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func initLogger(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
}

func connectToRedis(ctx context.Context, host string, port string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
