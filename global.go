package skills

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	// DB is nil unless DB_HOSTNAME is configured
	DB     *gorm.DB
	Logger zerolog.Logger = zerolog.Nop()
	// Redis is nil unless REDIS_HOST is configured
	Redis *redis.Client
)
