package config

import (
	"errors"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
)

// EnvConfig lists the environment variables the server understands.
// Unset or empty variables leave the current value untouched, except
// REDIS_ADDR: set to an empty string it disables Redis.
type EnvConfig struct {
	HTTPAddr                string        `env:"HTTP_ADDR"`
	Environment             string        `env:"APP_ENV"`
	DatabaseDSN             string        `env:"DATABASE_DSN"`
	SecretKey               string        `env:"JWT_SECRET"`
	SessionValidityDuration time.Duration `env:"SESSION_VALIDITY,strict"`
	RedisAddr               string        `env:"REDIS_ADDR"`
	RedisPassword           string        `env:"REDIS_PASSWORD"`
	CacheKeyPrefix          string        `env:"CACHE_KEY_PREFIX"`
	CacheMemoryTTL          time.Duration `env:"CACHE_MEMORY_TTL,strict"`
	S3RootUser              string        `env:"S3_ROOT_USER"`
	S3RootPassword          string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket                string        `env:"S3_BUCKET"`
	S3Region                string        `env:"S3_REGION"`
	S3BaseEndpoint          string        `env:"S3_BASE_ENDPOINT"`
	S3PublicBaseURL         string        `env:"S3_PUBLIC_BASE_URL"`
	LogLevel                string        `env:"LOG_LEVEL"`
}

// parseEnv overlays environment variables onto config. A malformed value
// (e.g. SESSION_VALIDITY=soon) is a startup error and panics.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok && v == "" {
		config.RedisAddr = ""
	}

	var e EnvConfig

	if err := envdecode.Decode(&e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return
		}
		panic(err)
	}

	overrideString(&config.HTTPAddr, e.HTTPAddr)
	overrideString(&config.Environment, e.Environment)
	overrideString(&config.DatabaseDSN, e.DatabaseDSN)
	overrideString(&config.SecretKey, e.SecretKey)
	if e.SessionValidityDuration > 0 {
		config.SessionValidityDuration = e.SessionValidityDuration
	}
	overrideString(&config.RedisAddr, e.RedisAddr)
	overrideString(&config.RedisPassword, e.RedisPassword)
	overrideString(&config.CacheKeyPrefix, e.CacheKeyPrefix)
	if e.CacheMemoryTTL > 0 {
		config.CacheMemoryTTL = e.CacheMemoryTTL
	}
	overrideString(&config.S3RootUser, e.S3RootUser)
	overrideString(&config.S3RootPassword, e.S3RootPassword)
	overrideString(&config.S3Bucket, e.S3Bucket)
	overrideString(&config.S3Region, e.S3Region)
	overrideString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	overrideString(&config.S3PublicBaseURL, e.S3PublicBaseURL)
	overrideString(&config.LogLevel, e.LogLevel)
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
