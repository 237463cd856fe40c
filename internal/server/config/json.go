package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/soncatalog/internal/flagx"
	"github.com/dmitrijs2005/soncatalog/internal/timex"
)

// JsonConfig mirrors Config for JSON decoding. Durations use timex.Duration
// so that both "168h" and integer nanoseconds are accepted. Only fields that
// are present in the file override the current values.
type JsonConfig struct {
	HTTPAddr                *string         `json:"http_addr"`
	Environment             *string         `json:"environment"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	RedisAddr               *string         `json:"redis_addr"`
	RedisPassword           *string         `json:"redis_password"`
	RedisDB                 *int            `json:"redis_db"`
	CacheKeyPrefix          *string         `json:"cache_key_prefix"`
	CacheMemoryTTL          *timex.Duration `json:"cache_memory_ttl"`
	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL         *string         `json:"s3_public_base_url"`
	LogLevel                *string         `json:"log_level"`
}

// parseJson loads the file named by -c / -config (if any) into config.
// A missing or malformed file is a startup error and panics, like a bad flag.
func parseJson(config *Config, args []string) {

	path := flagx.ConfigFilePath(args)

	// nothing to load
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.Environment, c.Environment)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	setString(&config.CacheKeyPrefix, c.CacheKeyPrefix)
	if c.CacheMemoryTTL != nil {
		config.CacheMemoryTTL = c.CacheMemoryTTL.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
