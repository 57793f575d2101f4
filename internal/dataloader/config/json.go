package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/aitooling/internal/flagx"
	"github.com/dmitrijs2005/aitooling/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "10s" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	JWTSecret        string         `json:"jwt_secret"`
	JWTIssuer        string         `json:"jwt_issuer"`
	JWTAudience      string         `json:"jwt_audience"`
	MaxUploadSize    int64          `json:"max_upload_size"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	LogLevel         string         `json:"log_level"`
	LogFormat        string         `json:"log_format"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c / -config. Keys
// absent from the file keep their current value. An unreadable or
// invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.JWTIssuer, c.JWTIssuer)
	setString(&config.JWTAudience, c.JWTAudience)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
