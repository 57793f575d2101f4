package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/aitooling/internal/flagx"
	"github.com/dmitrijs2005/aitooling/internal/timex"
)

type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC  string         `json:"endpoint_addr_grpc"`
	DatabaseDSN       string         `json:"database_dsn"`
	JWTSecret         string         `json:"jwt_secret"`
	JWTIssuer         string         `json:"jwt_issuer"`
	JWTAudience       string         `json:"jwt_audience"`
	Argon2Memory      uint32         `json:"argon2_memory"`
	Argon2Iterations  uint32         `json:"argon2_iterations"`
	Argon2Parallelism uint32         `json:"argon2_parallelism"`
	LogLevel          string         `json:"log_level"`
	LogFormat         string         `json:"log_format"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c / -config.
// Zero values in the file are ignored.
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
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setUint32(&config.Argon2Memory, c.Argon2Memory)
	setUint32(&config.Argon2Iterations, c.Argon2Iterations)
	setUint32(&config.Argon2Parallelism, c.Argon2Parallelism)
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setUint32(dst *uint32, v uint32) {
	if v != 0 {
		*dst = v
	}
}
