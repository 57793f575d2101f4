package config

import "github.com/dmitrijs2005/aitooling/internal/flagx"

// parseEnv overlays environment variables. Malformed numbers panic.
func parseEnv(config *Config) {
	flagx.EnvString(&config.EndpointAddrHTTP, "SECURITY_HTTP_ADDR")
	flagx.EnvString(&config.EndpointAddrGRPC, "SECURITY_GRPC_ADDR")
	flagx.EnvString(&config.DatabaseDSN, "SECURITY_DATABASE_DSN")
	flagx.EnvString(&config.JWTSecret, "JWT_SECRET")
	flagx.EnvString(&config.JWTIssuer, "JWT_ISSUER")
	flagx.EnvString(&config.JWTAudience, "JWT_AUDIENCE")
	flagx.EnvString(&config.LogLevel, "LOG_LEVEL")
	flagx.EnvString(&config.LogFormat, "LOG_FORMAT")

	for key, dst := range map[string]*uint32{
		"ARGON2_MEMORY":      &config.Argon2Memory,
		"ARGON2_ITERATIONS":  &config.Argon2Iterations,
		"ARGON2_PARALLELISM": &config.Argon2Parallelism,
	} {
		if err := flagx.EnvUint32(dst, key); err != nil {
			panic(err)
		}
	}
	if err := flagx.EnvDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT"); err != nil {
		panic(err)
	}
}
