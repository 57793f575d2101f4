package config

import "github.com/dmitrijs2005/aitooling/internal/flagx"

// parseEnv overlays environment variables. Malformed numbers panic, like
// a bad config file does.
func parseEnv(config *Config) {
	flagx.EnvString(&config.EndpointAddrHTTP, "DATALOADER_HTTP_ADDR")
	flagx.EnvString(&config.EndpointAddrGRPC, "DATALOADER_GRPC_ADDR")
	flagx.EnvString(&config.DatabaseDSN, "DATALOADER_DATABASE_DSN")
	flagx.EnvString(&config.JWTSecret, "JWT_SECRET")
	flagx.EnvString(&config.JWTIssuer, "JWT_ISSUER")
	flagx.EnvString(&config.JWTAudience, "JWT_AUDIENCE")
	flagx.EnvString(&config.S3Bucket, "S3_BUCKET")
	flagx.EnvString(&config.S3Region, "S3_REGION")
	flagx.EnvString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	flagx.EnvString(&config.S3AccessKey, "S3_ACCESS_KEY")
	flagx.EnvString(&config.S3SecretKey, "S3_SECRET_KEY")
	flagx.EnvString(&config.LogLevel, "LOG_LEVEL")
	flagx.EnvString(&config.LogFormat, "LOG_FORMAT")

	if err := flagx.EnvInt64(&config.MaxUploadSize, "DATALOADER_MAX_UPLOAD_SIZE"); err != nil {
		panic(err)
	}
	if err := flagx.EnvDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT"); err != nil {
		panic(err)
	}
}
