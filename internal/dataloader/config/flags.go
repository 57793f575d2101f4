package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/aitooling/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8081")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret
//	-i string   JWT issuer
//	-u string   JWT audience
//	-m int      max upload size, bytes
//	-b string   S3 bucket for upload archive
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000")
//	-l string   log level
//	-f string   log format (json or text)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-i", "-u", "-m", "-b", "-r", "-e", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret")
	fs.StringVar(&config.JWTIssuer, "i", config.JWTIssuer, "JWT issuer")
	fs.StringVar(&config.JWTAudience, "u", config.JWTAudience, "JWT audience")
	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "max upload size in bytes")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
