package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from the process environment. It is the only
// place that reads the environment; the rest of the server gets a *Config.
//
// Recognised variables:
//
//	PORT                HTTP port (binds ":<PORT>")
//	HTTP_ADDR           HTTP bind address, wins over PORT
//	GRPC_ADDR           gRPC health bind address
//	METRICS_ADDR        Prometheus bind address
//	DATABASE_DSN        PostgreSQL DSN
//	DB_HOST, DB_PORT, DB_USER, DB_PASS, DB_NAME
//	                    DSN parts, used when DATABASE_DSN is unset and DB_HOST is set
//	JWT_SECRET          access token secret
//	REFRESH_SECRET      refresh token secret
//	ACCESS_TOKEN_TTL    Go duration, e.g. "30m"
//	REFRESH_TOKEN_TTL   Go duration, e.g. "72h"
//	BCRYPT_COST         integer
//	MAX_HANDLE_ATTEMPTS integer
//	CORS_ORIGIN         allowed origin
//	LOG_LEVEL           debug|info|warn|error
//
// Malformed numbers or durations panic, matching parseJson.
func parseEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	setString(&config.EndpointAddrHTTP, os.Getenv("HTTP_ADDR"))
	setString(&config.EndpointAddrGRPC, os.Getenv("GRPC_ADDR"))
	setString(&config.EndpointAddrMetrics, os.Getenv("METRICS_ADDR"))

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.DatabaseDSN = dsn
	} else if host := os.Getenv("DB_HOST"); host != "" {
		config.DatabaseDSN = dsnFromParts(host, os.Getenv("DB_PORT"), os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_NAME"))
	}

	setString(&config.AccessTokenSecret, os.Getenv("JWT_SECRET"))
	setString(&config.RefreshTokenSecret, os.Getenv("REFRESH_SECRET"))
	setString(&config.CORSAllowedOrigin, os.Getenv("CORS_ORIGIN"))
	setString(&config.LogLevel, os.Getenv("LOG_LEVEL"))

	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	setDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	setInt(&config.BcryptCost, "BCRYPT_COST")
	setInt(&config.MaxHandleAttempts, "MAX_HANDLE_ATTEMPTS")
}

func dsnFromParts(host, port, user, pass, name string) string {
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, pass),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}
	return u.String()
}

func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}
