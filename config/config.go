package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPPort string
	Env      string // "local" ou "prod"

	Neo4jURI  string // ex: bolt://localhost:7687
	Neo4jUser string
	Neo4jPass string

	// Clé publique RSA pour résoudre l'identité du viewer (vérification seule,
	// l'émission des tokens appartient au service d'identité)
	JWTPublicKeyPath string

	OtelEndpoint string
	CORSOrigins  []string

	// Rate limiting du endpoint public
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() Config {
	return Config{
		HTTPPort:         getEnv("HTTP_PORT", "8084"),
		Env:              getEnv("APP_ENV", "local"),
		Neo4jURI:         getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPass:        getEnv("NEO4J_PASSWORD", "password"),
		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", ""),
		OtelEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:19006")),
		RateLimitRPS:     10,
		RateLimitBurst:   30,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
