package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              string
	DBDSN             string
	LogFile           string
	AuthServiceURL    string
	ProductServiceURL string
	JWTSecret         string
	JWTTTL            time.Duration
}

// Load reads service configuration from the environment. defaultPort and
// defaultDSN differ per service binary; everything else shares defaults.
func Load(defaultPort, defaultDSN string) Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}
	authURL := os.Getenv("AUTH_SERVICE_URL")
	if authURL == "" {
		authURL = "http://localhost:8081"
	}
	productURL := os.Getenv("PRODUCT_SERVICE_URL")
	if productURL == "" {
		productURL = "http://localhost:8082"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
	}
	ttl := 60
	if v := os.Getenv("JWT_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}

	cfg := Config{
		Port:              port,
		DBDSN:             dsn,
		LogFile:           os.Getenv("LOG_FILE"),
		AuthServiceURL:    authURL,
		ProductServiceURL: productURL,
		JWTSecret:         secret,
		JWTTTL:            time.Duration(ttl) * time.Minute,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s AUTH_SERVICE_URL=%s PRODUCT_SERVICE_URL=%s JWT_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.AuthServiceURL, cfg.ProductServiceURL, cfg.JWTTTL)
	return cfg
}
