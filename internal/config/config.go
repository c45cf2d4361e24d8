package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port            string
	DBDSN           string
	LogFile         string
	SiteURL         string
	PaymentBaseURL  string
	PaymentShopID   string
	PaymentSecret   string
	CheckoutWorkers int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "stitchline.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./stitchline.log"
	}
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:" + port
	}

	workers := 4
	if v := os.Getenv("CHECKOUT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	cfg := Config{
		Port:            port,
		DBDSN:           dsn,
		LogFile:         logFile,
		SiteURL:         siteURL,
		PaymentBaseURL:  os.Getenv("PAYMENT_BASE_URL"),
		PaymentShopID:   os.Getenv("PAYMENT_SHOP_ID"),
		PaymentSecret:   os.Getenv("PAYMENT_SECRET"),
		CheckoutWorkers: workers,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SITE_URL=%s CHECKOUT_WORKERS=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.SiteURL, cfg.CheckoutWorkers)
	return cfg
}
