package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	Secret         string
	DatabaseDSN    string
	HTTPPort       string
	CatalogCSV     string
	AllowedOrigins []string

	AdminName     string
	AdminUsername string
	AdminPassword string

	Printer PrinterConfig
	Store   StoreConfig
}

// PrinterConfig selects the receipt printer.
type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

// StoreConfig is printed at the top of every receipt.
type StoreConfig struct {
	Name    string
	Address string
	Phone   string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getenv("HTTP_PORT", "8080")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	width, err := strconv.Atoi(getenv("PRINTER_WIDTH", "32"))
	if err != nil || width <= 0 {
		log.Printf("invalid PRINTER_WIDTH value %q, defaulting to 32", os.Getenv("PRINTER_WIDTH"))
		width = 32
	}

	return Config{
		Secret:         getenv("SECRET", "dev_secret"),
		DatabaseDSN:    getenv("DATABASE_DSN", "western-data.db"),
		HTTPPort:       port,
		CatalogCSV:     os.Getenv("CATALOG_CSV"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:*,file://*")),
		AdminName:      getenv("ADMIN_NAME", "Administrator"),
		AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		Printer: PrinterConfig{
			Type:    getenv("PRINTER_TYPE", "none"),
			USBPath: os.Getenv("PRINTER_USB_PATH"),
			Address: os.Getenv("PRINTER_ADDRESS"),
			Width:   width,
		},
		Store: StoreConfig{
			Name:    getenv("STORE_NAME", "Western Store"),
			Address: os.Getenv("STORE_ADDRESS"),
			Phone:   os.Getenv("STORE_PHONE"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
