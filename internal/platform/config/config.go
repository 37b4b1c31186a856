package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TransportKind selects the printer transport variant. Fixed for the life of
// the process.
type TransportKind string

const (
	TransportSerial TransportKind = "serial"
	TransportUSB    TransportKind = "usb"
	TransportFile   TransportKind = "file"
)

// DedupeBackend selects where request-id claims are persisted.
type DedupeBackend string

const (
	DedupeMemory   DedupeBackend = "memory"
	DedupeSQLite   DedupeBackend = "sqlite"
	DedupePostgres DedupeBackend = "postgres"
)

// Config is the already-validated configuration value handed to the core.
// The core packages never read the environment themselves.
type Config struct {
	// HMACSecret authenticates /print requests. Empty disables
	// authentication entirely; that is an explicit operator opt-out.
	HMACSecret []byte

	TimestampWindow time.Duration

	Transport      TransportKind
	SerialPort     string
	SerialBaud     int
	USBVendorID    uint16
	USBProductID   uint16
	FileOutputPath string

	DedupeEnabled bool
	DedupeBackend DedupeBackend
	DedupeDBPath  string
	DatabaseURL   string

	// DedupePruneTTL, when positive, prunes dedupe records older than the
	// TTL once at startup. Zero means records are retained indefinitely.
	DedupePruneTTL time.Duration

	ServerPort   string
	WriteTimeout time.Duration
}

// FromEnv loads and validates configuration from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		HMACSecret:      []byte(os.Getenv("HMAC_SECRET")),
		TimestampWindow: 300 * time.Second,
		Transport:       TransportKind(getenv("PRINTER_TRANSPORT", "serial")),
		SerialPort:      getenv("PRINTER_PORT", "/dev/ttyUSB0"),
		SerialBaud:      9600,
		FileOutputPath:  getenv("FILE_OUTPUT_PATH", "receipt.bin"),
		DedupeEnabled:   os.Getenv("DEDUPE_ENABLED") == "true",
		DedupeBackend:   DedupeBackend(getenv("DEDUPE_BACKEND", "sqlite")),
		DedupeDBPath:    getenv("DEDUPE_DB_PATH", "dedupe.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ServerPort:      getenv("SERVER_PORT", "8000"),
		WriteTimeout:    10 * time.Second,
	}

	switch cfg.Transport {
	case TransportSerial, TransportUSB, TransportFile:
	default:
		return Config{}, fmt.Errorf("PRINTER_TRANSPORT must be serial, usb, or file; got %q", cfg.Transport)
	}

	if v := os.Getenv("PRINTER_BAUD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("PRINTER_BAUD must be a positive integer: %q", v)
		}
		cfg.SerialBaud = n
	}

	if cfg.Transport == TransportUSB {
		vid, err := parseUSBID(os.Getenv("PRINTER_USB_VENDOR"))
		if err != nil {
			return Config{}, fmt.Errorf("PRINTER_USB_VENDOR: %w", err)
		}
		pid, err := parseUSBID(os.Getenv("PRINTER_USB_PRODUCT"))
		if err != nil {
			return Config{}, fmt.Errorf("PRINTER_USB_PRODUCT: %w", err)
		}
		cfg.USBVendorID, cfg.USBProductID = vid, pid
	}

	if v := os.Getenv("TIMESTAMP_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("TIMESTAMP_WINDOW must be a positive integer of seconds: %q", v)
		}
		cfg.TimestampWindow = time.Duration(n) * time.Second
	}

	switch cfg.DedupeBackend {
	case DedupeMemory, DedupeSQLite:
	case DedupePostgres:
		if cfg.DedupeEnabled && cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DEDUPE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("DEDUPE_BACKEND must be memory, sqlite, or postgres; got %q", cfg.DedupeBackend)
	}

	if v := os.Getenv("DEDUPE_PRUNE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("DEDUPE_PRUNE_TTL must be a positive duration (e.g. 24h): %q", v)
		}
		cfg.DedupePruneTTL = d
	}

	if v := os.Getenv("WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("WRITE_TIMEOUT must be a positive duration (e.g. 10s): %q", v)
		}
		cfg.WriteTimeout = d
	}

	return cfg, nil
}

// parseUSBID accepts "0x04b8" or decimal "1208".
func parseUSBID(s string) (uint16, error) {
	if s == "" {
		return 0, fmt.Errorf("required for usb transport")
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("must be a 16-bit id like 0x04b8: %w", err)
	}
	return uint16(n), nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
