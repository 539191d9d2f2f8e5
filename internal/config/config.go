// Package config provides application configuration structures and helpers.
package config

import (
	"flag"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Defaults for the ingestion server.
const (
	DefaultDedupWindowHours = 1
	DefaultForwardTimeout   = 10 // seconds
	DefaultForwardUserAgent = "tokenpay-metrics-service/1.0"
)

// ServerConfig holds the configuration settings for the server.
// It is built once in main and passed into every component; pipeline code
// never reads the environment on its own.
type ServerConfig struct {
	Addr             string // Server address
	Logger           *zap.SugaredLogger
	DatabaseDsn      string // Data Source Name for PostgreSQL
	DedupWindowHours int    // Trailing dedup window (in hours)
	ForwardEnabled   bool   // Whether to relay stored metrics to the collector
	ForwardURL       string // External collector endpoint
	ForwardTimeout   int    // Timeout for the collector call (in seconds)
	ForwardUserAgent string // User-Agent sent to the collector
	Key              string // Key for hash verification
	TrustedSubnet    string // CIDR, ex. "192.168.1.0/24"
}

// NewServerConfig creates and returns a new ServerConfig by parsing flags,
// an optional JSON config file, and environment variables. Priority is
// env > flags > JSON file > defaults.
func NewServerConfig() *ServerConfig {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout", "server.log"}
	logger := zap.Must(logCfg.Build())

	// 0) defaults
	cfg := &ServerConfig{
		Addr:             "localhost:8080",
		DedupWindowHours: DefaultDedupWindowHours,
		ForwardEnabled:   true,
		ForwardTimeout:   DefaultForwardTimeout,
		ForwardUserAgent: DefaultForwardUserAgent,
	}

	// 1) flags
	var fAddr strFlag
	fAddr.v = cfg.Addr
	var fDSN strFlag
	var fWindow intFlag
	fWindow.v = cfg.DedupWindowHours
	var fFwdEnabled boolFlag
	fFwdEnabled.v = cfg.ForwardEnabled
	var fFwdURL strFlag
	var fFwdTimeout intFlag
	fFwdTimeout.v = cfg.ForwardTimeout
	var fKey strFlag
	var fTrustedSubnet strFlag
	var fConf strFlag // -c / -config

	flag.Var(&fAddr, "a", "HTTP server address")
	flag.Var(&fDSN, "d", "DB connection string")
	flag.Var(&fWindow, "w", "dedup window (hours)")
	flag.Var(&fFwdEnabled, "forward", "forward stored metrics to the collector")
	flag.Var(&fFwdURL, "forward-url", "external collector URL")
	flag.Var(&fFwdTimeout, "forward-timeout", "collector call timeout (seconds)")
	flag.Var(&fKey, "k", "Hash key string")
	flag.Var(&fTrustedSubnet, "t", "trusted subnet")
	flag.Var(&fConf, "c", "Path to JSON config file")
	flag.Var(&fConf, "config", "Path to JSON config file (alias)")
	flag.Parse()

	cfg.Addr = fAddr.v
	cfg.DatabaseDsn = fDSN.v
	cfg.DedupWindowHours = fWindow.v
	cfg.ForwardEnabled = fFwdEnabled.v
	cfg.ForwardURL = fFwdURL.v
	cfg.ForwardTimeout = fFwdTimeout.v
	cfg.Key = fKey.v
	cfg.TrustedSubnet = fTrustedSubnet.v

	// 2) JSON file (lowest priority after defaults)
	if fConf.v == "" {
		if v := os.Getenv("CONFIG"); v != "" {
			fConf.v = v
		}
	}

	if fConf.v != "" {
		if js, err := loadServerJSON(fConf.v); err == nil {
			if js.Address != nil && !fAddr.set {
				cfg.Addr = *js.Address
			}
			if js.DatabaseDSN != nil && !fDSN.set {
				cfg.DatabaseDsn = *js.DatabaseDSN
			}
			if js.DedupWindowHours != nil && !fWindow.set {
				cfg.DedupWindowHours = *js.DedupWindowHours
			}
			if js.ForwardEnabled != nil && !fFwdEnabled.set {
				cfg.ForwardEnabled = *js.ForwardEnabled
			}
			if js.ForwardURL != nil && !fFwdURL.set {
				cfg.ForwardURL = *js.ForwardURL
			}
			if js.ForwardTimeout != nil && !fFwdTimeout.set {
				cfg.ForwardTimeout = *js.ForwardTimeout
			}
			if js.TrustedSubnet != nil && !fTrustedSubnet.set {
				cfg.TrustedSubnet = *js.TrustedSubnet
			}
		} else {
			log.Printf("failed to load config file %s: %v", fConf.v, err)
		}
	}

	// 3) environment (highest priority)
	readServerEnvironment(cfg)

	cfg.Logger = logger.Sugar()
	return cfg
}

func readServerEnvironment(cfg *ServerConfig) {
	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Addr = addr
	}

	if dbDsn := os.Getenv("DATABASE_DSN"); dbDsn != "" {
		cfg.DatabaseDsn = dbDsn
	}

	windowEnv := os.Getenv("DEDUP_WINDOW_HOURS")
	if windowEnv != "" {
		v, err := strconv.Atoi(windowEnv)
		if err == nil {
			cfg.DedupWindowHours = v
		} else {
			log.Printf("invalid DEDUP_WINDOW_HOURS env var: %v", err)
		}
	}

	fwdEnabledEnv := os.Getenv("FORWARD_ENABLED")
	if fwdEnabledEnv != "" {
		v, err := strconv.ParseBool(fwdEnabledEnv)
		if err == nil {
			cfg.ForwardEnabled = v
		} else {
			log.Printf("invalid FORWARD_ENABLED env var: %v", err)
		}
	}

	if fwdURL := os.Getenv("FORWARD_URL"); fwdURL != "" {
		cfg.ForwardURL = fwdURL
	}

	fwdTimeoutEnv := os.Getenv("FORWARD_TIMEOUT")
	if fwdTimeoutEnv != "" {
		v, err := strconv.Atoi(fwdTimeoutEnv)
		if err == nil {
			cfg.ForwardTimeout = v
		} else {
			log.Printf("invalid FORWARD_TIMEOUT env var: %v", err)
		}
	}

	if key := os.Getenv("KEY"); key != "" {
		cfg.Key = key
	}

	if trustedSubnet := os.Getenv("TRUSTED_SUBNET"); trustedSubnet != "" {
		cfg.TrustedSubnet = trustedSubnet
	}
}
