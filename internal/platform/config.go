package platform

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hellorun/internal/runner"
)

// FlagsConfig holds all boolean or string flags for the app.
type FlagsConfig struct {
	// Headless disables the HTTP server when true.
	Headless bool
}

// AppConfig contains the configuration for the app.
type AppConfig struct {
	Flags      *FlagsConfig
	NatsCfg    *EmbeddedServerConfig
	HTTPSrvCfg *HTTPServerConfig
	RunnerCfg  *runner.Launcher
}

// LoadAppConfig loads application configuration from the environment. A
// .env file in the working directory seeds missing variables first; real
// environment variables win.
func LoadAppConfig() *AppConfig {
	_ = godotenv.Load()
	return &AppConfig{
		Flags:      defaultFlagsCfg(),
		NatsCfg:    defaultNatsCfg(),
		HTTPSrvCfg: defaultHTTPServerCfg(),
		RunnerCfg:  defaultRunnerCfg(),
	}
}

// defaultFlagsCfg returns the default FlagsConfig (from env).
func defaultFlagsCfg() *FlagsConfig {
	return &FlagsConfig{
		Headless: envBool("HELLORUN_HEADLESS", false),
	}
}

// defaultHTTPServerCfg returns sane defaults for the HTTP server.
func defaultHTTPServerCfg() *HTTPServerConfig {
	cert := os.Getenv("HELLORUN_TLS_CERT")
	key := os.Getenv("HELLORUN_TLS_KEY")
	return &HTTPServerConfig{
		Port:         envInt("HELLORUN_PORT", 8080),
		ReadTimeout:  envDuration("HELLORUN_READ_TIMEOUT", 0),
		WriteTimeout: envDuration("HELLORUN_WRITE_TIMEOUT", 0),
		IdleTimeout:  envDuration("HELLORUN_IDLE_TIMEOUT", 2*time.Minute),
		EnableTLS:    cert != "" && key != "",
		CertFile:     cert,
		KeyFile:      key,
	}
}

// defaultNatsCfg returns the default EmbeddedServerConfig.
func defaultNatsCfg() *EmbeddedServerConfig {
	return &EmbeddedServerConfig{
		InProcess:       envBool("HELLORUN_NATS_IN_PROCESS", false),
		EnableLogging:   envBool("HELLORUN_NATS_LOG", true),
		JetStream:       true,
		JetStreamDomain: os.Getenv("HELLORUN_JS_DOMAIN"),
		StoreDir:        envStr("HELLORUN_STORE_DIR", "./store/js"),
		LeafNodeURL:     os.Getenv("HELLORUN_LEAF_URL"),
		LeafNodeCreds:   os.Getenv("HELLORUN_LEAF_CREDS"),
	}
}

// defaultRunnerCfg returns the launcher shared by the tool engine. Zero
// values fall back to the launcher's own defaults.
func defaultRunnerCfg() *runner.Launcher {
	cfg := &runner.Launcher{
		MaxOutput: envInt("HELLORUN_MAX_OUTPUT", 0),
		Dir:       os.Getenv("HELLORUN_TOOL_DIR"),
	}
	// HELLORUN_EXTRA_PATH is list-separated like PATH itself. Unset keeps the
	// launcher's default search paths.
	if v := os.Getenv("HELLORUN_EXTRA_PATH"); v != "" {
		cfg.ExtraPaths = filepath.SplitList(v)
	}
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
