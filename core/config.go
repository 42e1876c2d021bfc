package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      int
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		DisableReqLogs            bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
	}

	TelemetryConfig struct {
		Enabled     bool
		ServiceName string
	}

	Config struct {
		Debug                     bool
		TestMode                  bool
		Env                       string
		Build                     string
		AppName                   string
		WorkDir                   string
		SecretKey                 string
		FrontendURL               string
		APIPrefix                 string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration
		SeedPassword              string
		RollbarToken              string
		SendgridAPIKey            string

		Server    ServerConfig
		Database  DatabaseConfig
		Telemetry TelemetryConfig
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig reads the configuration from the environment.
// ENV (DEV by default, TEST, QA, PROD) selects the variables prefix and the optional config/.env.<env> file.
// Every key can also be set through its un-prefixed upper-case name, e.g. FRONTEND_URL, API_PREFIX or PORT.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("app_name", "School SaaS")
	v.SetDefault("secret_key", "hd8#v0w!q2m@k1z$e7p^t4r&y9u*i3o(5s)6a-b_c=n+x")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("api_prefix", "api")
	v.SetDefault("default_from_email", "School SaaS <noreply@localhost>")
	v.SetDefault("password_reset_timeout_delta", 3*24*time.Hour)
	v.SetDefault("seed_password", "password123")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("sendgrid_api_key", "")

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3000)
	v.SetDefault("debug_host", "0.0.0.0:4000")
	v.SetDefault("read_timeout", 5*time.Second)
	v.SetDefault("write_timeout", 5*time.Second)
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("jwt_expiration_delta", 24*time.Hour)
	v.SetDefault("jwt_refresh_expiration_delta", 7*24*time.Hour)
	v.SetDefault("disable_req_logs", false)

	v.SetDefault("db_engine", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_name", "schoolsaas")
	v.SetDefault("db_user", "schoolsaas")
	v.SetDefault("db_password", "schoolsaas")
	v.SetDefault("db_admin_user", "postgres")
	v.SetDefault("db_admin_password", "postgres")
	v.SetDefault("db_disable_tls", true)
	v.SetDefault("db_path", "schoolsaas.db")

	v.SetDefault("telemetry_enabled", false)
	v.SetDefault("telemetry_service_name", "schoolsaas-api")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	from, err := mail.ParseAddress(v.GetString("default_from_email"))
	if err != nil {
		from = &mail.Address{Address: "noreply@localhost"}
	}

	return &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("test_mode"),
		Env:                       env,
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("app_name"),
		WorkDir:                   workDir,
		SecretKey:                 v.GetString("secret_key"),
		FrontendURL:               strings.TrimSuffix(v.GetString("frontend_url"), "/"),
		APIPrefix:                 strings.Trim(v.GetString("api_prefix"), "/"),
		DefaultFromEmail:          *from,
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout_delta"),
		SeedPassword:              v.GetString("seed_password"),
		RollbarToken:              v.GetString("rollbar_token"),
		SendgridAPIKey:            v.GetString("sendgrid_api_key"),
		Server: ServerConfig{
			Host:                      v.GetString("host"),
			Port:                      v.GetInt("port"),
			DebugHost:                 v.GetString("debug_host"),
			ReadTimeout:               v.GetDuration("read_timeout"),
			WriteTimeout:              v.GetDuration("write_timeout"),
			ShutdownTimeout:           v.GetDuration("shutdown_timeout"),
			JWTExpirationDelta:        v.GetDuration("jwt_expiration_delta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwt_refresh_expiration_delta"),
			DisableReqLogs:            v.GetBool("disable_req_logs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("db_engine"),
			Host:          v.GetString("db_host"),
			Port:          v.GetInt("db_port"),
			Name:          v.GetString("db_name"),
			User:          v.GetString("db_user"),
			Password:      v.GetString("db_password"),
			AdminUser:     v.GetString("db_admin_user"),
			AdminPassword: v.GetString("db_admin_password"),
			DisableTLS:    v.GetBool("db_disable_tls"),
			Path:          v.GetString("db_path"),
		},
		Telemetry: TelemetryConfig{
			Enabled:     v.GetBool("telemetry_enabled"),
			ServiceName: v.GetString("telemetry_service_name"),
		},
	}
}
