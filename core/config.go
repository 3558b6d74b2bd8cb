package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		WorkDir          string
		RollbarToken     string
		SendgridApiKey   string
		FrontendBaseURL  string
		defaultFromEmail string

		Server ServerConfig
		Seed   SeedConfig
		Notify NotifyConfig
	}

	ServerConfig struct {
		Host            string
		Port            string
		DebugHost       string
		ShutdownTimeout time.Duration
		// Latency delays every API response to mimic a remote backend.
		Latency        time.Duration
		DisableReqLogs bool
	}

	SeedConfig struct {
		Demo bool
	}

	NotifyConfig struct {
		Absences bool
	}
)

func (conf *Config) Address() string {
	return conf.Server.Host + ":" + conf.Server.Port
}

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = conf.AppName
	}
	return *addr
}

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// ENV selects the environment: DEV (local; default), TEST, QA, PROD.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Shule")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Shule <noreply@localhost>")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", env == "TEST")
	v.SetDefault("seed.demo", env == "DEV")
	v.SetDefault("notify.absences", env != "TEST")
	if env == "TEST" {
		v.SetDefault("server.latency", time.Duration(0))
	} else {
		v.SetDefault("server.latency", 300*time.Millisecond)
	}

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}

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

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		WorkDir:          workDir,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetString("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			Latency:         v.GetDuration("server.latency"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Seed:   SeedConfig{Demo: v.GetBool("seed.demo")},
		Notify: NotifyConfig{Absences: v.GetBool("notify.absences")},
	}
}

// NewTestConfig returns a Config suitable for tests: no latency, no request logs, no seeding.
func NewTestConfig() *Config {
	return &Config{
		Debug:            true,
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Shule",
		FrontendBaseURL:  "http://localhost:3000",
		defaultFromEmail: "Shule <noreply@localhost>",
		Server: ServerConfig{
			Port:            "8000",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
	}
}
