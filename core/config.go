package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the whole app configuration. It is loaded once at import time
// from defaults, an optional config/.env.<env> file and the environment.
var Conf *Config

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	AppName  string
	Build    string

	SecretKey    string
	RollbarToken string

	Chat ChatConfig
}

type ChatConfig struct {
	// APIBaseURL is the root of the Classio REST API, e.g. "https://api.classio.app".
	APIBaseURL string
	// WebsocketURL is the root of the push endpoints, e.g. "wss://api.classio.app".
	WebsocketURL string
	// PageSize is the message page size used for thread loads and pagination.
	PageSize int
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Classio")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "x#2qp$7s&)fnb!y8=dz+uoh(h@x)r*c5(#yg1h^$cegm9emw")
	v.SetDefault("chat.apiBaseUrl", "http://localhost:8000")
	v.SetDefault("chat.websocketUrl", "ws://localhost:8000")
	v.SetDefault("chat.pageSize", 50)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	Conf = new(Config)
	if err := v.Unmarshal(Conf); err != nil {
		log.Fatalf("config.viper.Unmarshal: %v", err)
	}
}
