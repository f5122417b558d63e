package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string        `json:"baseURL" validate:"required,url"`
		Token   string        `json:"token"`
		Timeout time.Duration `json:"timeout" validate:"gt=0"`
	}

	Config struct {
		Env          string    `json:"env" validate:"oneof=DEV TEST QA PROD"`
		AppName      string    `json:"appName" validate:"notblank"`
		Debug        bool      `json:"debug"`
		Build        string    `json:"build"`
		RollbarToken string    `json:"rollbarToken"`
		API          APIConfig `json:"api"`
	}
)

// LoadConfig reads the configuration from the environment.
// ENV selects the environment (DEV by default) which is also used as the env vars prefix, eg: DEV_API_BASEURL.
// `dir`/.env.<env> is loaded first if it exists.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Akademik")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("api.baseURL", "http://localhost:8080/api")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 15*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if dir != "" {
		dotEnvPath := filepath.Join(dir, ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		AppName:      CleanString(v.GetString("appName")),
		Debug:        v.GetBool("debug"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: strings.TrimRight(CleanString(v.GetString("api.baseURL")), "/"),
			Token:   v.GetString("api.token"),
			Timeout: v.GetDuration("api.timeout"),
		},
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the configuration and reports every invalid field.
func (conf *Config) Validate() error {
	return ValidateStruct(conf, "invalid configuration")
}
