package config

import (
	_ "embed"
	"errors"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "app.log"

	// EnvPrefix prefixes environment variables that override the file.
	EnvPrefix = "QUASH"
)

// ErrNoDirectory is returned for files that live next to the configuration
// when it wasn't loaded from a directory.
var ErrNoDirectory = errors.New("configuration has no directory")

type Configuration struct {
	configFs afero.Fs

	Prompt         string            `json:"prompt" validate:"required"`
	Color          bool              `json:"color"`
	LogLevel       string            `json:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	DevelopmentLog bool              `json:"development_log" envconfig:"DEVELOPMENT_LOG"`
	Env            map[string]string `json:"env" ignored:"true" validate:"dive,keys,required,endkeys"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// applyEnv overrides fields from QUASH_* environment variables.
func (c *Configuration) applyEnv() error {
	return envconfig.Process(EnvPrefix, c)
}

func (c *Configuration) fs() (afero.Fs, error) {
	if c.configFs == nil {
		return nil, ErrNoDirectory
	}
	return c.configFs, nil
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	return fs.OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadAppLog opens the application log for reading.
func (c *Configuration) ReadAppLog() (afero.File, error) {
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	return fs.OpenFile(AppLogName, os.O_RDONLY, 0600)
}

// Environ returns Env as sorted KEY=VALUE pairs.
func (c *Configuration) Environ() []string {
	var out []string
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Default returns the built in configuration with environment overrides
// applied. It has no directory, so it has no application log.
func Default() (*Configuration, error) {
	out := defaultConfig()
	if err := out.applyEnv(); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
