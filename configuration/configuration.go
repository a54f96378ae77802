// Package configuration defines a configuration engine for the entire app.
//
// The configuration features:
//   - reads the command line arguments for the app such as debug mode.
//   - automatically loads the environment variables files.
//   - allows setting default variables if user didn't define them.
package configuration

import (
	"fmt"
	"time"

	"github.com/blocklords/ballot/configuration/argument"
	"github.com/blocklords/ballot/configuration/env"
	"github.com/blocklords/ballot/log"
	"github.com/spf13/viper"
)

// Config Configuration Engine based on viper.Viper
type Config struct {
	viper *viper.Viper // used to keep default values

	Debug        bool        // Passed as --debug command line argument.
	NoController bool        // Passed as --no-controller. The command controller is not started.
	NoGateway    bool        // Passed as --no-gateway. The http gateway is not started.
	logger       *log.Logger // debug purpose only
}

// New creates a global configuration for the entire application.
//
// Automatically reads the command line arguments.
// Loads the environment variables.
func New(parent *log.Logger) (*Config, error) {
	logger := parent.Child("configuration")
	logger.Info("Reading command line arguments for application parameters")

	arguments := argument.GetArguments()

	conf := Config{
		Debug:        argument.Has(arguments, argument.Debug),
		NoController: argument.Has(arguments, argument.NoController),
		NoGateway:    argument.Has(arguments, argument.NoGateway),
		logger:       logger,
	}
	logger.Info("Loading environment files passed as app arguments")

	err := env.LoadAnyEnv()
	if err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	logger.Info("Starting Viper with environment variables")

	conf.viper = viper.New()
	conf.viper.AutomaticEnv()

	return &conf, nil
}

// SetDefaults sets the default configuration parameters.
func (c *Config) SetDefaults(defaultConfig DefaultConfig) {
	for name, value := range defaultConfig.Parameters {
		if value == nil {
			continue
		}
		// already set, don't use the default
		if c.viper.IsSet(name) {
			continue
		}
		c.logger.Debug("Set default for "+defaultConfig.Title, name, value)
		c.SetDefault(name, value)
	}
}

// SetDefault sets the default configuration name to the value
func (c *Config) SetDefault(name string, value interface{}) {
	c.viper.SetDefault(name, value)
}

// Exist Checks whether the configuration variable exists or not
// If the configuration exists or its default value exists, then returns true.
func (c *Config) Exist(name string) bool {
	value := c.viper.GetString(name)
	return len(value) > 0
}

// GetString Returns the configuration parameter as a string
func (c *Config) GetString(name string) string {
	return c.viper.GetString(name)
}

// GetUint64 Returns the configuration parameter as an unsigned 64-bit number
func (c *Config) GetUint64(name string) uint64 {
	return c.viper.GetUint64(name)
}

// GetFloat64 Returns the configuration parameter as a float
func (c *Config) GetFloat64(name string) float64 {
	return c.viper.GetFloat64(name)
}

// GetDuration Returns the configuration parameter as a duration.
// The value is either in the time.ParseDuration format ("30s") or in nanoseconds.
func (c *Config) GetDuration(name string) time.Duration {
	return c.viper.GetDuration(name)
}
