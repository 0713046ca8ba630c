package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"

	"go.uber.org/zap"
)

type Config struct {
	*Settings
}

type Settings struct {
	// Environment selects env specific files such as config.production.yml.
	Environment string
	// ENVPrefix is prepended to derived variable names. "-" disables the prefix.
	ENVPrefix string
	Debug     bool

	// ErrorOnUnmatchedKeys rejects file keys that match no struct field.
	ErrorOnUnmatchedKeys bool

	// Lookup reads a variable from the environment, os.LookupEnv by default.
	Lookup func(string) (string, bool)
	Logger *zap.Logger
}

// New initialize a Config
func New(s *Settings) *Config {
	if s == nil {
		s = &Settings{}
	}

	if os.Getenv("CONFIG_DEBUG_MODE") != "" {
		s.Debug = true
	}
	if s.Lookup == nil {
		s.Lookup = os.LookupEnv
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	return &Config{Settings: s}
}

var testRegexp = regexp.MustCompile(`_test|(\.test$)`)

// GetEnvironment get environment
func (c *Config) GetEnvironment() string {
	if c.Environment != "" {
		return c.Environment
	}
	if env, ok := c.Lookup("CONFIG_ENV"); ok && env != "" {
		return env
	}
	if testRegexp.MatchString(os.Args[0]) {
		return "test"
	}
	return "development"
}

// Load fills cfg from its default tags, then files in order, then the environment.
// Missing files are ignored.
func (c *Config) Load(cfg interface{}, files ...string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || !v.Elem().CanAddr() {
		return fmt.Errorf("config %T should be a pointer to a struct", cfg)
	}

	if err := processDefaults(cfg); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}

	for _, file := range c.configurationFiles(files...) {
		c.log("loading configuration file", zap.String("file", file))
		if err := processFile(cfg, file, c.ErrorOnUnmatchedKeys); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	var prefixes []string
	if prefix := c.envPrefix(); prefix != "-" {
		prefixes = append(prefixes, prefix)
	}
	if err := c.processTags(cfg, prefixes...); err != nil {
		return err
	}

	c.log("configuration loaded", zap.Any("config", cfg))
	return nil
}

// ENV return environment
func ENV() string {
	return New(nil).GetEnvironment()
}

// Load is a shortcut for New(nil).Load.
func Load(cfg interface{}, files ...string) (*Config, error) {
	c := New(nil)
	if err := c.Load(cfg, files...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) envPrefix() string {
	if c.ENVPrefix != "" {
		return c.ENVPrefix
	}
	if prefix, ok := c.Lookup("CONFIG_ENV_PREFIX"); ok && prefix != "" {
		return prefix
	}
	return "CONFIG"
}

func (c *Config) log(msg string, fields ...zap.Field) {
	if c.Debug {
		c.Logger.Info(msg, fields...)
	}
}
