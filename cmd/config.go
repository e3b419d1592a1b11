package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	defaultPrefix            = "DIDPARSE_"
	defaultDelimiter         = "."
	configValueListSeparator = ","
	configFileFlag           = "configfile"
	defaultConfigFile        = "./didparse.yaml"
	defaultMaxBytes          = 10 << 20
	defaultConcurrency       = 4
)

// Config holds the CLI configuration.
type Config struct {
	Verbosity    string `koanf:"verbosity"`
	LoggerFormat string `koanf:"loggerformat"`
	// MaxBytes is the largest input accepted, checked before parsing.
	MaxBytes    int64 `koanf:"maxbytes"`
	Concurrency int   `koanf:"concurrency"`
	Pretty      bool  `koanf:"pretty"`
	// Strict requires the base VerifiableCredential/VerifiablePresentation type and
	// validates DID documents against the structural schema.
	Strict bool `koanf:"strict"`
	// Schema is the path of a JSON schema credentials are validated against.
	Schema    string `koanf:"schema"`
	configMap *koanf.Koanf
}

// NewConfig creates an initialized empty config.
func NewConfig() *Config {
	return &Config{
		configMap: koanf.New(defaultDelimiter),
	}
}

// FlagSet returns the flags shared by all commands.
func FlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("didparse", pflag.ContinueOnError)
	flagSet.String(configFileFlag, defaultConfigFile, "didparse config file")
	flagSet.String("verbosity", "info", "Log level (trace, debug, info, warn, error)")
	flagSet.String("loggerformat", "text", "Log format (text, json)")
	flagSet.Int64("maxbytes", defaultMaxBytes, "Maximum size of an input document in bytes")
	flagSet.Int("concurrency", defaultConcurrency, "Number of inputs parsed in parallel")
	flagSet.Bool("pretty", false, "Indent JSON output")
	flagSet.Bool("strict", false, "Require base types and validate DID documents against the DID schema")
	flagSet.String("schema", "", "Path of a JSON schema to validate credentials against")
	return flagSet
}

// Load loads the config following the load order of configfile, env vars and then commandline param.
func (c *Config) Load(flags *pflag.FlagSet) error {
	if err := c.loadConfigMap(flags); err != nil {
		return err
	}

	if err := c.configMap.UnmarshalWithConf("", c, koanf.UnmarshalConf{
		FlatPaths: false,
	}); err != nil {
		return err
	}

	if c.MaxBytes <= 0 {
		return fmt.Errorf("invalid maxbytes: %d", c.MaxBytes)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("invalid concurrency: %d", c.Concurrency)
	}

	lvl, err := logrus.ParseLevel(c.Verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)

	switch c.LoggerFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid formatter: '%s'", c.LoggerFormat)
	}

	return nil
}

// PrintConfig returns the loaded configuration as key=value lines.
func (c *Config) PrintConfig() string {
	return c.configMap.Sprint()
}

func (c *Config) loadConfigMap(flags *pflag.FlagSet) error {
	if err := loadDefaultsFromFlagset(c.configMap, flags); err != nil {
		return err
	}

	if err := loadFromFile(c.configMap, resolveConfigFilePath(flags)); err != nil {
		return err
	}

	if err := loadFromEnv(c.configMap); err != nil {
		return err
	}

	return loadFromFlagSet(c.configMap, flags)
}

func loadFromFile(configMap *koanf.Koanf, filepath string) error {
	if filepath == "" {
		return nil
	}
	configFileProvider := file.Provider(filepath)
	if err := configMap.Load(configFileProvider, yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func loadFromEnv(configMap *koanf.Koanf) error {
	e := env.ProviderWithValue(defaultPrefix, defaultDelimiter, func(rawKey string, rawValue string) (string, interface{}) {
		key := strings.Replace(strings.ToLower(strings.TrimPrefix(rawKey, defaultPrefix)), "_", defaultDelimiter, -1)

		if strings.Contains(rawValue, configValueListSeparator) {
			values := strings.Split(rawValue, configValueListSeparator)
			for i, value := range values {
				values[i] = strings.TrimSpace(value)
			}
			return key, values
		}

		return key, rawValue
	})
	return configMap.Load(e, nil)
}

// loadDefaultsFromFlagset loads the default values set in the command line flags.
func loadDefaultsFromFlagset(configMap *koanf.Koanf, flags *pflag.FlagSet) error {
	return configMap.Load(posflag.Provider(flags, defaultDelimiter, configMap), nil)
}

// loadFromFlagSet loads the values of flags that were set on the command line.
func loadFromFlagSet(configMap *koanf.Koanf, flags *pflag.FlagSet) error {
	return configMap.Load(posflag.Provider(flags, defaultDelimiter, configMap), nil)
}

// resolveConfigFilePath resolves the path of the config file from the commandline
// params, the environment or the default location.
func resolveConfigFilePath(flags *pflag.FlagSet) string {
	k := koanf.New(defaultDelimiter)

	e := env.Provider(defaultPrefix, defaultDelimiter, func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, defaultPrefix)), "_", defaultDelimiter, -1)
	})
	// can't return error
	_ = k.Load(e, nil)

	_ = k.Load(posflag.Provider(flags, defaultDelimiter, k), nil)

	return k.String(configFileFlag)
}
