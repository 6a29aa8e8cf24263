package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. DBSCHEMA_DATABASE_URL
const EnvPrefix = "DBSCHEMA"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Export   ExportConfig   `mapstructure:"export"`
	Inspect  InspectConfig  `mapstructure:"inspect"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	URL    string `mapstructure:"url"`
	Schema string `mapstructure:"schema"`
}

type ExportConfig struct {
	Tables  []string `mapstructure:"tables"`
	Exclude []string `mapstructure:"exclude"`
	Output  string   `mapstructure:"output"`
	Dialect string   `mapstructure:"dialect"`
}

type InspectConfig struct {
	Format    string `mapstructure:"format"`
	OutputDir string `mapstructure:"output_dir"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env, the optional config file and the environment into v
// and decodes the result. configFile may be empty, in which case
// dbschema.yaml is looked up in the working directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dbschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Export.Tables = splitList(cfg.Export.Tables)
	cfg.Export.Exclude = splitList(cfg.Export.Exclude)

	return &cfg, nil
}

// SetDefaults registers every key so environment variables are picked up
// by Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("database.schema", "")

	v.SetDefault("export.tables", []string{})
	v.SetDefault("export.exclude", []string{})
	v.SetDefault("export.output", "")
	v.SetDefault("export.dialect", "")

	v.SetDefault("inspect.format", "text")
	v.SetDefault("inspect.output_dir", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// splitList flattens comma separated entries and drops blanks
func splitList(values []string) []string {
	var result []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}
