package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zhouzirui/user-lookup/backend/internal/source"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	GraphQL GraphQLConfig
	Log     LogConfig
}

// fileConfig mirrors the optional TOML file named by CONFIG_FILE.
// Every value in it can be overridden by the matching environment variable.
type fileConfig struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`
	Data struct {
		File   string `toml:"file"`
		Driver string `toml:"driver"`
		DSN    string `toml:"dsn"`
		Table  string `toml:"table"`
	} `toml:"data"`
	GraphQL struct {
		Debug *bool `toml:"debug"`
	} `toml:"graphql"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Load 从环境变量加载配置，CONFIG_FILE 指定的 TOML 文件提供默认值。
func Load() (*Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	server, err := loadServerConfig(file)
	if err != nil {
		return nil, err
	}

	data, err := loadDataConfig(file)
	if err != nil {
		return nil, err
	}

	gql, err := loadGraphQLConfig(file)
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig(file)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Data: data, GraphQL: gql, Log: logCfg}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(file fileConfig) (ServerConfig, error) {
	port := getEnvOrDefault("PORT", file.Server.Port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DataConfig describes where user records are loaded from.
// An empty Driver means the JSON file at File.
type DataConfig struct {
	File   string
	Driver string
	DSN    string
	Table  string
}

// UseSQL reports whether records come from a database table.
func (c DataConfig) UseSQL() bool {
	return c.Driver != ""
}

func loadDataConfig(file fileConfig) (DataConfig, error) {
	cfg := DataConfig{
		File:   getEnvOrDefault("DATA_FILE", orDefault(file.Data.File, "data/users.json")),
		Driver: getEnvOrDefault("DATA_DRIVER", file.Data.Driver),
		DSN:    getEnvOrDefault("DATA_DSN", file.Data.DSN),
		Table:  getEnvOrDefault("DATA_TABLE", orDefault(file.Data.Table, "users")),
	}

	if cfg.UseSQL() {
		if !source.SupportedDriver(cfg.Driver) {
			return DataConfig{}, fmt.Errorf("invalid DATA_DRIVER value %q: want one of %s", cfg.Driver, strings.Join(source.Drivers, ", "))
		}
		if cfg.DSN == "" {
			return DataConfig{}, fmt.Errorf("DATA_DSN is required when DATA_DRIVER=%s", cfg.Driver)
		}
	}

	return cfg, nil
}

// GraphQLConfig 描述查询层配置。
type GraphQLConfig struct {
	// Debug exposes resolver stack traces in error responses.
	Debug bool
}

func loadGraphQLConfig(file fileConfig) (GraphQLConfig, error) {
	def := false
	if file.GraphQL.Debug != nil {
		def = *file.GraphQL.Debug
	}

	debug, err := parseBoolEnv("GRAPHQL_DEBUG", def)
	if err != nil {
		return GraphQLConfig{}, err
	}
	return GraphQLConfig{Debug: debug}, nil
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig(file fileConfig) (LogConfig, error) {
	cfg := LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", orDefault(file.Log.Level, "info"))),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", orDefault(file.Log.Format, "text"))),
	}

	if cfg.Format != "text" && cfg.Format != "json" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", cfg.Format)
	}
	return cfg, nil
}

func orDefault(value, defaultValue string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
