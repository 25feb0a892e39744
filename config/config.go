package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config содержит конфигурацию сервиса планирования продаж
type Config struct {
	// Подключение к 1С
	ERP ERPConfig `yaml:"erp"`

	// Подключение к MySQL для кеша артефактов и журнала обновлений
	Database DatabaseConfig `yaml:"database"`

	// Адрес HTTP-сервера
	HTTPAddr string `yaml:"http_addr"`

	// Файл локального снимка истории продаж
	SnapshotPath string `yaml:"snapshot_path"`

	// Интервал фонового обновления
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Горизонт прогноза в месяцах
	ForecastHorizon int `yaml:"forecast_horizon"`

	// Модель, привязанная к имени "primary"
	PrimaryCapability string `yaml:"primary_capability"`

	// Версия прогноза (пространство ключей кеша)
	CacheVersion int `yaml:"cache_version"`

	// В непродуктивном режиме обучается только первая группа
	Production bool `yaml:"production"`

	// Каталог для файлов лога, пустой - только stdout
	LogDir string `yaml:"log_dir"`

	// Включение отладочного логирования
	Verbose bool `yaml:"verbose"`
}

// ERPConfig содержит настройки подключения к 1С
type ERPConfig struct {
	Server       string        `yaml:"server"`
	Base         string        `yaml:"base"`
	QueryRoute   string        `yaml:"query_route"`
	ProgramRoute string        `yaml:"program_route"`
	APIKey       string        `yaml:"api_key"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	// DSN в формате go-sql-driver/mysql, пустой - хранилища в памяти
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnLifetime time.Duration `yaml:"conn_lifetime"`
}

// Значения конфигурации по умолчанию
var (
	DefaultERPConfig = ERPConfig{
		Server:       "localhost",
		Base:         "trade",
		QueryRoute:   "/hs/api/query",
		ProgramRoute: "/hs/api/program",
		Timeout:      30 * time.Second,
	}

	DefaultDatabaseConfig = DatabaseConfig{
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		ConnLifetime: 5 * time.Minute,
	}
)

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		ERP:               DefaultERPConfig,
		Database:          DefaultDatabaseConfig,
		HTTPAddr:          ":8050",
		SnapshotPath:      "history.csv",
		RefreshInterval:   24 * time.Hour,
		ForecastHorizon:   6,
		PrimaryCapability: "linear",
		Production:        true,
	}
}

// Load собирает конфигурацию: значения по умолчанию, .env, YAML-файл, переменные окружения
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate проверяет значения конфигурации
func (c Config) Validate() error {
	if c.ForecastHorizon <= 0 {
		return fmt.Errorf("горизонт прогноза должен быть положительным, получено: %d", c.ForecastHorizon)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("интервал обновления должен быть положительным, получено: %v", c.RefreshInterval)
	}
	if c.ERP.Timeout <= 0 {
		return fmt.Errorf("таймаут 1С должен быть положительным, получено: %v", c.ERP.Timeout)
	}
	if c.CacheVersion < 0 {
		return fmt.Errorf("версия прогноза не может быть отрицательной, получено: %d", c.CacheVersion)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	stringVars := map[string]*string{
		"ERP_SERVER":         &cfg.ERP.Server,
		"ERP_BASE":           &cfg.ERP.Base,
		"ERP_QUERY_ROUTE":    &cfg.ERP.QueryRoute,
		"ERP_PROGRAM_ROUTE":  &cfg.ERP.ProgramRoute,
		"ERP_API_KEY":        &cfg.ERP.APIKey,
		"ERP_USER":           &cfg.ERP.User,
		"ERP_PASSWORD":       &cfg.ERP.Password,
		"MYSQL_DSN":          &cfg.Database.DSN,
		"HTTP_ADDR":          &cfg.HTTPAddr,
		"SNAPSHOT_PATH":      &cfg.SnapshotPath,
		"PRIMARY_CAPABILITY": &cfg.PrimaryCapability,
		"LOG_DIR":            &cfg.LogDir,
	}
	for key, dst := range stringVars {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ERP_TIMEOUT":      &cfg.ERP.Timeout,
		"REFRESH_INTERVAL": &cfg.RefreshInterval,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("неверное значение %s=%q: %w", key, v, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"FORECAST_HORIZON": &cfg.ForecastHorizon,
		"CACHE_VERSION":    &cfg.CacheVersion,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("неверное значение %s=%q: %w", key, v, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"PRODUCTION": &cfg.Production,
		"VERBOSE":    &cfg.Verbose,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("неверное значение %s=%q: %w", key, v, err)
			}
			*dst = b
		}
	}

	return nil
}
