// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath - путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.turntable"

// Префикс переменных окружения, переопределяющих файл
const envPrefix = "TURNTABLE_"

// Config структура для хранения конфигурации приложения
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	SampleRate      int           `yaml:"sample_rate"`
	BufferMS        int           `yaml:"buffer_ms"`
	ResampleQuality int           `yaml:"resample_quality"`
	SeekStep        time.Duration `yaml:"seek_step"`
	FolderCover     bool          `yaml:"folder_cover"`
	WatchDir        string        `yaml:"watch_dir"`

	AwsAccessKey string `yaml:"aws_access_key"`
	AwsSecretKey string `yaml:"aws_secret_key"`
	AwsRegion    string `yaml:"aws_region"`
	AwsEndpoint  string `yaml:"aws_endpoint"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		LogFile:         "~/.turntable.log",
		SampleRate:      44100,
		BufferMS:        100,
		ResampleQuality: 4,
		SeekStep:        5 * time.Second,
		FolderCover:     true,
		AwsRegion:       "us-east-1",
		HTTPTimeout:     2 * time.Minute,
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не является ошибкой: используются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expandHome(filePath, home)

	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
	}

	applyEnv(config)
	fillDefaults(config)

	// Раскрываем тильду в путях
	config.LogFile = expandHome(config.LogFile, home)
	config.WatchDir = expandHome(config.WatchDir, home)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDotEnv загружает переменные из .env файлов, если они существуют.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("ошибка загрузки %s: %w", path, err)
		}
	}
	return nil
}

// Validate проверяет значения настроек вывода звука
func (c *Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("некорректная частота дискретизации: %d", c.SampleRate)
	}
	if c.BufferMS <= 0 {
		return fmt.Errorf("некорректный размер буфера: %d мс", c.BufferMS)
	}
	if c.ResampleQuality < 1 || c.ResampleQuality > 64 {
		return fmt.Errorf("качество ресемплинга должно быть от 1 до 64, получено %d", c.ResampleQuality)
	}
	if c.SeekStep <= 0 {
		return fmt.Errorf("некорректный шаг перемотки: %s", c.SeekStep)
	}
	return nil
}

// BufferSize возвращает размер буфера вывода
func (c *Config) BufferSize() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// HasS3 сообщает, заданы ли настройки для S3
func (c *Config) HasS3() bool {
	return c.AwsRegion != "" || c.AwsEndpoint != ""
}

func applyEnv(c *Config) {
	overrides := map[string]*string{
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FILE":       &c.LogFile,
		"WATCH_DIR":      &c.WatchDir,
		"AWS_ACCESS_KEY": &c.AwsAccessKey,
		"AWS_SECRET_KEY": &c.AwsSecretKey,
		"AWS_REGION":     &c.AwsRegion,
		"AWS_ENDPOINT":   &c.AwsEndpoint,
	}
	for name, field := range overrides {
		if value, ok := os.LookupEnv(envPrefix + name); ok {
			*field = value
		}
	}
}

// fillDefaults восстанавливает значения, явно обнуленные в файле
func fillDefaults(c *Config) {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.BufferMS == 0 {
		c.BufferMS = d.BufferMS
	}
	if c.ResampleQuality == 0 {
		c.ResampleQuality = d.ResampleQuality
	}
	if c.SeekStep == 0 {
		c.SeekStep = d.SeekStep
	}
}

func expandHome(path, home string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	return path
}
