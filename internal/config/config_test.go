package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// isolateEnv подменяет домашнюю директорию и очищает переменные TURNTABLE_*
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"LOG_LEVEL", "LOG_FILE", "WATCH_DIR", "AWS_ACCESS_KEY", "AWS_SECRET_KEY", "AWS_REGION", "AWS_ENDPOINT"} {
		t.Setenv(envPrefix+name, "")
		os.Unsetenv(envPrefix + name)
	}
	return home
}

func TestLoadConfigFromFile(t *testing.T) {
	home := isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	// Создаем тестовую конфигурацию
	content := `log_level: debug
log_file: ~/logs/turntable.log
sample_rate: 48000
buffer_ms: 250
resample_quality: 6
seek_step: 10s
folder_cover: false
watch_dir: ~/Music/inbox
aws_access_key: test-access-key
aws_secret_key: test-secret-key
aws_region: eu-central-1
aws_endpoint: http://localhost:9000
http_timeout: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if loadedConfig.LogLevel != "debug" {
		t.Errorf("Ожидался LogLevel: debug, получено: %s", loadedConfig.LogLevel)
	}
	if loadedConfig.LogFile != filepath.Join(home, "logs", "turntable.log") {
		t.Errorf("Неожиданный LogFile: %s", loadedConfig.LogFile)
	}
	if loadedConfig.SampleRate != 48000 {
		t.Errorf("Ожидался SampleRate: 48000, получено: %d", loadedConfig.SampleRate)
	}
	if loadedConfig.BufferSize() != 250*time.Millisecond {
		t.Errorf("Ожидался BufferSize: 250ms, получено: %s", loadedConfig.BufferSize())
	}
	if loadedConfig.ResampleQuality != 6 {
		t.Errorf("Ожидался ResampleQuality: 6, получено: %d", loadedConfig.ResampleQuality)
	}
	if loadedConfig.SeekStep != 10*time.Second {
		t.Errorf("Ожидался SeekStep: 10s, получено: %s", loadedConfig.SeekStep)
	}
	if loadedConfig.FolderCover {
		t.Error("FolderCover должен быть выключен")
	}
	if loadedConfig.WatchDir != filepath.Join(home, "Music", "inbox") {
		t.Errorf("Неожиданный WatchDir: %s", loadedConfig.WatchDir)
	}
	if loadedConfig.AwsAccessKey != "test-access-key" {
		t.Errorf("Ожидался AwsAccessKey: test-access-key, получено: %s", loadedConfig.AwsAccessKey)
	}
	if loadedConfig.AwsSecretKey != "test-secret-key" {
		t.Errorf("Ожидался AwsSecretKey: test-secret-key, получено: %s", loadedConfig.AwsSecretKey)
	}
	if loadedConfig.AwsRegion != "eu-central-1" {
		t.Errorf("Ожидался AwsRegion: eu-central-1, получено: %s", loadedConfig.AwsRegion)
	}
	if loadedConfig.AwsEndpoint != "http://localhost:9000" {
		t.Errorf("Ожидался AwsEndpoint: http://localhost:9000, получено: %s", loadedConfig.AwsEndpoint)
	}
	if loadedConfig.HTTPTimeout != 30*time.Second {
		t.Errorf("Ожидался HTTPTimeout: 30s, получено: %s", loadedConfig.HTTPTimeout)
	}
}

func TestDefaultConfig(t *testing.T) {
	home := isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "minimal_config.yaml")

	// Минимальная конфигурация
	minimalConfig := map[string]string{
		"aws_access_key": "test-key",
	}
	data, err := yaml.Marshal(minimalConfig)
	if err != nil {
		t.Fatalf("Ошибка сериализации конфигурации: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	defaults := Default()
	if loadedConfig.SampleRate != defaults.SampleRate {
		t.Errorf("Ожидался SampleRate по умолчанию: %d, получено: %d", defaults.SampleRate, loadedConfig.SampleRate)
	}
	if loadedConfig.SeekStep != defaults.SeekStep {
		t.Errorf("Ожидался SeekStep по умолчанию: %s, получено: %s", defaults.SeekStep, loadedConfig.SeekStep)
	}
	if !loadedConfig.FolderCover {
		t.Error("FolderCover по умолчанию должен быть включен")
	}
	if loadedConfig.LogFile != filepath.Join(home, ".turntable.log") {
		t.Errorf("Неожиданный LogFile по умолчанию: %s", loadedConfig.LogFile)
	}
	if loadedConfig.AwsAccessKey != "test-key" {
		t.Errorf("Ожидался AwsAccessKey: test-key, получено: %s", loadedConfig.AwsAccessKey)
	}
}

func TestZeroValuesRestoreDefaults(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(configPath, []byte("sample_rate: 0\nlog_level: \"\"\n"), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if loadedConfig.SampleRate != 44100 {
		t.Errorf("Ожидался SampleRate: 44100, получено: %d", loadedConfig.SampleRate)
	}
	if loadedConfig.LogLevel != "info" {
		t.Errorf("Ожидался LogLevel: info, получено: %s", loadedConfig.LogLevel)
	}
}

func TestEnvVarOverride(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	content := "aws_access_key: file-key\naws_region: us-west-1\nlog_level: info\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	t.Setenv("TURNTABLE_AWS_ACCESS_KEY", "env-key")
	t.Setenv("TURNTABLE_LOG_LEVEL", "debug")

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if loadedConfig.AwsAccessKey != "env-key" {
		t.Errorf("Ожидался AwsAccessKey из окружения: env-key, получено: %s", loadedConfig.AwsAccessKey)
	}
	if loadedConfig.LogLevel != "debug" {
		t.Errorf("Ожидался LogLevel из окружения: debug, получено: %s", loadedConfig.LogLevel)
	}
	if loadedConfig.AwsRegion != "us-west-1" {
		t.Errorf("Ожидался AwsRegion из файла: us-west-1, получено: %s", loadedConfig.AwsRegion)
	}
}

func TestLoadConfigNonExistentFile(t *testing.T) {
	isolateEnv(t)

	loadedConfig, err := LoadConfig("/non/existent/config.yaml")
	if err != nil {
		t.Fatalf("Отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if loadedConfig.SampleRate != Default().SampleRate {
		t.Errorf("Ожидались значения по умолчанию, получено SampleRate: %d", loadedConfig.SampleRate)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "invalid_config.yaml")

	// Записываем некорректный YAML
	invalidYAML := `aws_access_key: "test-key"
invalid_field: [unclosed array
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Ожидалась ошибка при загрузке некорректного YAML")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"sample rate", "sample_rate: 100\n", "частота"},
		{"buffer", "buffer_ms: -5\n", "буфер"},
		{"quality", "resample_quality: 100\n", "ресемплинг"},
		{"seek step", "seek_step: -1s\n", "перемотки"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Ошибка записи файла конфигурации: %v", err)
			}

			_, err := LoadConfig(configPath)
			if err == nil {
				t.Fatal("Ожидалась ошибка валидации")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Ожидалась ошибка про %q, получено: %v", tt.errPart, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(envPath, []byte("TURNTABLE_AWS_REGION=ap-south-1\n"), 0644); err != nil {
		t.Fatalf("Ошибка записи .env: %v", err)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TURNTABLE_AWS_REGION") })

	loadedConfig, err := LoadConfig(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if loadedConfig.AwsRegion != "ap-south-1" {
		t.Errorf("Ожидался AwsRegion из .env: ap-south-1, получено: %s", loadedConfig.AwsRegion)
	}
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"~", "/home/user"},
		{"~/music", "/home/user/music"},
		{"/abs/~/path", "/abs/~/path"},
		{"~other/music", "~other/music"},
		{"", ""},
	}

	for _, test := range tests {
		if got := expandHome(test.path, "/home/user"); got != test.expected {
			t.Errorf("expandHome(%q) = %s; expected %s", test.path, got, test.expected)
		}
	}
}
