package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hazadus/turntable/internal/audio"
	"github.com/hazadus/turntable/internal/config"
	"github.com/hazadus/turntable/internal/metadata"
	"github.com/hazadus/turntable/internal/player"
	"github.com/hazadus/turntable/internal/s3"
	"github.com/hazadus/turntable/internal/source"
	"github.com/hazadus/turntable/internal/utils"
)

// Application хранит зависимости, общие для всех команд
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// newBackend создает аудиовыход; в тестах подменяется на audio.Mock
	newBackend func() (audio.Backend, error)
	// downloader загружает объекты S3, создается при первом обращении
	downloader source.ObjectDownloader
}

// NewApplication создает приложение с выводом звука через динамики
func NewApplication(cfg *config.Config, log *zap.Logger) *Application {
	app := &Application{
		Config: cfg,
		Logger: log,
	}
	app.newBackend = func() (audio.Backend, error) {
		return audio.NewBeepBackend(audio.BeepConfig{
			SampleRate:      cfg.SampleRate,
			BufferSize:      cfg.BufferSize(),
			ResampleQuality: cfg.ResampleQuality,
		})
	}
	return app
}

// newPlayer создает плеер поверх нового аудиовыхода.
// Вызывающий закрывает backend после завершения работы.
func (app *Application) newPlayer() (*player.Player, audio.Backend, error) {
	backend, err := app.newBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка инициализации аудиовыхода: %w", err)
	}

	p := player.New(backend,
		metadata.NewExtractor(app.Config.FolderCover),
		player.WithLogger(app.Logger),
	)
	return p, backend, nil
}

// sourceOptions собирает настройки для открытия файлов
func (app *Application) sourceOptions() source.Options {
	opts := source.Options{
		HTTPClient: source.NewHTTPClient(app.Config.HTTPTimeout),
	}

	if app.downloader == nil && app.Config.HasS3() {
		client, err := s3.NewClient(&s3.Config{
			Region:    app.Config.AwsRegion,
			AccessKey: app.Config.AwsAccessKey,
			SecretKey: app.Config.AwsSecretKey,
			Endpoint:  app.Config.AwsEndpoint,
		})
		if err != nil {
			app.Logger.Warn("S3 недоступен", zap.Error(err))
		} else {
			app.downloader = client
		}
	}
	opts.S3 = app.downloader
	return opts
}

// appendAll добавляет файлы в плейлист по очереди.
// Ошибки отдельных файлов выводятся и не прерывают добавление остальных.
func (app *Application) appendAll(ctx context.Context, p *player.Player, refs []string) int {
	opts := app.sourceOptions()
	added := 0

	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}

		fileOpts := opts
		fileOpts.OnProgress = downloadProgress(ref)

		file, err := source.Open(ref, fileOpts)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", ref, err)
			continue
		}

		start := time.Now()
		before := p.Len()
		if err := p.Append(ctx, file); err != nil {
			fmt.Printf("\r\033[K❌ %s: %v\n", ref, err)
			app.Logger.Warn("Не удалось добавить трек", zap.String("ref", ref), zap.Error(err))
			continue
		}

		if p.Len() > before {
			added++
			fmt.Printf("\r\033[K➕ %s (%s)\n", file.Name(), time.Since(start).Round(time.Millisecond))
		} else {
			fmt.Printf("\r\033[K↩️  %s уже в плейлисте\n", file.Name())
		}
	}
	return added
}

// downloadProgress выводит прогресс загрузки удаленного файла в одну строку.
// Строка обновляется только при изменении процента.
func downloadProgress(ref string) func(read, total int64) {
	last := -1
	return func(read, total int64) {
		if total <= 0 {
			fmt.Printf("\r\033[K⬇️  %s: %s", ref, utils.FormatFileSize(read))
			return
		}

		percent := int(read * 100 / total)
		if percent > 100 {
			percent = 100
		}
		if percent == last {
			return
		}
		last = percent
		fmt.Printf("\r\033[K⬇️  %s: %d%% (%s)", ref, percent, utils.FormatFileSize(total))
	}
}
