package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/turntable/internal/audio"
	"github.com/hazadus/turntable/internal/metadata"
	"github.com/hazadus/turntable/internal/source"
	"github.com/hazadus/turntable/internal/utils"
)

// createInfoCommand создает команду info с привязкой к экземпляру приложения
func (app *Application) createInfoCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "info [file|url|s3://bucket/key]",
		Short: "Show tags, format and duration of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showInfo(ctx, cmd, args[0])
		},
	}
}

func (app *Application) showInfo(ctx context.Context, cmd *cobra.Command, ref string) error {
	file, err := source.Open(ref, app.sourceOptions())
	if err != nil {
		return err
	}

	data, err := file.ReadAll(ctx)
	if err != nil {
		return err
	}

	// Декодируем без передискретизации, чтобы показать исходные параметры
	buf, err := audio.DecodeBytes(file.Name(), data, 0, app.Config.ResampleQuality)
	if err != nil {
		return err
	}

	extractor := metadata.NewExtractor(app.Config.FolderCover)
	tags := extractor.ExtractFromReader(bytes.NewReader(data), file.Name())
	cover, err := extractor.FetchCoverArt(ctx, file.ID(), bytes.NewReader(data))
	if err != nil {
		cover = nil
	}

	coverText := "нет"
	if cover != nil {
		coverText = cover.MIMEType
	}
	format := buf.Format()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🎵 %s\n", file.Name())
	fmt.Fprintf(out, "   Источник: %s\n", file.ID())
	fmt.Fprintf(out, "   Исполнитель: %s\n", tags.Artist)
	fmt.Fprintf(out, "   Название: %s\n", tags.Title)
	fmt.Fprintf(out, "   Альбом: %s\n", tags.Album)
	fmt.Fprintf(out, "   Формат: %s, %d Гц, каналов: %d\n", buf.SourceFormat(), format.SampleRate, format.NumChannels)
	fmt.Fprintf(out, "   Продолжительность: %s\n", utils.FormatDuration(buf.Duration()))
	fmt.Fprintf(out, "   Размер: %s\n", utils.FormatFileSize(int64(len(data))))
	fmt.Fprintf(out, "   Обложка: %s\n", coverText)
	return nil
}
