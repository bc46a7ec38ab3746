package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazadus/turntable/internal/metadata"
	"github.com/hazadus/turntable/internal/source"
)

// errNoCover возвращается, если у файла нет обложки
var errNoCover = errors.New("обложка не найдена")

// createCoverCommand создает команду cover с привязкой к экземпляру приложения
func (app *Application) createCoverCommand(ctx context.Context) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cover [file|url|s3://bucket/key]",
		Short: "Extract cover art from an audio file",
		Long:  `Extract embedded cover art. Without --output the image is printed as a data URL.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.extractCover(ctx, cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the image to this file")
	return cmd
}

func (app *Application) extractCover(ctx context.Context, cmd *cobra.Command, ref, output string) error {
	file, err := source.Open(ref, app.sourceOptions())
	if err != nil {
		return err
	}

	data, err := file.ReadAll(ctx)
	if err != nil {
		return err
	}

	extractor := metadata.NewExtractor(app.Config.FolderCover)
	cover, err := extractor.FetchCoverArt(ctx, file.ID(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	if cover == nil {
		return fmt.Errorf("%s: %w", file.Name(), errNoCover)
	}

	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), cover.DataURL())
		return nil
	}

	image, err := cover.Bytes()
	if err != nil {
		return fmt.Errorf("ошибка декодирования обложки: %w", err)
	}
	if err := os.WriteFile(output, image, 0o644); err != nil {
		return fmt.Errorf("ошибка записи обложки: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🖼  Обложка (%s) сохранена в %s\n", cover.MIMEType, output)
	return nil
}
