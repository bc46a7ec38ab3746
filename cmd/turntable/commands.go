package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "turntable",
		Short:         "A terminal playlist player",
		Long:          `A terminal playlist player for local files, HTTP links and S3 objects.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))
	rootCmd.AddCommand(app.createInfoCommand(ctx))
	rootCmd.AddCommand(app.createCoverCommand(ctx))

	return rootCmd
}
