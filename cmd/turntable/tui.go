package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/turntable/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file|url|s3://bucket/key]...",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Load the files into a playlist and control it from an interactive terminal interface.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.launchTUI(ctx, args)
		},
	}
}

func (app *Application) launchTUI(ctx context.Context, refs []string) error {
	p, backend, err := app.newPlayer()
	if err != nil {
		return err
	}
	defer backend.Close()

	app.appendAll(ctx, p, refs)
	if p.IsEmpty() {
		return errNothingToPlay
	}

	p.Play()
	return tui.NewApp(p, app.Config.SeekStep).Run()
}
