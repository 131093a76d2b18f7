package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-annotator/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "annotator [audio file]",
		Short: "Annotate local audio files with timestamped comments",
		Long: `A terminal tool to play local mp3/wav files and attach timestamped comments.
Comments are stored per file name and restored the next time the file is opened.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.setup()
		},
		RunE: func(_ *cobra.Command, args []string) error {
			var initialFile string
			if len(args) == 1 {
				initialFile = args[0]
			}
			return app.launchTUI(initialFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", config.DefaultPath, "path to config file")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createShowCommand())

	return rootCmd
}
