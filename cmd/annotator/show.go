package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-annotator/internal/comment"
	"github.com/hazadus/go-annotator/internal/utils"
)

// createShowCommand создает команду show с привязкой к экземпляру приложения
func (app *Application) createShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file name]",
		Short: "Print comments of an audio file",
		Long:  `Print stored comments of an audio file in timestamp order. The file is identified by its name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showComments(cmd, args[0])
		},
	}
}

func (app *Application) showComments(cmd *cobra.Command, name string) error {
	identity := identityFromArg(name)

	list, err := app.Comments.Load(identity)
	if err != nil {
		return fmt.Errorf("не удалось прочитать комментарии %s: %w", identity, err)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintf(out, "🎧 %s: комментариев нет\n", identity)
		return nil
	}

	fmt.Fprintf(out, "🎧 %s: %d\n\n", identity, len(list))
	for _, c := range comment.Sorted(list) {
		fmt.Fprintf(out, "%s  %s\n", utils.FormatTimestamp(c.Timestamp), c.Text)
	}
	return nil
}
