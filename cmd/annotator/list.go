package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-annotator/internal/store"
	"github.com/hazadus/go-annotator/internal/utils"
)

// maxConcurrentLoads ограничивает число одновременных чтений хранилища
const maxConcurrentLoads = 4

// fileSummary - строка вывода команды list
type fileSummary struct {
	identity string
	count    int
	corrupt  bool
}

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List annotated audio files",
		Long:  `Display all audio files that have stored comments, with comment counts.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.listFiles(ctx, cmd)
		},
	}
}

func (app *Application) listFiles(ctx context.Context, cmd *cobra.Command) error {
	summaries, err := app.summarize(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "📚 Комментариев пока нет. Откройте файл: annotator <file>")
		return nil
	}

	fmt.Fprintf(out, "📚 Файлов с комментариями: %d\n\n", len(summaries))
	fmt.Fprintf(out, "%-50s %s\n", "Файл", "Комментарии")
	fmt.Fprintln(out, strings.Repeat("-", 64))

	for _, s := range summaries {
		count := fmt.Sprintf("%d", s.count)
		if s.corrupt {
			count = "запись повреждена"
		}
		fmt.Fprintf(out, "%-50s %s\n", utils.TruncateString(s.identity, 48), count)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "💡 Используйте 'annotator show [файл]' для просмотра комментариев")
	return nil
}

// summarize параллельно загружает списки комментариев и считает их
func (app *Application) summarize(ctx context.Context) ([]fileSummary, error) {
	identities, err := app.Comments.Identities()
	if err != nil {
		return nil, err
	}

	summaries := make([]fileSummary, len(identities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for i, identity := range identities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			list, err := app.Comments.Load(identity)
			switch {
			case errors.Is(err, store.ErrCorruptRecord):
				summaries[i] = fileSummary{identity: identity, corrupt: true}
			case err != nil:
				return fmt.Errorf("%s: %w", identity, err)
			default:
				summaries[i] = fileSummary{identity: identity, count: len(list)}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
