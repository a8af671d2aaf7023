package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/brightfeed/internal/app"
	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/config"
	"github.com/MrSnakeDoc/brightfeed/internal/domain"
)

func newBookmarksCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Inspect and move a profile's bookmark collection",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Cobra runs only the closest persistent pre-run.
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return domain.ValidateProfileID(profile)
		},
	}
	cmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile id (required)")
	_ = cmd.MarkPersistentFlagRequired("profile")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the collection as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *bookmarks.Store) error {
				records, err := store.List(cmd.Context(), profile)
				if err != nil {
					return err
				}
				renderBookmarks(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return withStore(func(store *bookmarks.Store) error {
				return exportBookmarks(cmd.Context(), store, profile, w)
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")

	var input string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Add the records of a JSON export that are not bookmarked yet",
		Long: "Reads a JSON array of articles, as written by export, and toggles in every " +
			"article missing from the collection. Existing bookmarks are never removed. " +
			"Open views pick the changes up on their next resync.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return withStore(func(store *bookmarks.Store) error {
				added, skipped, err := importBookmarks(cmd.Context(), store, profile, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d bookmarks into %s (%d already present)\n",
					added, profile, skipped)
				return nil
			})
		},
	}
	imp.Flags().StringVarP(&input, "file", "f", "-", "input file, - for stdin")

	cmd.AddCommand(list, export, imp)
	return cmd
}

// withStore opens the configured backend for the duration of fn.
func withStore(fn func(store *bookmarks.Store) error) error {
	cfg := config.LoadStorage()
	log := cliLogger()
	defer func() { _ = log.Sync() }()

	storage, err := app.OpenStorage(cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close(log)

	if cfg.Store == config.StoreMemory {
		log.Warn("memory store holds nothing outside a running server")
	}
	return fn(bookmarks.NewStore(storage.Backend, nil, log))
}

func exportBookmarks(ctx context.Context, store *bookmarks.Store, profile string, w io.Writer) error {
	records, err := store.List(ctx, profile)
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.SavedArticle{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func importBookmarks(ctx context.Context, store *bookmarks.Store, profile string, r io.Reader) (added, skipped int, err error) {
	var records []domain.SavedArticle
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, 0, fmt.Errorf("decode import: %w", err)
	}

	for _, rec := range records {
		article := rec.Article()
		present, err := store.IsBookmarked(ctx, profile, article)
		if err != nil {
			return added, skipped, err
		}
		if present {
			skipped++
			continue
		}
		if _, err := store.Toggle(ctx, profile, article); err != nil {
			return added, skipped, fmt.Errorf("import %q: %w", rec.Headline, err)
		}
		added++
	}
	return added, skipped, nil
}

func renderBookmarks(w io.Writer, records []domain.SavedArticle) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "ID", "Category", "Headline", "Bookmarked At"})
	for i, rec := range records {
		t.AppendRow(table.Row{i + 1, rec.ID, rec.Category, rec.Headline, rec.BookmarkedAt.Format("2006-01-02 15:04")})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d bookmarks", len(records)), ""})
	t.Render()
}
