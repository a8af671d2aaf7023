package main

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/brightfeed/internal/sources/catalog"
)

func newCategoriesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Validate and print the category catalog",
		Long: "Prints the built-in catalog, or validates and prints the catalog file " +
			"given with --file or BRIGHTFEED_CATALOG_FILE.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = os.Getenv("BRIGHTFEED_CATALOG_FILE")
			}
			c := catalog.Default()
			if file != "" {
				loaded, err := catalog.NewLoader(file).Load()
				if err != nil {
					return err
				}
				c = loaded
			}
			renderCategories(cmd.OutOrStdout(), c)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	return cmd
}

func renderCategories(w io.Writer, c *catalog.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Slug", "Label", "Aliases"})
	for _, cat := range c.Categories() {
		t.AppendRow(table.Row{cat.Slug, cat.Label, strings.Join(cat.Aliases, ", ")})
	}
	t.Render()
}
