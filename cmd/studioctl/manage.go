package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/visualink/studio/internal/gallery"
)

func newRemoveCommand(a *app) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a gallery item and its media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteItem(cmd.Context(), id, url); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "media URL to remove (default: the item's stored URL)")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List gallery items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.api.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tCREATED\tURL")
			for _, it := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Category, it.Title, it.CreatedAt.Format("2006-01-02 15:04"), it.URL)
			}
			return tw.Flush()
		},
	}
}

func printItem(w io.Writer, it gallery.Item) {
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.ID, it.Category, it.Title, it.URL)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}
