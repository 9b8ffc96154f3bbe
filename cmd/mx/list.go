package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/presenter"
	"github.com/jingkaihe/mx/pkg/snippets"
)

type ListConfig struct {
	Pattern    string
	JSONOutput bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{}
}

type ListOutputFormat int

const (
	ListTableFormat ListOutputFormat = iota
	ListJSONFormat
)

type ListOutput struct {
	Entries []snippets.Entry
	Format  ListOutputFormat
}

func (o *ListOutput) Render(w io.Writer) error {
	if o.Format == ListJSONFormat {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

func (o *ListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Snippets []snippets.Entry `json:"snippets"`
	}

	jsonData, err := json.MarshalIndent(jsonOutput{Snippets: o.Entries}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func (o *ListOutput) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Key\tPath\tTitle\tDescription")
	fmt.Fprintln(tw, "---\t----\t-----\t-----------")

	for _, entry := range o.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			entry.Key,
			entry.RelativePath,
			entry.Title,
			entry.Description,
		)
	}

	return tw.Flush()
}

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List context documents",
	Long: `List the documents in the context store with their keys and front
matter metadata. An optional doublestar pattern (pending/**) filters by
relative path.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := NewListConfig()
		if len(args) > 0 {
			config.Pattern = args[0]
		}
		config.JSONOutput, _ = cmd.Flags().GetBool("json")

		if err := runList(cmd.Context(), config); err != nil {
			presenter.Error(err, "Failed to list context documents")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(withTracing(listCmd))

	listCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runList(ctx context.Context, config *ListConfig) error {
	s, err := newStore()
	if err != nil {
		return errors.Wrap(err, "failed to initialize context store")
	}

	entries, err := snippets.List(ctx, s.Resolver(), config.Pattern)
	if err != nil {
		return err
	}

	if len(entries) == 0 && !config.JSONOutput {
		presenter.Info("No context documents found")
		return nil
	}
	if entries == nil {
		entries = make([]snippets.Entry, 0)
	}

	format := ListTableFormat
	if config.JSONOutput {
		format = ListJSONFormat
	}

	output := &ListOutput{Entries: entries, Format: format}
	if err := output.Render(os.Stdout); err != nil {
		return errors.Wrap(err, "failed to render list")
	}

	return nil
}
