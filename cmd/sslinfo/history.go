package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sensiblebit/simplessl/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historySummary bool
	historyFormat  = newEnum("format", "text", "text", "json")
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded inspections",
	Long:  "List the inspections recorded in the --db catalog, newest first.",
	Example: `  sslinfo -d history.db history
  sslinfo -d history.db history --summary`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum records to list (0 for all)")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "Print aggregate counts instead of records")
	historyCmd.Flags().Var(historyFormat, "format", "Output format: text or json")
	registerCompletions(historyCmd, flagCompletion{"format", enumCompletion(historyFormat)})
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if dbPath == "" {
		return fmt.Errorf("history requires --db")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}
	db, err := catalog.NewDB()
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	defer db.Close()
	if err := db.LoadFromDisk(dbPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historySummary {
		s, err := db.GetSummary()
		if err != nil {
			return fmt.Errorf("generating summary: %w", err)
		}
		if historyFormat.String() == "json" {
			return writeJSON(cmd, s)
		}
		fmt.Fprintf(out, "Inspections:  %d\n", s.Total)
		fmt.Fprintf(out, "  Certificates: %d\n", s.Certificates)
		fmt.Fprintf(out, "  CRLs:         %d\n", s.CRLs)
		fmt.Fprintf(out, "  Failed:       %d\n", s.Failed)
		return nil
	}

	recs, err := db.List(historyLimit)
	if err != nil {
		return err
	}
	if historyFormat.String() == "json" {
		return writeJSON(cmd, recs)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tKIND\tSOURCE\tSUBJECT\tRESULT")
	for _, r := range recs {
		result := "ok"
		if r.Error != "" {
			result = r.Error
		}
		subject := r.Subject.String
		if !r.Subject.Valid && r.Issuer.Valid {
			subject = "issuer " + r.Issuer.String
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.InspectedAt.UTC().Format("2006-01-02 15:04:05"), r.Kind, r.Source, subject, result)
	}
	return tw.Flush()
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
