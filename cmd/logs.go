package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carehours/carebalance/app"
	"github.com/carehours/carebalance/config"
	"github.com/carehours/carebalance/core/balance/changelog"
)

var (
	logsDay      string
	logsProvider string
	logsCategory string
	logsRun      string
	logsSince    string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the change log store",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsDay, "day", "", "filter by day (MM/DD/YYYY)")
	logsCmd.Flags().StringVar(&logsProvider, "provider", "", "filter by provider name")
	logsCmd.Flags().StringVar(&logsCategory, "category", "", "filter by category")
	logsCmd.Flags().StringVar(&logsRun, "run", "", "filter by run id")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "only entries after this RFC3339 time")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := app.NewStore(cfg.ChangeLog)
	if err != nil {
		return fmt.Errorf("change log store: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := changelog.Query{
		Day:      logsDay,
		Provider: logsProvider,
		Category: changelog.Category(logsCategory),
		RunID:    logsRun,
	}
	if logsSince != "" {
		t, err := time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		q.Start = t
	}
	entries, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	for _, e := range entries {
		rec := e.Record
		fmt.Printf("%s %s %s/%s %s %.2f -> %.2f [%s/%s]\n",
			e.Timestamp.Format(time.RFC3339), rec.Day, rec.Provider, rec.Individual,
			rec.Field, rec.Old, rec.New, rec.Reason, rec.Category)
	}
	return nil
}
