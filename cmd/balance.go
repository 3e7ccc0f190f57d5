package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carehours/carebalance/app"
	"github.com/carehours/carebalance/config"
	"github.com/carehours/carebalance/core/events"
	"github.com/carehours/carebalance/infra/logger"
)

var (
	inputPath  string
	outputPath string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Balance a schedule workbook",
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input workbook (xlsx)")
	balanceCmd.Flags().StringVarP(&outputPath, "output", "o", "balanced.xlsx", "output workbook (xlsx)")
	_ = balanceCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	logg := logger.New("balance-command")
	sub := svc.Bus().Subscribe()
	go func() {
		for ev := range sub {
			if de, ok := ev.(events.DayEvent); ok && de.Action != "start" {
				logg.Debugf("day %s: %s", de.Day, de.Action)
			}
		}
	}()

	res, err := svc.Run(ctx, inputPath, outputPath)
	if err != nil {
		return err
	}
	fmt.Printf("days processed: %d\n", res.Stats.DaysProcessed)
	fmt.Printf("days balanced: %d\n", res.Stats.DaysBalanced)
	fmt.Printf("days unbalanced: %d\n", res.Stats.DaysUnbalanced)
	fmt.Printf("entries modified: %d\n", res.Stats.EntriesModified)
	fmt.Printf("providers added: %d\n", res.Stats.ProvidersAdded)
	for _, day := range res.Summary.UnbalancedDays {
		fmt.Printf("unbalanced: %s\n", day)
	}
	return nil
}
