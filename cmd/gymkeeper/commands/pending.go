package commands

import (
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"gymkeeper-backend/lib/notify"
	"gymkeeper-backend/services/pending"
)

var pendingAddDates *[]string

func init() {
	pendingAddDates = pendingAddCmd.Flags().StringSlice(
		"date", nil, "Class start as DD-MM-YYYY-HH:MM, repeatable.")
	pendingAddCmd.MarkFlagRequired("date")

	pendingCmd.AddCommand(pendingAddCmd)
	pendingCmd.AddCommand(pendingListCmd)
	pendingCmd.AddCommand(pendingRunCmd)
	rootCmd.AddCommand(pendingCmd)
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Manages the queue of bookings waiting for their slot to open.",
}

var pendingAddCmd = &cobra.Command{
	Use:   "add <activity> --date <DD-MM-YYYY-HH:MM> [--date ...]",
	Short: "Queues bookings without trying them now.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := newPendingStore(cfg)

		requests, err := parseRequests(cfg.Email, args[0], *pendingAddDates)
		if err != nil {
			return err
		}

		for _, request := range requests {
			entry := pending.NewRequest(request.Email, request.Activity, request.Date, request.Start)
			if err := store.Enqueue(entry); err != nil {
				return err
			}
			slog.Info("queued", "activity", entry.Activity, "date", entry.Date, "time", entry.Time)
		}
		return nil
	},
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the queued bookings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := newPendingStore(cfg)

		entries, err := store.List()
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Email", "Activity", "Date", "Time"})
		for _, entry := range entries {
			t.AppendRow(table.Row{entry.Email, entry.Activity, entry.Date, entry.Time})
		}
		t.Render()
		return nil
	},
}

var pendingRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Retries every queued booking, removing the ones that book or fail.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		service := newService(cfg)
		store := newPendingStore(cfg)

		outcomes, err := store.ReprocessAll(cmd.Context(), service)
		if err != nil {
			return err
		}

		for _, outcome := range outcomes {
			if outcome.Booked {
				slog.Info("booked",
					"activity", outcome.Request.Activity,
					"date", outcome.Request.Date,
					"time", outcome.Request.Time)
			} else {
				slog.Error("dropped from queue",
					"activity", outcome.Request.Activity,
					"date", outcome.Request.Date,
					"time", outcome.Request.Time,
					"err", outcome.Err)
			}
		}

		if cfg.Smtp.Server != "" && len(outcomes) > 0 {
			notifier := notify.NewNotifier(cfg.Smtp)
			err := notifier.SendOutcomes(cmd.Context(), cfg.Email, outcomes)
			if err != nil {
				slog.Error("failed to send outcome email", "err", err)
			}
		}
		return nil
	},
}
