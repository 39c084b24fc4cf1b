package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"gymkeeper-backend/services/pending"
	"gymkeeper-backend/services/scheduler"
)

var scheduleDates *[]string

func init() {
	scheduleDates = scheduleCmd.Flags().StringSlice(
		"date", nil, "Class start as DD-MM-YYYY-HH:MM, repeatable.")
	scheduleCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <activity> --date <DD-MM-YYYY-HH:MM> [--date ...]",
	Short: "Books the given classes, queueing the ones whose slot isn't open yet.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		service := newService(cfg)
		store := newPendingStore(cfg)

		requests, err := parseRequests(cfg.Email, args[0], *scheduleDates)
		if err != nil {
			return err
		}

		for _, request := range requests {
			booked, err := service.Schedule(cmd.Context(), request)
			switch {
			case errors.Is(err, scheduler.ErrSlotWindow):
				slog.Error("slot missing inside the notice window, check the request",
					"activity", request.Activity, "start", request.StartsAt(), "err", err)
			case err != nil:
				slog.Error("booking failed",
					"activity", request.Activity, "start", request.StartsAt(), "err", err)
			case booked:
				slog.Info("booked",
					"activity", request.Activity, "start", request.StartsAt())
			default:
				entry := pending.NewRequest(request.Email, request.Activity, request.Date, request.Start)
				if err := store.Enqueue(entry); err != nil {
					return err
				}
				slog.Info("slot not open yet, queued for retry",
					"activity", request.Activity, "start", request.StartsAt())
			}
		}
		return nil
	},
}
