package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var cancelDates *[]string

func init() {
	cancelDates = cancelCmd.Flags().StringSlice(
		"date", nil, "Class start as DD-MM-YYYY-HH:MM, repeatable.")
	cancelCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(cancelCmd)
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <activity> --date <DD-MM-YYYY-HH:MM> [--date ...]",
	Short: "Cancels active reservations for the given classes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		service := newService(cfg)

		requests, err := parseRequests(cfg.Email, args[0], *cancelDates)
		if err != nil {
			return err
		}

		for _, request := range requests {
			_, err := service.CancelSchedule(cmd.Context(), request)
			if err != nil {
				slog.Error("cancellation failed",
					"activity", request.Activity, "start", request.StartsAt(), "err", err)
				continue
			}
			slog.Info("cancelled",
				"activity", request.Activity, "start", request.StartsAt())
		}
		return nil
	},
}
