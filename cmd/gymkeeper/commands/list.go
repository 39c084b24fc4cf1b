package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists your active reservations.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		service := newService(cfg)

		reservations, err := service.ActiveReservations(cmd.Context(), cfg.Email)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Activity", "Date", "Time"})
		for _, reservation := range reservations {
			t.AppendRow(table.Row{
				reservation.Activity,
				reservation.Date.Format("2006-01-02"),
				reservation.Start.String(),
			})
		}
		t.Render()
		return nil
	},
}
