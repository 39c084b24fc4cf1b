package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"gymkeeper-backend/lib/attemptlog"
	"gymkeeper-backend/lib/configutil"
	"gymkeeper-backend/lib/notify"
	"gymkeeper-backend/lib/osutil"
	"gymkeeper-backend/lib/scrapers/gymsite"
	"gymkeeper-backend/services/pending"
	"gymkeeper-backend/services/scheduler"
)

type Config struct {
	// the root of the gym's scheduling site, e.g. https://www.gym.example
	BaseUrl string `json:"base_url"`
	// the account identity used for login and reservations
	Email string `json:"email"`
	// path to the pending request queue, defaults to ~/.gymkeeper/pending.json
	PendingFile string `json:"pending_file"`
	// path to the attempt history database, empty disables history
	AttemptDb string `json:"attempt_db"`
	// optional, pending-run outcome emails are skipped when unset
	Smtp notify.SmtpConfig `json:"smtp"`
}

var configFile *string

var rootCmd = &cobra.Command{
	Use:   "gymkeeper",
	Short: "gymkeeper books and cancels gym class reservations and retries the ones that aren't open yet.",
}

func init() {
	configFile = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config](*configFile)
	if err != nil {
		osutil.Fatal("failed to read config", err)
	}
	if cfg.BaseUrl == "" || cfg.Email == "" {
		osutil.Fatal("failed to read config", fmt.Errorf("base_url and email are required"))
	}
	return cfg
}

func newService(cfg Config) scheduler.Service {
	var attempts *attemptlog.Store
	if cfg.AttemptDb != "" {
		db, err := attemptlog.Open(cfg.AttemptDb)
		if err != nil {
			osutil.Fatal("failed to open attempt history", err)
		}
		store := attemptlog.NewStore(db)
		attempts = &store
	}

	return scheduler.NewService(scheduler.Options{
		OpenSession: func(ctx context.Context, email string) (scheduler.Session, error) {
			return gymsite.NewClient(ctx, gymsite.ClientOptions{
				BaseUrl: cfg.BaseUrl,
				Email:   email,
			})
		},
		Attempts: attempts,
	})
}

func newPendingStore(cfg Config) pending.Store {
	store, err := pending.NewStore(cfg.PendingFile)
	if err != nil {
		osutil.Fatal("failed to open pending store", err)
	}
	return store
}
