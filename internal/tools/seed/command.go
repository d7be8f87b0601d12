package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/univdir/universities-api/internal/config"
	"github.com/univdir/universities-api/internal/database"
	"github.com/univdir/universities-api/internal/directory"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/service"
	"github.com/univdir/universities-api/internal/tools/common"
)

type options struct {
	envFile            string
	bootstrapUserEmail string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database migration and seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.bootstrapUserEmail, "bootstrap-user-email", "", "override bootstrap user email")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newIngestCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Run schema migration and seed the bootstrap user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var details []string
			err := func() error {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return err
				}
				if err := database.Migrate(db); err != nil {
					return err
				}
				details = append(details, "schema migrated")
				email := cfg.BootstrapUserEmail
				if opts.bootstrapUserEmail != "" {
					email = strings.ToLower(strings.TrimSpace(opts.bootstrapUserEmail))
				}
				if err := database.Seed(db, email, cfg.BootstrapUserPassword); err != nil {
					return err
				}
				if email != "" {
					details = append(details, "bootstrap user ensured: "+email)
				} else {
					details = append(details, "no bootstrap user configured, skipped")
				}
				return nil
			}()
			common.PrintResult(err == nil, "seed apply", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			var details []string
			err := func() error {
				cfg, _, err := loadConfigDB(opts.envFile)
				if err != nil {
					return err
				}
				email := cfg.BootstrapUserEmail
				if opts.bootstrapUserEmail != "" {
					email = strings.ToLower(strings.TrimSpace(opts.bootstrapUserEmail))
				}
				details = []string{
					"would migrate tables: users, credentials, reset_password_tokens, universities",
				}
				if email != "" {
					details = append(details, fmt.Sprintf("would ensure bootstrap user with credential: %s", email))
				}
				return nil
			}()
			common.PrintResult(err == nil, "seed dry-run", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

// newIngestCommand runs one ingestion pass against the external directory,
// outside the daily schedule. Useful for first boot and for backfills.
func newIngestCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run a one-off university ingestion from the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			var details []string
			err := func() error {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return err
				}
				if err := database.Migrate(db); err != nil {
					return err
				}
				logger := observability.NewBootstrapLogger(cfg)
				client := directory.NewClient(cfg, logger)
				ctx := context.Background()
				if err := directory.WaitReady(ctx, client, cfg.StartupCheckAttempts, cfg.StartupCheckBackoff, logger); err != nil {
					return fmt.Errorf("directory unavailable: %w", err)
				}
				ingest := service.NewIngestService(client, repository.NewUniversityRepository(db), service.NoopListCache{}, cfg.DirectoryCountries, logger)
				if err := ingest.Run(ctx); err != nil {
					return err
				}
				details = append(details, "ingested countries: "+strings.Join(cfg.DirectoryCountries, ", "))
				return nil
			}()
			common.PrintResult(err == nil, "seed ingest", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
