// Command printfast runs maintenance tasks against the PrintFast database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jordanlanch/printfast/config"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/campaigns"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/email"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/report"
	"github.com/jordanlanch/printfast/pkg/testdata"
	"github.com/jordanlanch/printfast/pkg/users"
	"github.com/jordanlanch/printfast/pkg/vendors"
	"github.com/spf13/cobra"
)

type app struct {
	cfg       *config.Config
	db        *database.Client
	log       logger.Logger
	users     *users.Service
	vendors   *vendors.Service
	campaigns *campaigns.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.NewClient(cfg.DatabaseURL, database.DefaultPoolConfig(), &database.SSLConfig{Mode: cfg.DBSSLMode})
	if err != nil {
		return nil, err
	}
	log := logger.NewForEnvironment(cfg.LogLevel, cfg.Environment)
	mailer := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey)

	return &app{
		cfg: cfg,
		db:  db,
		log: log,
		users: users.NewService(db, users.Options{
			GodUser: users.GodUser{
				Email:     cfg.GodUserEmail,
				Password:  cfg.GodUserPassword,
				FirstName: cfg.GodUserFirstName,
				LastName:  cfg.GodUserLastName,
			},
		}, mailer, nil, log),
		vendors: vendors.NewService(db, log),
		// uploads are never performed from the CLI
		campaigns: campaigns.NewService(db, nil, campaigns.Options{PreserveWeekPayments: cfg.PreserveWeekPayments}, nil, log),
	}, nil
}

// god returns the actor every CLI write is attributed to, seeding it when missing
func (a *app) god(ctx context.Context) (*auth.Actor, error) {
	u, _, err := a.users.SeedGod(ctx)
	if err != nil {
		return nil, err
	}
	return auth.ActorFromUser(u), nil
}

func main() {
	rootCmd := cobra.Command{
		Use:   "printfast",
		Short: "PrintFast maintenance commands",
	}
	rootCmd.AddCommand(
		seedGodCommand(),
		seedDemoCommand(),
		exportCampaignsCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seedGodCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-god",
		Short: "Create the configured god user if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.db.Close()

			u, created, err := a.users.SeedGod(cmd.Context())
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("✅ God user created: %s\n", u.Email)
			} else {
				fmt.Printf("ℹ️  God user already exists: %s\n", u.Email)
			}
			return nil
		},
	}
}

func seedDemoCommand() *cobra.Command {
	var (
		vendorCount   int
		campaignCount int
		seed          int64
	)
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Insert fake vendors and campaigns for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.db.Close()
			if a.cfg.IsProduction() {
				return fmt.Errorf("seed-demo refuses to run in production")
			}

			ctx := cmd.Context()
			actor, err := a.god(ctx)
			if err != nil {
				return err
			}

			f := testdata.Faker(seed)
			created := 0
			for i := 0; i < vendorCount; i++ {
				v, err := a.vendors.Create(ctx, actor, testdata.VendorRequest(f))
				if err != nil {
					return fmt.Errorf("create vendor: %w", err)
				}
				for j := 0; j < campaignCount; j++ {
					if _, err := a.campaigns.Create(ctx, actor, testdata.CampaignRequest(f, v.ID)); err != nil {
						return fmt.Errorf("create campaign: %w", err)
					}
					created++
				}
			}
			fmt.Printf("✅ Seeded %d vendors and %d campaigns\n", vendorCount, created)
			return nil
		},
	}
	cmd.Flags().IntVar(&vendorCount, "vendors", 5, "number of vendors")
	cmd.Flags().IntVar(&campaignCount, "campaigns", 3, "campaigns per vendor")
	cmd.Flags().Int64Var(&seed, "seed", 0, "faker seed (0 for random)")
	return cmd
}

func exportCampaignsCommand() *cobra.Command {
	var (
		output   string
		vendorID string
		active   string
	)
	cmd := &cobra.Command{
		Use:   "export-campaigns",
		Short: "Write campaigns and their weekly schedules to an XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.db.Close()

			ctx := cmd.Context()
			actor, err := a.god(ctx)
			if err != nil {
				return err
			}

			q := models.CampaignListQuery{Vendor: vendorID}
			switch active {
			case "":
			case "true", "false":
				v := active == "true"
				q.IsActive = &v
			default:
				return fmt.Errorf("--active must be true or false")
			}

			rows, err := a.campaigns.Export(ctx, actor, q)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("campaigns-%s.xlsx", time.Now().UTC().Format("20060102"))
			}
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()

			if err := report.WriteCampaigns(file, rows); err != nil {
				return err
			}
			fmt.Printf("✅ Exported %d campaigns to %s\n", len(rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file")
	cmd.Flags().StringVar(&vendorID, "vendor", "", "only campaigns of this vendor")
	cmd.Flags().StringVar(&active, "active", "", "filter by active state (true or false)")
	return cmd
}
