package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hopebridge/shiftcover/internal/config"
	"github.com/hopebridge/shiftcover/pkg/clients/gmailclient"
	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/services"
	"github.com/hopebridge/shiftcover/pkg/notify"
	"github.com/hopebridge/shiftcover/pkg/postgres"
	"github.com/hopebridge/shiftcover/pkg/server"
	"github.com/hopebridge/shiftcover/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	runtime  *config.RuntimeConfig
	database *postgres.DB
	logger   *zap.Logger
	ctx      context.Context
}

var app *App

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftcover",
		Short: "Shiftcover CLI - Manage volunteer shift cover",
		Long:  `A tool for managing volunteer shift rosters, substitute requests, and shift trades.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateShiftsCmd())
	rootCmd.AddCommand(addUserCmd())
	rootCmd.AddCommand(sendDigestsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and the database pool
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.runtime, err = config.LoadRuntime()
	if err != nil {
		return fmt.Errorf("failed to load runtime config: %w", err)
	}

	app.logger, err = logging.InitLogger(app.runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", app.runtime.Env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.runtime.DatabaseURL, app.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.logger.Info("Database connected successfully")

	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.runtime.SessionKey == "" {
				return fmt.Errorf("SESSION_KEY must be set to run the server")
			}

			hub := notify.NewHub(app.logger)
			srv, err := server.New(app.cfg, app.database, hub, app.logger, app.runtime.SessionKey)
			if err != nil {
				return fmt.Errorf("failed to build server: %w", err)
			}

			ctx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx, app.runtime.HTTPAddr)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.database.RunMigrations(app.ctx); err != nil {
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}

func generateShiftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generateShifts <start> <end>",
		Short: "Print the shift occurrences for an inclusive date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse("2006-01-02", args[0])
			if err != nil {
				return fmt.Errorf("start must be YYYY-MM-DD: %w", err)
			}
			end, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				return fmt.Errorf("end must be YYYY-MM-DD: %w", err)
			}

			closures, err := app.cfg.ClosureRRules()
			if err != nil {
				return err
			}

			instances, err := services.GenerateShiftInstances(app.ctx, app.database, app.logger, closures, app.cfg.DefaultShiftSize, start, end)
			if err != nil {
				return err
			}

			fmt.Printf("\n%d shift occurrences between %s and %s:\n\n", len(instances), args[0], args[1])
			for _, instance := range instances {
				marker := " "
				if instance.IsException {
					marker = "*"
				}
				staffing := ""
				if instance.Understaffed {
					staffing = "  UNDERSTAFFED"
				}
				fmt.Printf("%s %s  %s-%s  %s  %v%s\n",
					marker, instance.Date, instance.StartTime, instance.EndTime,
					instance.ShiftID, instance.AssignedUserIDs, staffing)
			}
			fmt.Println()

			return nil
		},
	}
}

func addUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addUser <first_name> <last_name> <email>",
		Short: "Add a user and print their generated id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			password, _ := cmd.Flags().GetString("password")

			if !model.Role(role).IsValid() {
				return fmt.Errorf("invalid role %q", role)
			}
			if password == "" {
				return fmt.Errorf("--password is required")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			user := model.User{
				ID:           uuid.New().String(),
				FirstName:    args[0],
				LastName:     args[1],
				Email:        args[2],
				Role:         model.Role(role),
				Status:       "active",
				PasswordHash: string(hash),
			}

			if err := app.database.InsertUser(app.ctx, user); err != nil {
				return err
			}

			fmt.Printf("\nUser created: %s (%s)\n", user.FullName(), user.ID)
			return nil
		},
	}

	cmd.Flags().String("role", "worker", "Role: admin, scheduler or worker")
	cmd.Flags().String("password", "", "Initial password")

	return cmd
}

func sendDigestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sendDigests",
		Short: "Email each user a digest of their unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.OAuthClient == nil || app.cfg.GmailSender == "" {
				return fmt.Errorf("gmailSender and oauthClient must be configured to send digests")
			}

			mailer, err := gmailclient.NewClient(app.ctx, app.cfg.OAuthClient, app.cfg.GmailSender)
			if err != nil {
				return fmt.Errorf("failed to create gmail client: %w", err)
			}

			result, err := notify.SendDigests(app.ctx, app.database, app.database, mailer, app.logger, app.cfg.CentreName)
			if err != nil {
				return err
			}

			fmt.Printf("\nDigests sent to %d users (%d skipped).\n", result.UsersEmailed, result.Skipped)
			return nil
		},
	}
}
