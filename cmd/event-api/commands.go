package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"event-rest-api/cmd/event-api/account"
	"event-rest-api/cmd/event-api/importer"
	"event-rest-api/cmd/event-api/model"
	"event-rest-api/cmd/event-api/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the events and accounts tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}

		if err := repository.Migrate(logger.WithContext(cmd.Context()), db); err != nil {
			return err
		}

		logger.Info().Msg("migration complete")
		return nil
	},
}

var (
	accountEmail    string
	accountPassword string
	accountRoles    []string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account that can request tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		roles, err := parseRoles(accountRoles)
		if err != nil {
			return err
		}

		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}

		ctx := logger.WithContext(cmd.Context())
		svc := account.NewService(repository.NewAccountRepo(db), logger)

		created, err := svc.SaveAccount(ctx, model.Account{
			Email:    accountEmail,
			Password: accountPassword,
			Roles:    roles,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created account %d (%s) with roles %s\n",
			created.ID, created.Email, strings.Join(created.Roles, ","))
		return nil
	},
}

// parseRoles upper-cases and checks role names.
func parseRoles(raw []string) ([]string, error) {
	known := []string{string(model.RoleAdmin), string(model.RoleUser)}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		role := strings.ToUpper(strings.TrimSpace(r))
		if !slices.Contains(known, role) {
			return nil, fmt.Errorf("unknown role %q (want one of %s)", r, strings.Join(known, ", "))
		}
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return nil, errors.New("at least one role is required")
	}
	return roles, nil
}

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load events from a CSV file",
	Long: `Load events from a CSV file. Each row goes through the same validation as
POST /api/events; rejected rows are reported and skipped.

Expected header:
  name,description,begin_enrollment_date_time,close_enrollment_date_time,
  begin_event_date_time,end_event_date_time,location,base_price,max_price,limit_of_enrollment`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", importFile, err)
		}
		defer f.Close()

		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}

		ctx := logger.WithContext(cmd.Context())
		report, err := importer.New(repository.NewEventRepo(db), "import").Import(ctx, f, nil)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&accountEmail, "email", "", "account email, used as the token username")
	accountCreateCmd.Flags().StringVar(&accountPassword, "password", "", "plaintext password, stored as a bcrypt hash")
	accountCreateCmd.Flags().StringSliceVar(&accountRoles, "role", []string{string(model.RoleUser)}, "roles to grant (ADMIN, USER)")
	_ = accountCreateCmd.MarkFlagRequired("email")
	_ = accountCreateCmd.MarkFlagRequired("password")
	accountCmd.AddCommand(accountCreateCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	_ = importCmd.MarkFlagRequired("file")
}
