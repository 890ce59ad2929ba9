package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/config"
	"github.com/mind-engage/ipa-grading/internal/db"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/rbac"
)

func createUserCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "create-user [username] [password]",
		Short: "Create an account in the configured database (DB_DRIVER, DB_DSN)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rbac.ValidRole(role) {
				return fmt.Errorf("unknown role %q", role)
			}
			hash, err := auth.HashPassword(args[1])
			if err != nil {
				return err
			}

			cfg := config.FromEnv()
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			driver := db.Driver(cfg.DBDriver)
			dbh, err := db.Open(ctx, driver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer dbh.Close()

			store := evaluation.NewSQLStore(dbh, driver.DriverName(), nil)
			u, err := store.CreateUser(ctx, args[0], hash, role)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(u)
		},
	}
	cmd.Flags().StringVar(&role, "role", rbac.RoleCandidate, "candidate, expert or admin")
	return cmd
}
