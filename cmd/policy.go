package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-reimbursement/internal/policy"
	policyPostgres "github.com/frahmantamala/expense-reimbursement/internal/policy/postgres"
)

var (
	debugOrgID      int64
	debugUserID     int64
	debugCategoryID int64
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect spending policies",
}

var policyDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Explain which policy applies to a user and category",
	Long:  `Runs policy resolution against the configured database and prints both candidates with the reason the winner was chosen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		setupLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gormDB, err := openGorm(db)
		if err != nil {
			return err
		}

		resolver := policy.NewResolver(policyPostgres.NewPolicyRepository(gormDB))
		return printPolicyDebug(cmd, resolver)
	},
}

func printPolicyDebug(cmd *cobra.Command, resolver *policy.Resolver) error {
	for name, id := range map[string]int64{"org": debugOrgID, "user": debugUserID, "category": debugCategoryID} {
		if id <= 0 {
			return fmt.Errorf("--%s must be a positive id, got %d", name, id)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	debug, err := resolver.Debug(ctx, debugOrgID, debugUserID, debugCategoryID)
	if err != nil {
		return fmt.Errorf("resolve policy: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(debug)
}

func init() {
	policyDebugCmd.Flags().Int64Var(&debugOrgID, "org", 0, "organization id")
	policyDebugCmd.Flags().Int64Var(&debugUserID, "user", 0, "user id")
	policyDebugCmd.Flags().Int64Var(&debugCategoryID, "category", 0, "category id")
	for _, name := range []string{"org", "user", "category"} {
		if err := policyDebugCmd.MarkFlagRequired(name); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	policyCmd.AddCommand(policyDebugCmd)
}
