package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
)

var (
	auditOwner   string
	auditAccount string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Recompute balances and report drift",
	Long: `Recompute every account balance as initial balance plus income minus
expenses and compare it with the stored balance. Nothing is written.
The command fails when any account is inconsistent.

Example:
  ledgerctl audit --owner user-123
  ledgerctl audit --owner user-123 --account 6f1c...`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditOwner, "owner", "", "owner to audit (default is DEFAULT_OWNER_ID)")
	auditCmd.Flags().StringVar(&auditAccount, "account", "", "audit a single account")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, application, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	owner := auditOwner
	if owner == "" {
		owner = cfg.DefaultOwnerID
	}
	if owner == "" {
		return fmt.Errorf("--owner is required when DEFAULT_OWNER_ID is not set")
	}

	var results []*reconciler.AuditResult
	if auditAccount != "" {
		result, err := application.Auditor.AuditAccount(cmd.Context(), owner, auditAccount)
		if err != nil {
			return err
		}
		results = append(results, result)
	} else {
		report, err := application.Auditor.AuditOwner(cmd.Context(), owner)
		if err != nil {
			return err
		}
		results = report.Results
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tNAME\tSTORED\tEXPECTED\tDIFF\tSTATUS")
	inconsistent := 0
	for _, r := range results {
		status := "ok"
		if !r.Consistent {
			status = "DRIFT"
			inconsistent++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.AccountID, r.Name,
			r.Stored.StringFixed(2), r.Expected.StringFixed(2), r.Difference.StringFixed(2), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	slog.Info("Audit finished", "owner", owner, "accounts", len(results), "inconsistent", inconsistent)
	if inconsistent > 0 {
		return fmt.Errorf("%d of %d accounts are inconsistent", inconsistent, len(results))
	}
	return nil
}
