package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	auditLimit int
	auditUser  string
)

// auditCmd groups audit log commands
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

// auditListCmd prints recent entries
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent audit entries",
	Args:  cobra.NoArgs,
	RunE:  runAuditList,
}

func init() {
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum entries to show (1-1000)")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Only show entries recorded for this user ID")
	auditCmd.AddCommand(auditListCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newService(st, cfg)
	var entries []core.AuditEntry
	if auditUser != "" {
		entries, err = svc.GetUserAuditLog(ctx, auditUser, auditLimit)
	} else {
		entries, err = svc.GetAuditLog(ctx, auditLimit)
	}
	if err != nil {
		return fmt.Errorf("audit list: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No audit entries.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tSEVERITY\tUSER\tENTITY\tREASON")
	for _, e := range entries {
		entity := e.EntityType
		if e.EntityID != "" {
			entity += "/" + e.EntityID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(e.CreatedAt), e.Action, e.Severity, e.UserID, entity, e.Reason)
	}
	return tw.Flush()
}
