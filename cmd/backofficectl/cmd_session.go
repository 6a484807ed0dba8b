package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	sessionUser string
	sessionTTL  time.Duration
)

// sessionCmd groups session commands
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage API sessions",
}

// sessionCreateCmd issues a bearer token
var sessionCreateCmd = &cobra.Command{
	Use:   "create --user <id>",
	Short: "Issue a session token for a user",
	Long: `Issue a session token for a user. The token is printed once; only
its hash is stored. Use it as the "session" cookie or as
"Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: runSessionCreate,
}

// sessionPurgeCmd removes expired sessions
var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired sessions",
	Long: `Delete expired sessions. The server does this on every sweep; the
command is for deployments that run with the sweeper disabled or want to
clean up before a backup.`,
	Args: cobra.NoArgs,
	RunE: runSessionPurge,
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionUser, "user", "", "User ID the session belongs to")
	sessionCreateCmd.Flags().DurationVar(&sessionTTL, "ttl", 0, "Session lifetime (default AUTH_SESSION_TTL)")
	_ = sessionCreateCmd.MarkFlagRequired("user")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionPurgeCmd)
}

func runSessionCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := newService(st, cfg).CreateSession(ctx, sessionUser, sessionTTL)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"token":     sess.Token,
			"userId":    sess.UserID,
			"expiresAt": sess.ExpiresAt,
		})
	}
	fmt.Fprintf(out, "Token:   %s\n", sess.Token)
	fmt.Fprintf(out, "User:    %s\n", sess.UserID)
	fmt.Fprintf(out, "Expires: %s\n", sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runSessionPurge(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	purged, err := newService(st, cfg).PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int64{"purged": purged})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired sessions\n", purged)
	return nil
}
