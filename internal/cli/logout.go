package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and wipe all local data",
	Long: `Sign out and wipe all local data.

This clears every cached record, the stored token, and any pending
actions that have not yet reached the server.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := a.session.StorageStats()
	if err == nil && stats.UnsyncedOps > 0 {
		fmt.Printf("Warning: %d pending action(s) will be discarded.\n", stats.UnsyncedOps)
	}

	if err := a.session.ClearAllData(); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}

	fmt.Println("Signed out. Local data cleared.")
	return nil
}
