package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Authenticate against the course server",
	Long: `Authenticate against the course server and store the resulting
token locally. The password is read from stdin.

Authentication fails closed: if the server rejects the credentials no
local session is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	username := args[0]

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if !a.monitor.Online() {
		return fmt.Errorf("cannot log in while offline")
	}

	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	result, err := a.gateway.Authenticate(ctx, username, password)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	if err := a.store.SetSyncMeta(models.SyncMetaToken, result.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := a.store.SetSyncMeta(models.SyncMetaUserID, result.Identity.UserID); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	if err := a.store.SetSyncMeta(models.SyncMetaUserName, result.Identity.FullName); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}

	fmt.Printf("Logged in as %s.\n", result.Identity.FullName)
	return nil
}
