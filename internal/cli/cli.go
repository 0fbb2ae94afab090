// Package cli provides the command-line interface for Satchel.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/internal/config"
	"github.com/satchelhq/satchel/internal/connectivity"
	"github.com/satchelhq/satchel/internal/models"
	"github.com/satchelhq/satchel/internal/remote"
	"github.com/satchelhq/satchel/internal/session"
	"github.com/satchelhq/satchel/internal/store"
	"github.com/satchelhq/satchel/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "Offline-first course companion",
	Long: `Offline-first course companion.

Satchel keeps your courses, quizzes and conversations in a local store so
everything keeps working without a network connection. Actions taken
offline are queued durably and replayed against the server when
connectivity returns.`,
	SilenceUsage: true,
	Version:      version.Short(),
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(quizzesCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(logoutCmd)
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// app is the explicitly constructed aggregate every command works
// through: one store, one gateway, one monitor, one session.
type app struct {
	cfg     *config.Config
	store   *store.Store
	gateway *remote.Client
	monitor *connectivity.Monitor
	session *session.Session
}

// openApp builds the aggregate from config and the persisted identity.
func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	paths := config.GetPaths(cfg)
	st, err := store.Open(store.DefaultConfig(paths.Database))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	cleanup := func() { _ = st.Close() }

	token := cfg.Server.Token
	if token == "" {
		token, _ = st.GetSyncMeta(models.SyncMetaToken)
	}
	userID, _ := st.GetSyncMeta(models.SyncMetaUserID)

	gateway := remote.NewClient(cfg.Server.URL, cfg.Server.RateLimit,
		remote.WithIdentity(token, userID),
		remote.WithMessaging(cfg.Server.Messaging),
	)

	online := false
	if !cfg.ForceOffline && cfg.Server.URL != "" {
		online = probe(ctx, cfg.Server.URL)
	}
	monitor := connectivity.NewMonitor(online)

	return &app{
		cfg:     cfg,
		store:   st,
		gateway: gateway,
		monitor: monitor,
		session: session.New(st, gateway, monitor),
	}, cleanup, nil
}

// probe asks whether the server looks reachable right now. It only feeds
// the connectivity signal; actual call failures are handled on their own.
func probe(ctx context.Context, serverURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, serverURL, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
