package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/internal/reconcile"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued actions and refresh the local cache",
	Long: `Replay queued actions and refresh the local cache.

Drains the pending-operation ledger against the server in the order the
actions were taken, then re-fetches courses and quizzes. Old synced
ledger entries and old messages are evicted afterwards.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if !a.monitor.Online() {
		return fmt.Errorf("cannot sync while offline")
	}

	err = a.session.ForceSync(ctx)

	var partial *reconcile.PartialSyncError
	switch {
	case err == nil:
		fmt.Println("Sync complete.")
	case errors.As(err, &partial):
		fmt.Printf("Sync partial: %d action(s) confirmed, %d still pending.\n",
			partial.Synced, partial.Failed)
	default:
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -a.cfg.RetentionDays)
	evicted, everr := a.store.EvictOlderThan(cutoff)
	if everr != nil {
		return fmt.Errorf("evict old records: %w", everr)
	}
	if evicted.Operations > 0 || evicted.Messages > 0 {
		fmt.Printf("Evicted %d old ledger entr(ies) and %d old message(s).\n",
			evicted.Operations, evicted.Messages)
	}
	return nil
}
