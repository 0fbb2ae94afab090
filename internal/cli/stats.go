package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := a.session.StorageStats()
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("LOCAL STORE"))
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("Courses:            %d\n", stats.Courses)
	fmt.Printf("Quizzes:            %d\n", stats.Assessments)
	fmt.Printf("Cached quiz bodies: %d\n", stats.AssessmentDetails)
	fmt.Printf("Messages:           %d\n", stats.Messages)
	fmt.Printf("Ledger entries:     %d (%d pending)\n", stats.PendingOperations, stats.UnsyncedOps)
	fmt.Printf("Contacts:           %d\n", stats.Contacts)
	fmt.Printf("Store size:         %d bytes\n", stats.StoreSizeBytes)
	return nil
}
