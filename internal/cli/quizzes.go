package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var quizzesCmd = &cobra.Command{
	Use:   "quizzes <course-id>",
	Short: "List the quizzes of a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizzes,
}

func runQuizzes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	courseID := args[0]

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	assessments, stale, err := a.session.ReadAssessments(ctx, courseID)
	if err != nil {
		return err
	}

	now := time.Now()
	fmt.Printf("%s (%d)\n", headerStyle.Render("QUIZZES"), len(assessments))
	fmt.Println(strings.Repeat("─", 50))
	for _, q := range assessments {
		status := "open"
		switch {
		case q.Completed:
			status = "completed"
		case !q.Available(now):
			status = "unavailable"
		}
		limit := "no limit"
		if q.TimeLimitMinutes != nil {
			limit = fmt.Sprintf("%d min", *q.TimeLimitMinutes)
		}
		fmt.Printf("%-10s %-30s %-12s %s\n", q.ID, q.Name, status, limit)
	}
	if stale {
		fmt.Println(staleStyle.Render("(cached copy; reconnect to refresh)"))
	}
	return nil
}
