package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().Bold(true)
var staleStyle = lipgloss.NewStyle().Faint(true)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List your courses",
	Long: `List your courses.

Online, the list is refreshed from the server; offline, the cached copy
is shown and marked as such.`,
	Args: cobra.NoArgs,
	RunE: runCourses,
}

func runCourses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	courses, stale, err := a.session.ReadCourses(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d)\n", headerStyle.Render("COURSES"), len(courses))
	fmt.Println(strings.Repeat("─", 50))
	for _, c := range courses {
		fmt.Printf("%-10s %s\n", c.ID, c.Name)
	}
	if stale {
		fmt.Println(staleStyle.Render("(cached copy; reconnect to refresh)"))
	}
	return nil
}
