package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/internal/models"
	"github.com/satchelhq/satchel/internal/session"
)

var takeCmd = &cobra.Command{
	Use:   "take <quiz-id>",
	Short: "Take a quiz",
	Long: `Take a quiz, answering each question in turn.

Works fully offline once the quiz has been opened online at least once:
the complete question set is cached up front, and a completed attempt is
queued durably until the server confirms it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTake,
}

func runTake(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	quizID := args[0]

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	questions, _, err := a.session.ReadAssessmentDetail(ctx, quizID)
	if err != nil {
		if errors.Is(err, session.ErrNotFoundOffline) {
			return fmt.Errorf("quiz %s is not cached; reconnect to fetch it first", quizID)
		}
		return err
	}

	fmt.Printf("%s %s — %d questions\n", headerStyle.Render("QUIZ"), quizID, len(questions))
	fmt.Println(strings.Repeat("─", 50))

	reader := bufio.NewReader(os.Stdin)
	answers := make(map[string]models.Answer, len(questions))

	for i, q := range questions {
		fmt.Printf("\nQuestion %d of %d\n%s\n\n", i+1, len(questions), q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("  %c) %s\n", 'A'+j, opt.Text)
		}

		idx := readChoice(reader, len(q.Options))
		answers[q.ID] = models.Answer{
			OptionIndex: idx,
			OptionText:  q.Options[idx].Text,
		}
		fmt.Printf("Answer recorded: %c\n", 'A'+idx)
	}

	status, err := a.session.WriteAttempt(ctx, quizID, answers)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	fmt.Println()
	switch status {
	case session.WriteConfirmed:
		fmt.Println("Attempt submitted and confirmed by the server.")
	case session.WritePending:
		fmt.Println("Attempt saved. It will be submitted when you are back online.")
	}
	return nil
}

// readChoice prompts until the user enters a valid option letter.
func readChoice(reader *bufio.Reader, optionCount int) int {
	for {
		fmt.Print("\nYour answer: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0
		}
		choice := strings.ToUpper(strings.TrimSpace(line))
		if len(choice) == 1 {
			idx := int(choice[0] - 'A')
			if idx >= 0 && idx < optionCount {
				return idx
			}
		}
		fmt.Printf("Please answer with a letter A-%c.\n", 'A'+optionCount-1)
	}
}
