package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/internal/models"
	"github.com/satchelhq/satchel/internal/session"
)

var messagesCmd = &cobra.Command{
	Use:   "messages <quiz-id>",
	Short: "Show the conversation for a quiz",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessages,
}

var sendCmd = &cobra.Command{
	Use:   "send <quiz-id> <message...>",
	Short: "Send a message in a quiz conversation",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSend,
}

// conversationKey derives the conversation identifier for a quiz.
func conversationKey(quizID string) string {
	return "quiz:" + quizID
}

func runMessages(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	msgs, stale, err := a.session.ReadMessages(ctx, conversationKey(args[0]))
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d)\n", headerStyle.Render("MESSAGES"), len(msgs))
	fmt.Println(strings.Repeat("─", 50))
	for _, m := range msgs {
		who := "them"
		if m.Role == models.RoleSelf {
			who = "you"
		} else if m.Role == models.RoleSystem {
			who = "system"
		}
		marker := ""
		if m.Role == models.RoleSelf && !m.Synced {
			marker = " (sending…)"
		}
		fmt.Printf("[%s] %s: %s%s\n", m.SentAt.Format("Jan 2 15:04"), who, m.Body, marker)
	}
	if stale {
		fmt.Println(staleStyle.Render("(cached copy; reconnect to refresh)"))
	}
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	body := strings.Join(args[1:], " ")

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := a.session.SendMessage(ctx, conversationKey(args[0]), body)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	switch status {
	case session.WriteConfirmed:
		fmt.Println("Sent.")
	case session.WritePending:
		fmt.Println("Saved. It will be sent when you are back online.")
	}
	return nil
}
