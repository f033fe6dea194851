// Package cli is the terminal front end: the interactive chat loop and the
// table renderers for documents and feedback history.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aviatorhq/aviator-chat/internal/api"
	"github.com/aviatorhq/aviator-chat/internal/session"
)

// ChatApp drives the interactive chat session over a line-based terminal.
type ChatApp struct {
	coord *session.Coordinator
	in    *bufio.Scanner
	out   io.Writer
}

func NewChatApp(coord *session.Coordinator, in io.Reader, out io.Writer) *ChatApp {
	app := &ChatApp{
		coord: coord,
		in:    bufio.NewScanner(in),
		out:   out,
	}
	coord.OnAssistantChunk(func(index int, chunk string) {
		fmt.Fprint(out, chunk)
	})
	return app
}

// Run logs the user in, bootstraps the session, and enters the REPL. It
// returns when the user quits or input is exhausted.
func (a *ChatApp) Run(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	if err := a.coord.Bootstrap(ctx); err != nil {
		a.printError()
		return err
	}

	snap := a.coord.Snapshot()
	fmt.Fprintf(a.out, "Welcome %s (%s). %d previous chats. Type /help for commands.\n",
		snap.User.Username, snap.User.UserType, len(snap.History))

	for {
		fmt.Fprint(a.out, "\nyou> ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := a.command(ctx, line)
			if err != nil {
				a.printError()
			}
			if quit {
				return nil
			}
			continue
		}

		fmt.Fprint(a.out, "aviator> ")
		if err := a.coord.SendMessage(ctx, line); err != nil {
			// The coordinator already filled the placeholder with the
			// apology; show it along with the banner.
			snap := a.coord.Snapshot()
			if len(snap.Messages) > 0 {
				fmt.Fprint(a.out, snap.Messages[len(snap.Messages)-1].Content)
			}
			a.printError()
		}
		fmt.Fprintln(a.out)

		if a.coord.Snapshot().HistoryStale {
			if err := a.coord.RefreshHistory(ctx); err != nil {
				a.printError()
			}
		}
	}
}

func (a *ChatApp) login(ctx context.Context) error {
	for {
		fmt.Fprint(a.out, "username: ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		username := strings.TrimSpace(a.in.Text())

		fmt.Fprint(a.out, "password: ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		password := a.in.Text()

		if err := a.coord.Authenticate(ctx, username, password); err != nil {
			a.printError()
			continue
		}
		return nil
	}
}

func (a *ChatApp) command(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/help":
		fmt.Fprintln(a.out, `Commands:
  /history        list previous chats
  /open N         open chat N from the history list
  /new            start a new chat
  /like N         like assistant message N
  /dislike N      dislike assistant message N
  /logout         log out and exit
  /quit           exit`)
	case "/history":
		a.printHistory()
	case "/open":
		n, convErr := strconv.Atoi(arg)
		snap := a.coord.Snapshot()
		if convErr != nil || n < 1 || n > len(snap.History) {
			fmt.Fprintln(a.out, "Usage: /open N (see /history)")
			return false, nil
		}
		if err := a.coord.SelectHistoryEntry(ctx, snap.History[n-1].ID); err != nil {
			return false, err
		}
		a.printMessages()
	case "/new":
		a.coord.NewChat()
		fmt.Fprintln(a.out, "Started a new chat.")
	case "/like", "/dislike":
		n, convErr := strconv.Atoi(arg)
		if convErr != nil {
			fmt.Fprintf(a.out, "Usage: %s N\n", cmd)
			return false, nil
		}
		tag := api.FeedbackLiked
		if cmd == "/dislike" {
			tag = api.FeedbackDisliked
		}
		if err := a.coord.SubmitFeedback(ctx, n, tag); err != nil {
			return false, err
		}
		fmt.Fprintln(a.out, "Feedback recorded.")
	case "/logout":
		a.coord.Logout()
		fmt.Fprintln(a.out, "Logged out.")
		return true, nil
	case "/quit", "/exit":
		return true, nil
	default:
		fmt.Fprintf(a.out, "Unknown command %s (try /help)\n", cmd)
	}
	return false, nil
}

func (a *ChatApp) printHistory() {
	snap := a.coord.Snapshot()
	if len(snap.History) == 0 {
		fmt.Fprintln(a.out, "No previous chats.")
		return
	}
	for i, entry := range snap.History {
		fmt.Fprintf(a.out, "%3d  %s  %s\n", i+1, entry.Timestamp, entry.Title)
	}
}

func (a *ChatApp) printMessages() {
	snap := a.coord.Snapshot()
	for i, msg := range snap.Messages {
		speaker := "you"
		if msg.Role == api.RoleAssistant {
			speaker = "aviator"
		}
		tag := ""
		if msg.Feedback != api.FeedbackNone {
			tag = " [" + msg.Feedback + "]"
		}
		fmt.Fprintf(a.out, "%3d %s> %s%s\n", i, speaker, msg.Content, tag)
	}
}

func (a *ChatApp) printError() {
	snap := a.coord.Snapshot()
	if snap.LastError != "" {
		fmt.Fprintf(a.out, "\n! %s\n", snap.LastError)
		a.coord.ClearError()
	}
}
