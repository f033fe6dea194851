package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aviatorhq/aviator-chat/internal/api"
	"github.com/aviatorhq/aviator-chat/internal/cli"
	"github.com/aviatorhq/aviator-chat/internal/config"
	"github.com/aviatorhq/aviator-chat/internal/session"
)

func main() {
	root := &cobra.Command{
		Use:   "aviator",
		Short: "Terminal client for the Aviator chat backend",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			config.SetupLogging()
		},
	}

	root.AddCommand(newChatCmd())
	root.AddCommand(newFeedbackCmd())
	root.AddCommand(newDocsCmd())
	root.AddCommand(newStubCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func newBackendClient() *api.Client {
	return api.NewClient(config.AppConfig.APIBaseURL, config.AppConfig.HTTPTimeout)
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := session.NewCoordinator(newBackendClient(), session.TypingConfig{
				Interval: config.AppConfig.TypingInterval,
				Chunk:    config.AppConfig.TypingChunk,
			})
			app := cli.NewChatApp(coord, os.Stdin, os.Stdout)
			return app.Run(context.Background())
		},
	}
}

func newFeedbackCmd() *cobra.Command {
	var username string
	var page, limit int

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Show a user's feedback history",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newBackendClient().FeedbackHistory(cmd.Context(), username, page, limit)
			if err != nil {
				return err
			}
			cli.RenderFeedbackHistory(os.Stdout, resp)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&username, "username", "", "Username to show feedback for")
	flags.IntVar(&page, "page", 1, "Page number")
	flags.IntVar(&limit, "limit", 0, "Items per page (default from config)")
	cmd.MarkFlagRequired("username")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if limit <= 0 {
			limit = config.AppConfig.PageLimit
		}
	}
	return cmd
}
