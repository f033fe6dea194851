package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aviatorhq/aviator-chat/internal/api"
	"github.com/aviatorhq/aviator-chat/internal/cli"
	"github.com/aviatorhq/aviator-chat/internal/config"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage backend documents",
	}
	cmd.AddCommand(newDocsListCmd())
	cmd.AddCommand(newDocsUploadCmd())
	cmd.AddCommand(newDocsSetCmd())
	cmd.AddCommand(newDocsRemoveCmd())
	return cmd
}

func newDocsListCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = config.AppConfig.PageLimit
			}
			resp, err := newBackendClient().ListDocuments(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			cli.RenderDocuments(os.Stdout, resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Items per page (default from config)")
	return cmd
}

func newDocsUploadCmd() *cobra.Command {
	var description, category, status, access string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			resp, err := newBackendClient().UploadDocument(cmd.Context(),
				filepath.Base(args[0]), file, description, category, status, access)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", resp.Message, resp.Filename)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&description, "description", "", "Document description")
	flags.StringVar(&category, "category", "general", "Document category")
	flags.StringVar(&status, "status", "active", "Document status")
	flags.StringVar(&access, "access", "private", "Access level")
	return cmd
}

func newDocsSetCmd() *cobra.Command {
	var description, category, status, access string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update document fields (only flags you pass are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update api.DocumentUpdate
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if cmd.Flags().Changed("category") {
				update.Category = &category
			}
			if cmd.Flags().Changed("status") {
				update.Status = &status
			}
			if cmd.Flags().Changed("access") {
				update.Access = &access
			}

			resp, err := newBackendClient().UpdateDocument(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&description, "description", "", "New description")
	flags.StringVar(&category, "category", "", "New category")
	flags.StringVar(&status, "status", "", "New status")
	flags.StringVar(&access, "access", "", "New access level")
	return cmd
}

func newDocsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newBackendClient().DeleteDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}
