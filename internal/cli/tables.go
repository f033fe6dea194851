package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/aviatorhq/aviator-chat/internal/api"
)

// RenderDocuments prints the document list as a table followed by the page
// indicator, mirroring the document-management view.
func RenderDocuments(w io.Writer, resp *api.DocumentListResponse) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Filename", "Description", "Category", "Status", "Access", "Uploaded"})
	for _, doc := range resp.Documents {
		table.Append([]string{
			doc.ID, doc.Filename, doc.Description, doc.Category, doc.Status, doc.Access, doc.UploadedAt,
		})
	}
	table.Render()
	renderPagination(w, resp.Pagination)
}

// RenderFeedbackHistory prints the paginated feedback history.
func RenderFeedbackHistory(w io.Writer, resp *api.FeedbackHistoryResponse) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"When", "Type", "You said", "Assistant said"})
	for _, entry := range resp.FeedbackHistory {
		table.Append([]string{
			entry.Timestamp, entry.FeedbackType,
			truncate(entry.UserMessage, 40), truncate(entry.AssistantMessage, 40),
		})
	}
	table.Render()
	renderPagination(w, resp.Pagination)
}

func renderPagination(w io.Writer, p api.Pagination) {
	fmt.Fprintf(w, "Page %d of %d (%d items)", p.CurrentPage, p.TotalPages, p.TotalItems)
	if p.HasPrevious {
		fmt.Fprint(w, "  [prev available]")
	}
	if p.HasNext {
		fmt.Fprint(w, "  [next available]")
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
