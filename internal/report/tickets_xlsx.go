// Package report renders ticket listings as spreadsheet downloads.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketSheet = "Tickets"

var ticketHeader = []string{
	"ticket_code",
	"subject",
	"status",
	"priority",
	"assignee",
	"requester_name",
	"requester_email",
	"tags",
	"comments",
	"attachments",
	"created_at",
	"updated_at",
	"resolved_at",
	"closed_at",
}

// TicketsFilename names the download for an export taken at now.
func TicketsFilename(now time.Time) string {
	return fmt.Sprintf("tickets_%s.xlsx", now.UTC().Format("20060102_150405"))
}

// TicketsWorkbook writes one row per ticket under a header row and returns
// the encoded xlsx file.
func TicketsWorkbook(rows []domain.TicketSummary) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), ticketSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := xl.SetSheetRow(ticketSheet, "A1", &ticketHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := xl.SetPanes(ticketSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	for i, row := range rows {
		record := ticketRecord(row)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(ticketSheet, cell, &record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func ticketRecord(row domain.TicketSummary) []string {
	assignee := ""
	if row.Assignee != nil {
		assignee = strings.TrimSpace(row.Assignee.FirstName + " " + row.Assignee.LastName)
		if assignee == "" {
			assignee = row.Assignee.Email
		}
	}
	tags := make([]string, len(row.Tags))
	for i, tag := range row.Tags {
		tags[i] = tag.Name
	}
	return []string{
		row.TicketCode,
		row.Subject,
		string(row.Status),
		row.Priority.Name,
		assignee,
		row.RequesterName,
		row.RequesterEmail,
		strings.Join(tags, ", "),
		strconv.Itoa(row.CommentCount),
		strconv.Itoa(row.AttachmentCount),
		formatTime(&row.CreatedAt),
		formatTime(&row.UpdatedAt),
		formatTime(row.ResolvedAt),
		formatTime(row.ClosedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
