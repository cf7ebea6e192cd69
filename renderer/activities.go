// Package renderer renders activities and run reports as markdown.
package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/kourasync"
	md "github.com/nao1215/markdown"
)

// cell escapes the characters that would break a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// activityRows returns the table rows of activities.
func activityRows(acts []kourasync.Activity) [][]string {
	rows := make([][]string, 0, len(acts))
	for _, a := range acts {
		name := a.Name
		if name == "" {
			name = a.Symbol
		}
		rows = append(rows, []string{
			a.ID,
			cell(name),
			string(a.Type),
			a.Date.String(),
			a.Quantity.String(),
			a.Fee.String(),
			a.Value().StringFixed(2),
			a.Currency,
			cell(a.Comment),
		})
	}
	return rows
}

func activitiesTable(doc *md.Markdown, acts []kourasync.Activity) {
	if len(acts) == 0 {
		doc.PlainText("No activities.")
		return
	}
	doc.Table(md.TableSet{
		Header: []string{"ID", "NAME", "TYPE", "DATE", "QUANTITY", "FEE", "VALUE", "CURRENCY", "COMMENT"},
		Rows:   activityRows(acts),
	})
}

// ActivitiesMarkdown renders the activities of an account as a table.
func ActivitiesMarkdown(account string, acts []kourasync.Activity) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Activities of %s", account))
	activitiesTable(doc, acts)
	return doc.String()
}
