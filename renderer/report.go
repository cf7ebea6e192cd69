package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/kourasync"
	md "github.com/nao1215/markdown"
)

// status summarizes the outcome of a result.
func status(r kourasync.Result) string {
	if r.Err == nil {
		return "ok"
	}
	return cell(fmt.Sprintf("%s: %v", kourasync.ErrorKind(r.Err), r.Err))
}

// ReportMarkdown renders the results of a run, and the activities listed by it.
func ReportMarkdown(r kourasync.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Sync Report")

	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		balance := ""
		if res.Balance != nil {
			balance = res.Balance.StringFixed(2)
		}
		rows = append(rows, []string{
			res.Account,
			string(res.Operation),
			strconv.Itoa(res.Created),
			strconv.Itoa(res.Skipped),
			strconv.Itoa(res.Deleted),
			balance,
			status(res),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Account", "Operation", "Created", "Skipped", "Deleted", "Balance", "Status"},
		Rows:   rows,
	})

	for _, res := range r.Results {
		if res.Operation != kourasync.GetAllActs || res.Err != nil {
			continue
		}
		doc.H2(fmt.Sprintf("Activities of %s", res.Account))
		activitiesTable(doc, res.Activities)
	}

	if failed := len(r.Failed()); failed > 0 {
		doc.PlainText(md.Bold(fmt.Sprintf("%d of %d operations failed.", failed, len(r.Results))))
	}
	return doc.String()
}
