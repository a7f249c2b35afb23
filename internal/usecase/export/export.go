// Package export renders one-way snapshots of the worklog: delimited
// text, a workbook, or a printable HTML report. Nothing here writes back
// to the store.
package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	domain "worklog-backend/internal/domain/worklog"
)

var columns = []string{"Seq", "Subject", "Checked In", "Checked Out", "Note", "Status", "Approver"}

func recordCells(rec *domain.Record) []string {
	closed := ""
	if !rec.ClosedAt.IsZero() {
		closed = rec.ClosedAt.Format(domain.TimeLayout)
	}
	opened := ""
	if !rec.OpenedAt.IsZero() {
		opened = rec.OpenedAt.Format(domain.TimeLayout)
	}
	return []string{
		strconv.Itoa(rec.Sequence),
		rec.SubjectKey,
		opened,
		closed,
		rec.Note,
		string(rec.EffectiveStatus()),
		rec.Approver,
	}
}

// CSV writes a UTF-8 delimited snapshot with the header row first.
func CSV(w io.Writer, recs []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range recs {
		if err := cw.Write(recordCells(&recs[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Workbook builds an .xlsx snapshot in memory.
func Workbook(sheetName string, recs []domain.Record) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	def := f.GetSheetName(0)
	if def != sheetName {
		if err := f.SetSheetName(def, sheetName); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
	}
	if err := f.SetSheetRow(sheetName, "A1", &columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		cells := recordCells(&recs[i])
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.WriteToBuffer()
}

// ReportImage is an attachment embedded into the HTML report as a
// base64 data URI, with its caption underneath.
type ReportImage struct {
	Data    []byte
	MIME    string // e.g. "image/png"; defaults to image/jpeg
	Caption string
}

type ReportInput struct {
	Title       string
	GeneratedAt time.Time
	Records     []domain.Record
	Images      []ReportImage
}

type reportImageView struct {
	DataURI template.URL
	Caption string
}

type reportView struct {
	Title       string
	GeneratedAt string
	Columns     []string
	Rows        [][]string
	Images      []reportImageView
}

// HTMLReport renders a self-contained document meant for browser
// print-to-PDF: inline styles, no external assets, images inlined.
func HTMLReport(in ReportInput) ([]byte, error) {
	view := reportView{
		Title:       in.Title,
		GeneratedAt: in.GeneratedAt.Format(domain.TimeLayout),
		Columns:     columns,
	}
	if view.Title == "" {
		view.Title = "Worklog report"
	}
	for i := range in.Records {
		view.Rows = append(view.Rows, recordCells(&in.Records[i]))
	}
	for _, img := range in.Images {
		mime := img.MIME
		if mime == "" {
			mime = "image/jpeg"
		}
		uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
		view.Images = append(view.Images, reportImageView{
			DataURI: template.URL(uri),
			Caption: img.Caption,
		})
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: sans-serif; margin: 24px; }
  h1 { font-size: 20px; }
  .meta { color: #555; font-size: 12px; margin-bottom: 16px; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #999; padding: 4px 8px; font-size: 12px; text-align: left; }
  th { background: #eee; }
  .images { display: flex; flex-wrap: wrap; gap: 12px; margin-top: 24px; }
  figure { margin: 0; width: 220px; }
  figure img { width: 100%; }
  figcaption { font-size: 11px; text-align: center; }
  @media print { .images { page-break-inside: avoid; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Generated {{.GeneratedAt}}</div>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{if .Images}}<div class="images">
{{range .Images}}<figure><img src="{{.DataURI}}" alt="{{.Caption}}"><figcaption>{{.Caption}}</figcaption></figure>
{{end}}</div>{{end}}
</body>
</html>
`))
