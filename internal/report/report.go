// Package report renders a finished battle as a PDF.
package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/udisondev/turnbattle/internal/model"
)

// Summary is everything the report shows.
type Summary struct {
	BattleID     string
	Preset       string
	Outcome      string
	Turns        int
	StartedAt    time.Time
	FinishedAt   time.Time
	Participants []*model.Participant
	Lines        []string // journal lines
}

const (
	margin   = 40.0
	lineH    = 12.0
	fontSize = 9.0
)

var columns = []struct {
	title string
	width float64
}{
	{"Name", 130}, {"Side", 60}, {"HP", 70}, {"MP", 60},
	{"ATK", 45}, {"DEF", 45}, {"SPD", 45}, {"Status", 60},
}

// Render returns the PDF bytes for the summary.
func Render(s Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 30, 60)
	pdf.CellFormat(0, 24, "Battle Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	meta := [][2]string{
		{"Battle", s.BattleID},
		{"Preset", s.Preset},
		{"Outcome", s.Outcome},
		{"Turns", fmt.Sprintf("%d", s.Turns)},
	}
	if !s.StartedAt.IsZero() {
		meta = append(meta, [2]string{"Duration", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String()})
	}
	for _, kv := range meta {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(70, 14, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 14, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	drawRoster(pdf, s.Participants)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 18, "Combat log", "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", fontSize)
	for _, line := range s.Lines {
		pdf.CellFormat(0, lineH, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the summary to path.
func WriteFile(path string, s Summary) error {
	data, err := Render(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

func drawRoster(pdf *gofpdf.Fpdf, participants []*model.Participant) {
	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetFillColor(220, 220, 235)
	for _, c := range columns {
		pdf.CellFormat(c.width, 16, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", fontSize)
	for _, p := range participants {
		st := p.Stats()
		status := "alive"
		if !p.IsAlive() {
			status = "down"
			pdf.SetTextColor(160, 40, 40)
		}

		cells := []string{
			p.Name(),
			p.Side().String(),
			fmt.Sprintf("%d/%d", st.CurrentHP(), st.MaxHP()),
			fmt.Sprintf("%d/%d", st.CurrentMP(), st.MaxMP()),
			fmt.Sprintf("%d", st.Attack()),
			fmt.Sprintf("%d", st.Defense()),
			fmt.Sprintf("%d", st.Speed()),
			status,
		}
		for i, c := range columns {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(c.width, 14, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
}
