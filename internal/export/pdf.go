package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfTitle  = "GameSense AI - Session Feedback"
	pdfFooter = "Generated by GameSense AI (MVP). For training guidance only."
	margin    = 15.0
)

// SessionPDF lays out one session on A4 pages: title, video name, prompt and
// feedback, then a footer note. Long text flows onto further pages.
func SessionPDF(videoName, prompt, feedback string) ([]byte, error) {
	videoName = SafeBlock(videoName)
	prompt = SafeBlock(prompt)
	feedback = SafeBlock(feedback)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, pdfTitle, "", 1, "", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("Video: "+videoName), "", "", false)
	pdf.Ln(1)

	section := func(heading, body string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 6, heading, "", 1, "", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(body), "", "", false)
	}
	section("Prompt:", prompt)
	pdf.Ln(2)
	section("Feedback:", feedback)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, pdfFooter, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
