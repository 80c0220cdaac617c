// Package export renders the dense week grid as CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/weekplan/internal/planner"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Plan is the exported view of a week.
type Plan struct {
	Title string
	// Owner is the account email printed under the title.
	Owner       string
	Days        []planner.DaySlot // dense, seven slots
	GeneratedAt time.Time
	// ShareURL is encoded as a QR code in the PDF when set.
	ShareURL string
}

// Document is a rendered export.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Render produces the document for format ("pdf" or "csv").
func Render(format string, plan Plan) (*Document, error) {
	if plan.GeneratedAt.IsZero() {
		plan.GeneratedAt = time.Now().UTC()
	}
	stamp := plan.GeneratedAt.Format("2006-01-02")

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		data, err := CSV(plan.Days)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, ContentType: "text/csv; charset=utf-8", Filename: "weekplan-" + stamp + ".csv"}, nil
	case FormatPDF, "":
		data, err := PDF(plan)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, ContentType: "application/pdf", Filename: "weekplan-" + stamp + ".pdf"}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// CSV writes one row per slot: dow,day,title,image_url,color.
func CSV(days []planner.DaySlot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"dow", "day", "title", "image_url", "color"}); err != nil {
		return nil, err
	}
	for _, d := range days {
		row := []string{
			strconv.Itoa(d.DOW),
			planner.DayName(d.DOW),
			d.Title,
			d.DisplayImage(),
			d.Background(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF draws the title, one row per weekday and, when a share URL is set,
// a QR code linking back to the planner.
func PDF(plan Plan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; this keeps æ, ø and å readable.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := strings.TrimSpace(plan.Title)
	if title == "" {
		title = "Week Plan"
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(110, 110, 110)
	subtitle := "Generated " + plan.GeneratedAt.Format("2 Jan 2006")
	if plan.Owner != "" {
		subtitle += " for " + plan.Owner
	}
	pdf.Cell(0, 6, tr(subtitle))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(12)

	drawDaysTable(pdf, plan.Days, tr)

	if plan.ShareURL != "" {
		qrPNG, err := qrcode.Encode(plan.ShareURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("share-qr", imageOpts, bytes.NewReader(qrPNG))

		pdf.Ln(10)
		y := pdf.GetY()
		pdf.ImageOptions("share-qr", 15, y, 35, 35, false, imageOpts, 0, "")
		pdf.SetXY(55, y+14)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(0, 6, tr("Open the planner: "+plan.ShareURL))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func drawDaysTable(pdf *gofpdf.Fpdf, days []planner.DaySlot, tr func(string) string) {
	const (
		dayW   = 35.0
		titleW = 125.0
		colorW = 20.0
		rowH   = 9.0
	)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(dayW, rowH, "Day", "1", 0, "L", true, 0, "")
	pdf.CellFormat(titleW, rowH, "Dinner", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colorW, rowH, "Color", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, d := range days {
		text := d.Title
		if d.IsEmpty() {
			pdf.SetTextColor(150, 150, 150)
			text = planner.EmptyTitle
		}
		pdf.CellFormat(dayW, rowH, planner.DayName(d.DOW), "1", 0, "L", false, 0, "")
		pdf.CellFormat(titleW, rowH, tr(text), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)

		if r, g, b, ok := hexRGB(d.Background()); ok {
			pdf.SetFillColor(r, g, b)
			pdf.CellFormat(colorW, rowH, "", "1", 1, "C", true, 0, "")
		} else {
			pdf.CellFormat(colorW, rowH, "", "1", 1, "C", false, 0, "")
		}
	}
}

// hexRGB parses #rgb or #rrggbb.
func hexRGB(s string) (int, int, int, bool) {
	if !planner.ValidColor(s) {
		return 0, 0, 0, false
	}
	h := s[1:]
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
