package balance

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// RenderTimesheet writes a one-page monthly timesheet as PDF.
func RenderTimesheet(w io.Writer, workerName string, period PeriodBalance) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Timesheet")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Worker: %s", workerName)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", period.From, period.To))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	headers := []string{"Day", "Shift", "Punches", "Expected", "Worked", "Balance"}
	widths := []float64{25, 30, 60, 25, 25, 25}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, day := range period.Days {
		shift := day.ShiftName
		if day.DayOff {
			shift = "day off"
		}
		punches := strings.Join(day.Punches, " ")
		if day.Incomplete {
			punches += " *"
		}
		cells := []string{
			day.Day,
			tr(shift),
			punches,
			FormatMinutes(day.ExpectedMinutes),
			FormatMinutes(day.WorkedMinutes),
			FormatMinutes(day.BalanceMinutes),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 7, fmt.Sprintf("Expected %s  Worked %s  Balance %s",
		FormatMinutes(period.ExpectedMinutes), FormatMinutes(period.WorkedMinutes), FormatMinutes(period.BalanceMinutes)))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	if period.IncompleteDays > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("* %d day(s) with an unpaired punch", period.IncompleteDays))
		pdf.Ln(5)
	}
	if len(period.NoPunchDays) > 0 {
		pdf.MultiCell(0, 5, "Scheduled without punches: "+strings.Join(period.NoPunchDays, ", "), "", "L", false)
	}
	if len(period.UnscheduledDays) > 0 {
		pdf.MultiCell(0, 5, "Punches without schedule: "+strings.Join(period.UnscheduledDays, ", "), "", "L", false)
	}

	return pdf.Output(w)
}
