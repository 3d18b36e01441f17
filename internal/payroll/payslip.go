package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePayslipPDF renders a one-page payslip for the record and streams it
// to w.
func WritePayslipPDF(w io.Writer, rec *PaymentRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", rec.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Week: %s to %s",
		rec.WeekStartDate.Format("2006-01-02"), rec.WeekEndDate.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Basic salary: %.2f", rec.BasicSalary))
	pdf.Ln(7)
	if rec.Overtime.Amount != 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Overtime (%.1fh @ %.2f): %.2f",
			rec.Overtime.Hours, rec.Overtime.Rate, rec.Overtime.Amount))
		pdf.Ln(7)
	}
	for _, line := range rec.Bonuses {
		pdf.Cell(0, 8, fmt.Sprintf("Bonus - %s: %.2f", line.Description, line.Amount))
		pdf.Ln(7)
	}
	for _, line := range rec.Deductions {
		pdf.Cell(0, 8, fmt.Sprintf("Deduction - %s: -%.2f", line.Description, line.Amount))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Gross pay: %.2f", rec.GrossPay))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total deductions: %.2f", rec.TotalDeductions))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net pay: %.2f", rec.NetPay))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", rec.PaymentStatus))
	if rec.PaymentDate != nil {
		pdf.Ln(6)
		pdf.Cell(0, 8, fmt.Sprintf("Paid on: %s", rec.PaymentDate.Format("2006-01-02")))
	}

	return pdf.Output(w)
}
