package payroll

// ResolveOvertime fills the overtime amount from hours and rate when the
// amount was not supplied explicitly.
func ResolveOvertime(ot Overtime) Overtime {
	if ot.Amount == 0 && ot.Hours != 0 && ot.Rate != 0 {
		ot.Amount = ot.Hours * ot.Rate
	}
	return ot
}

// ComputeTotals derives gross pay, total deductions and net pay. Derived
// values are always recomputed server-side; client-supplied totals never win.
func ComputeTotals(basicSalary float64, overtime Overtime, bonuses, deductions []MoneyLine) (gross, totalDeductions, net float64) {
	gross = basicSalary + overtime.Amount
	for _, bonus := range bonuses {
		gross += bonus.Amount
	}
	for _, deduction := range deductions {
		totalDeductions += deduction.Amount
	}
	net = gross - totalDeductions
	return gross, totalDeductions, net
}

// Recompute applies ResolveOvertime and ComputeTotals to a record in place.
func Recompute(rec *PaymentRecord) {
	rec.Overtime = ResolveOvertime(rec.Overtime)
	rec.GrossPay, rec.TotalDeductions, rec.NetPay = ComputeTotals(rec.BasicSalary, rec.Overtime, rec.Bonuses, rec.Deductions)
}
