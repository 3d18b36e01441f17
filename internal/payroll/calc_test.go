package payroll

import "testing"

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name       string
		basic      float64
		overtime   Overtime
		bonuses    []MoneyLine
		deductions []MoneyLine
		wantGross  float64
		wantDeduct float64
		wantNet    float64
	}{
		{
			name:       "salary with bonus and deduction",
			basic:      1000,
			bonuses:    []MoneyLine{{Description: "performance", Amount: 50}},
			deductions: []MoneyLine{{Description: "late", Amount: 20}},
			wantGross:  1050,
			wantDeduct: 20,
			wantNet:    1030,
		},
		{
			name:      "salary only",
			basic:     2500,
			wantGross: 2500,
			wantNet:   2500,
		},
		{
			name:       "overtime included in gross",
			basic:      1000,
			overtime:   Overtime{Hours: 5, Rate: 10, Amount: 50},
			wantGross:  1050,
			wantDeduct: 0,
			wantNet:    1050,
		},
		{
			name:       "multiple lines",
			basic:      1000,
			bonuses:    []MoneyLine{{Amount: 100}, {Amount: 25.5}},
			deductions: []MoneyLine{{Amount: 30}, {Amount: 12.5}},
			wantGross:  1125.5,
			wantDeduct: 42.5,
			wantNet:    1083,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			gross, deductions, net := ComputeTotals(tc.basic, tc.overtime, tc.bonuses, tc.deductions)
			if gross != tc.wantGross {
				t.Fatalf("gross = %v, want %v", gross, tc.wantGross)
			}
			if deductions != tc.wantDeduct {
				t.Fatalf("totalDeductions = %v, want %v", deductions, tc.wantDeduct)
			}
			if net != tc.wantNet {
				t.Fatalf("net = %v, want %v", net, tc.wantNet)
			}
			if gross-net != deductions {
				t.Fatalf("invariant gross-net == totalDeductions violated: %v - %v != %v", gross, net, deductions)
			}
		})
	}
}

func TestResolveOvertime(t *testing.T) {
	ot := ResolveOvertime(Overtime{Hours: 4, Rate: 12.5})
	if ot.Amount != 50 {
		t.Fatalf("expected amount 50 from hours*rate, got %v", ot.Amount)
	}

	explicit := ResolveOvertime(Overtime{Hours: 4, Rate: 12.5, Amount: 60})
	if explicit.Amount != 60 {
		t.Fatalf("expected explicit amount to win, got %v", explicit.Amount)
	}

	empty := ResolveOvertime(Overtime{})
	if empty.Amount != 0 {
		t.Fatalf("expected zero overtime to stay zero, got %v", empty.Amount)
	}
}
