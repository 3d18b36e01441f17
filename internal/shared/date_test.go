package shared

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "plain date",
			input: "2024-01-01",
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2024-01-01T10:30:00Z",
			want:  time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "empty is zero",
			input: "",
			want:  time.Time{},
		},
		{
			name:    "garbage",
			input:   "01/01/2024",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDate(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v.DateOrder("weekStartDate", start, "weekEndDate", end)
	if !v.HasIssues() {
		t.Fatal("expected issues for inverted date range")
	}
}

func TestValidatorNonNegative(t *testing.T) {
	v := NewValidator()
	v.NonNegative("basicSalary", -1)
	v.NonNegative("overtimeRate", 10)
	issues := v.Issues()
	if len(issues) != 1 || issues[0].Field != "basicSalary" {
		t.Fatalf("expected single basicSalary issue, got %+v", issues)
	}
}
