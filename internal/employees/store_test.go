package employees

import "testing"

func TestFormatEmployeeCode(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "EMP000001"},
		{123, "EMP000123"},
		{999999, "EMP999999"},
		{1000000, "EMP1000000"},
	}

	for _, tc := range tests {
		if got := FormatEmployeeCode(tc.seq); got != tc.want {
			t.Fatalf("FormatEmployeeCode(%d) = %q, want %q", tc.seq, got, tc.want)
		}
	}
}
