package util

import "testing"

func TestQuotePowerShell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`C:\scripts\a.py`, `'C:\scripts\a.py'`},
		{`C:\my scripts\a.py`, `'C:\my scripts\a.py'`},
		{`C:\it's\a.py`, `'C:\it''s\a.py'`},
		{"C:\\it\u2019s\\a.py", "'C:\\it\u2019\u2019s\\a.py'"},
		{`C:\$env:x\a.py`, `'C:\$env:x\a.py'`},
		{"Open Natural Language File", "'Open Natural Language File'"},
		{"", "''"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := QuotePowerShell(tt.in); got != tt.want {
				t.Errorf("QuotePowerShell(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
