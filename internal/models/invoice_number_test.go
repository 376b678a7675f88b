package models

import "testing"

func TestFormatInvoiceNumber(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		seq     int64
		want    string
		wantErr bool
	}{
		{name: "first invoice", prefix: "INV", seq: 1, want: "INV-000001"},
		{name: "custom prefix", prefix: "ACME", seq: 42, want: "ACME-000042"},
		{name: "empty prefix uses default", prefix: "", seq: 7, want: "INV-000007"},
		{name: "prefix is trimmed", prefix: " LK ", seq: 3, want: "LK-000003"},
		{name: "six digits", prefix: "INV", seq: 999999, want: "INV-999999"},
		{name: "wider sequence is not truncated", prefix: "INV", seq: 1234567, want: "INV-1234567"},
		{name: "zero sequence", prefix: "INV", seq: 0, wantErr: true},
		{name: "negative sequence", prefix: "INV", seq: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatInvoiceNumber(tt.prefix, tt.seq)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatInvoiceNumber() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
