package service

import (
	"testing"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

func TestClassifySensitivity(t *testing.T) {
	tests := []struct {
		name      string
		columns   []models.Column
		wantPII   bool
		wantLevel string
	}{
		{
			"no pii",
			[]models.Column{{Name: "order_id"}, {Name: "total"}, {Name: "status"}},
			false, "",
		},
		{
			"contact info is confidential",
			[]models.Column{{Name: "customer_id"}, {Name: "EMAIL"}, {Name: "phone_number"}},
			true, "confidential",
		},
		{
			"identity numbers are restricted",
			[]models.Column{{Name: "name"}, {Name: "ssn"}},
			true, "restricted",
		},
		{
			"restricted wins over confidential",
			[]models.Column{{Name: "email"}, {Name: "passport_number"}},
			true, "restricted",
		},
		{
			"substring match",
			[]models.Column{{Name: "billing_address_line1"}},
			true, "confidential",
		},
		{
			"empty columns",
			nil,
			false, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPII, gotLevel := classifySensitivity(tt.columns)
			if gotPII != tt.wantPII {
				t.Errorf("pii = %v, want %v", gotPII, tt.wantPII)
			}
			if tt.wantLevel == "" {
				if gotLevel != nil {
					t.Errorf("level = %q, want nil", *gotLevel)
				}
			} else if gotLevel == nil || *gotLevel != tt.wantLevel {
				t.Errorf("level = %v, want %q", gotLevel, tt.wantLevel)
			}
		})
	}
}

func TestFKEntity(t *testing.T) {
	tests := []struct {
		column string
		want   string
		ok     bool
	}{
		{"customer_id", "customer", true},
		{"CUSTOMER_ID", "customer", true},
		{"order_key", "order", true},
		{"billing_account_id", "billing_account", true},
		{"email", "", false},
		{"id", "", false},
		{"_id", "", false},
	}
	for _, tt := range tests {
		got, ok := fkEntity(tt.column)
		if ok != tt.ok || got != tt.want {
			t.Errorf("fkEntity(%q) = (%q, %v), want (%q, %v)", tt.column, got, ok, tt.want, tt.ok)
		}
	}
}
