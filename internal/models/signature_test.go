package models

import (
	"reflect"
	"testing"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"TEXT", "STRING"},
		{"varchar", "STRING"},
		{"NVARCHAR", "STRING"},
		{"NUMBER", "NUMERIC"},
		{"bigint", "NUMERIC"},
		{"double", "NUMERIC"},
		{"TIMESTAMP_NTZ", "DATETIME"},
		{" date ", "DATETIME"},
		{"BOOL", "BOOLEAN"},
		{"GEOGRAPHY", "GEOGRAPHY"},
		{"", "UNKNOWN"},
		{"  ", "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := NormalizeType(tt.raw); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseSnowflakeType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"type":"TEXT","length":255}`, "TEXT"},
		{`{"type":"FIXED","precision":38,"scale":0}`, "FIXED"},
		{"NUMBER", "NUMBER"},
		{"timestamp_ntz", "TIMESTAMP_NTZ"},
		// Malformed JSON falls through to the raw value
		{`{"type":`, `{"TYPE":`},
		{"", "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := ParseSnowflakeType(tt.raw); got != tt.want {
			t.Errorf("ParseSnowflakeType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTypeSignatureOf(t *testing.T) {
	columns := []Column{
		{Name: "email", Type: "TEXT"},
		{Name: "customer_id", Type: "NUMBER"},
		{Name: "created_at", Type: "TIMESTAMP"},
	}
	// Sorted family tokens, independent of column order
	if got := TypeSignatureOf(columns); got != "DATETIME,NUMERIC,STRING" {
		t.Errorf("TypeSignatureOf() = %q", got)
	}
	if got := TypeSignatureOf(nil); got != "" {
		t.Errorf("TypeSignatureOf(nil) = %q, want empty", got)
	}
}

func TestNameSignatureOf(t *testing.T) {
	columns := []Column{
		{Name: "Email_Address"},
		{Name: "CUSTOMER_ID"},
	}
	if got := NameSignatureOf(columns); got != "customerid,emailaddress" {
		t.Errorf("NameSignatureOf() = %q", got)
	}
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"CUSTOMER_ID", "customerid"},
		{"customerid", "customerid"},
		{"__weird__", "weird"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeColumnName(tt.name); got != tt.want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSignatureTokens(t *testing.T) {
	got := SignatureTokens("NUMERIC,STRING,STRING")
	want := map[string]struct{}{"NUMERIC": {}, "STRING": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SignatureTokens() = %v, want %v", got, want)
	}

	// An empty signature must not yield a set containing the empty token
	if got := SignatureTokens(""); len(got) != 0 {
		t.Errorf("SignatureTokens(\"\") = %v, want empty set", got)
	}
}

func TestFKEntities(t *testing.T) {
	columns := []Column{
		{Name: "customer_id"},
		{Name: "ORDER_KEY"},
		{Name: "billing_account_id"},
		{Name: "email"},
		{Name: "_id"},
	}
	got := FKEntities(columns)
	want := map[string]struct{}{"customer": {}, "order": {}, "billing_account": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FKEntities() = %v, want %v", got, want)
	}
}

func TestNewTableSignature(t *testing.T) {
	columns := []Column{
		{Name: "customer_id", Type: "NUMBER", Ordinal: 1},
		{Name: "email", Type: "TEXT", Ordinal: 2},
	}
	sig := NewTableSignature("snowflake:CUSTOMERS", PlatformSnowflake, "PUBLIC", "CUSTOMERS", 1000, 0, columns)

	if sig.ColumnCount != 2 {
		t.Errorf("ColumnCount = %d, want fallback to len(columns)", sig.ColumnCount)
	}
	if sig.TypeSignature != "NUMERIC,STRING" {
		t.Errorf("TypeSignature = %q", sig.TypeSignature)
	}
	if sig.NameSignature != "customerid,email" {
		t.Errorf("NameSignature = %q", sig.NameSignature)
	}

	// Reported column count wins over len(columns) when non-zero
	partial := NewTableSignature("snowflake:WIDE", PlatformSnowflake, "PUBLIC", "WIDE", 10, 40, columns[:1])
	if partial.ColumnCount != 40 {
		t.Errorf("ColumnCount = %d, want 40", partial.ColumnCount)
	}
}

func TestColumnText(t *testing.T) {
	sig := TableSignature{Columns: []Column{
		{Name: "customer_id"}, {Name: ""}, {Name: "email"},
	}}
	if got := sig.ColumnText(); got != "customer_id email" {
		t.Errorf("ColumnText() = %q", got)
	}
	if got := (TableSignature{}).ColumnText(); got != "" {
		t.Errorf("ColumnText() on empty signature = %q", got)
	}
}

func TestClampUnit(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0}, {0, 0}, {0.42, 0.42}, {1, 1}, {1.5, 1},
	}
	for _, tt := range tests {
		if got := ClampUnit(tt.in); got != tt.want {
			t.Errorf("ClampUnit(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
