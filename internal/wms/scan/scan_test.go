package scan

import (
	"testing"
	"time"
)

func TestDecodeGS1(t *testing.T) {
	r := Decode("(01)00614141123452(10)LOT42(21)SN-99(17)261130(30)25")

	if r.Format != FormatGS1 {
		t.Fatalf("Expected format gs1, got %s", r.Format)
	}
	if r.GTIN != "00614141123452" {
		t.Errorf("Expected gtin 00614141123452, got %s", r.GTIN)
	}
	if r.Lot != "LOT42" {
		t.Errorf("Expected lot LOT42, got %s", r.Lot)
	}
	if r.Serial != "SN-99" {
		t.Errorf("Expected serial SN-99, got %s", r.Serial)
	}
	if r.Quantity != 25 {
		t.Errorf("Expected quantity 25, got %d", r.Quantity)
	}
	if r.ExpirationDate == nil {
		t.Fatal("Expected expiration date to be set")
	}
	want := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	if !r.ExpirationDate.Equal(want) {
		t.Errorf("Expected expiration %v, got %v", want, *r.ExpirationDate)
	}
}

func TestDecodeGS1ManufacturerAI(t *testing.T) {
	r := Decode("(240)ACME-PN-100(10)L1")
	if r.Manufacturer != "ACME-PN-100" {
		t.Errorf("Expected manufacturer ACME-PN-100, got %s", r.Manufacturer)
	}
	if r.SKU != "ACME-PN-100" {
		t.Errorf("Expected sku ACME-PN-100, got %s", r.SKU)
	}
	if r.Lot != "L1" {
		t.Errorf("Expected lot L1, got %s", r.Lot)
	}
}

func TestDecodeGS1DayZeroMeansEndOfMonth(t *testing.T) {
	r := Decode("(17)270200")
	if r.ExpirationDate == nil {
		t.Fatal("Expected expiration date to be set")
	}
	want := time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC)
	if !r.ExpirationDate.Equal(want) {
		t.Errorf("Expected end of month %v, got %v", want, *r.ExpirationDate)
	}
}

func TestDecodeGS1CenturyPivot(t *testing.T) {
	// 当前年份+50以内算21世纪，超出回退到20世纪
	r := Decode("(17)990101")
	if r.ExpirationDate == nil {
		t.Fatal("Expected expiration date to be set")
	}
	if r.ExpirationDate.Year() != 1999 {
		t.Errorf("Expected year 1999 via pivot, got %d", r.ExpirationDate.Year())
	}
}

func TestDecodeGS1MalformedFieldsStayUnset(t *testing.T) {
	r := Decode("(01)00614141123452(17)BADDAT(30)abc")
	if r.GTIN != "00614141123452" {
		t.Errorf("Expected gtin to survive, got %s", r.GTIN)
	}
	if r.ExpirationDate != nil {
		t.Errorf("Expected nil expiration for malformed date, got %v", r.ExpirationDate)
	}
	if r.Quantity != 0 {
		t.Errorf("Expected zero quantity for non-numeric value, got %d", r.Quantity)
	}
}

func TestDecodeHIBC(t *testing.T) {
	r := Decode("+A123PRODUCT9/$$LOT77/SN01")

	if r.Format != FormatHIBC {
		t.Fatalf("Expected format hibc, got %s", r.Format)
	}
	if r.Manufacturer != "A123" {
		t.Errorf("Expected manufacturer A123, got %s", r.Manufacturer)
	}
	if r.SKU != "PRODUCT" {
		t.Errorf("Expected sku PRODUCT (check char stripped), got %s", r.SKU)
	}
	if r.Lot != "LOT77" {
		t.Errorf("Expected lot LOT77, got %s", r.Lot)
	}
	if r.Serial != "SN01" {
		t.Errorf("Expected serial SN01, got %s", r.Serial)
	}
}

func TestDecodeHIBCEqualsPrefix(t *testing.T) {
	r := Decode("=B456WIDGET3/BATCH1")
	if r.Format != FormatHIBC {
		t.Fatalf("Expected format hibc, got %s", r.Format)
	}
	if r.Manufacturer != "B456" {
		t.Errorf("Expected manufacturer B456, got %s", r.Manufacturer)
	}
	if r.Lot != "BATCH1" {
		t.Errorf("Expected lot BATCH1, got %s", r.Lot)
	}
}

func TestDecodeDelimited(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Result
	}{
		{
			name:  "pipe with gtin and quantity",
			input: "SKU-1|LOT-A|12345678901234|6",
			want:  Result{Format: FormatDelimited, SKU: "SKU-1", Lot: "LOT-A", GTIN: "12345678901234", Quantity: 6},
		},
		{
			name:  "comma separated",
			input: "PART-9,B202406",
			want:  Result{Format: FormatDelimited, SKU: "PART-9", Lot: "B202406"},
		},
		{
			name:  "semicolon with serial",
			input: "P1;L1;S1",
			want:  Result{Format: FormatDelimited, SKU: "P1", Lot: "L1", Serial: "S1"},
		},
		{
			name:  "tab separated",
			input: "ITEM\t42",
			want:  Result{Format: FormatDelimited, SKU: "ITEM", Quantity: 42},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Decode(tc.input)
			if r.Format != tc.want.Format {
				t.Errorf("Expected format %s, got %s", tc.want.Format, r.Format)
			}
			if r.SKU != tc.want.SKU {
				t.Errorf("Expected sku %q, got %q", tc.want.SKU, r.SKU)
			}
			if r.Lot != tc.want.Lot {
				t.Errorf("Expected lot %q, got %q", tc.want.Lot, r.Lot)
			}
			if r.Serial != tc.want.Serial {
				t.Errorf("Expected serial %q, got %q", tc.want.Serial, r.Serial)
			}
			if r.GTIN != tc.want.GTIN {
				t.Errorf("Expected gtin %q, got %q", tc.want.GTIN, r.GTIN)
			}
			if r.Quantity != tc.want.Quantity {
				t.Errorf("Expected quantity %d, got %d", tc.want.Quantity, r.Quantity)
			}
		})
	}
}

func TestDecodeRawFallback(t *testing.T) {
	r := Decode("PLAIN-LOT-123")
	if r.Format != FormatRaw {
		t.Fatalf("Expected format raw, got %s", r.Format)
	}
	if r.Lot != "PLAIN-LOT-123" {
		t.Errorf("Expected whole input as lot, got %s", r.Lot)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	r := Decode("   ")
	if r.Format != FormatRaw {
		t.Fatalf("Expected format raw, got %s", r.Format)
	}
	if r.Lot != "" {
		t.Errorf("Expected empty lot, got %s", r.Lot)
	}
}
