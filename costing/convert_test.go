package costing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		from   Currency
		to     Currency
		rate   string
		want   string
	}{
		{"same currency", "250", CurrencyPLN, CurrencyPLN, "4.3", "250"},
		{"domestic to foreign divides", "430", CurrencyPLN, CurrencyEUR, "4.3", "100"},
		{"foreign to domestic multiplies", "100", CurrencyEUR, CurrencyPLN, "4.3", "430"},
		{"zero amount", "0", CurrencyEUR, CurrencyPLN, "4.3", "0"},
		{"zero rate does not panic", "100", CurrencyPLN, CurrencyEUR, "0", "0"},
		{"negative rate accepted", "100", CurrencyEUR, CurrencyPLN, "-2", "-200"},
		{"empty currency is domestic", "100", "", CurrencyPLN, "4.3", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(dec(tt.amount), tt.from, tt.to, dec(tt.rate))
			assertDecimal(t, "Convert", got, tt.want)
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	amounts := []string{"1", "19.99", "1234.56", "0.01", "999999.99"}
	rates := []string{"4.3", "0.25", "3.987654", "1"}

	for _, a := range amounts {
		for _, r := range rates {
			x := dec(a)
			there := Convert(x, CurrencyPLN, CurrencyEUR, dec(r))
			back := Convert(there, CurrencyEUR, CurrencyPLN, dec(r))
			if !back.Sub(x).Abs().LessThan(dec("0.0000001")) {
				t.Errorf("round trip of %s at rate %s = %s", a, r, back)
			}
		}
	}
}

func TestConvert_ZeroShortCircuit(t *testing.T) {
	got := Convert(decimal.Zero.Neg(), CurrencyPLN, CurrencyEUR, dec("4.3"))
	if !got.IsZero() || got.Sign() != 0 {
		t.Errorf("Convert(-0) = %s, want 0", got)
	}
}

func TestConvertMoney(t *testing.T) {
	got := ConvertMoney(Money{Amount: dec("10"), Currency: CurrencyEUR}, CurrencyPLN, dec("4"))
	assertDecimal(t, "ConvertMoney", got, "40")
}
