package t212sync

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// minorDigits is the number of decimal digits the ledger stores amounts with,
// whatever the currency.
const minorDigits = 2

// Amount is a signed amount of money in the ledger's minor unit (hundredths).
// Outflows from the account are negative.
type Amount int64

// ParseAmount converts a decimal currency string like "-12.345" into an Amount.
//
// The value is rounded half away from zero to the nearest hundredth, so "0.005"
// gives 1 and "-0.005" gives -1.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount(d.Shift(minorDigits).Round(0).IntPart()), nil
}

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -minorDigits) }

// String returns the amount in major units, without currency.
func (a Amount) String() string { return a.Decimal().StringFixed(minorDigits) }

// Format returns the amount formatted for display in the given currency.
//
// go-money formats in the currency's own minor unit; currencies whose minor unit is
// not a hundredth (or unknown codes) fall back to a plain decimal followed by the code.
func (a Amount) Format(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil || cur.Fraction != minorDigits {
		return strings.TrimSpace(a.String() + " " + currency)
	}
	return money.New(int64(a), cur.Code).Display()
}
