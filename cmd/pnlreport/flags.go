package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// decimalFlag is an optional amount parsed exactly, without going through float64.
type decimalFlag struct {
	value decimal.Decimal
	set   bool
}

var _ pflag.Value = (*decimalFlag)(nil)

func (f decimalFlag) String() string {
	if !f.set {
		return ""
	}
	return f.value.String()
}

// Set implements pflag.Value.
func (f *decimalFlag) Set(v string) error {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("invalid amount %q", v)
	}
	f.value, f.set = d, true
	return nil
}

// Type implements pflag.Value.
func (f decimalFlag) Type() string {
	return "amount"
}

// ValueOr returns the flag value, or d when the flag was not given.
func (f decimalFlag) ValueOr(d decimal.Decimal) decimal.Decimal {
	if !f.set {
		return d
	}
	return f.value
}
