package validate

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends the non-nil results of the helpers below.
func (e Errs) Add(fs ...*ErrField) Errs {
	for _, f := range fs {
		if f != nil {
			e = append(e, *f)
		}
	}
	return e
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// Amount parses a decimal amount that must be strictly positive.
func Amount(field string, raw decimal.NullDecimal) (*ErrField, decimal.Decimal) {
	if !raw.Valid {
		return &ErrField{Field: field, Msg: "required"}, decimal.Zero
	}
	if !raw.Decimal.IsPositive() {
		return &ErrField{Field: field, Msg: "must be a positive number"}, decimal.Zero
	}
	return nil, raw.Decimal
}
