package services

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type decimalMatcher struct{ want decimal.Decimal }

func (m decimalMatcher) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string { return fmt.Sprintf("is decimal %s", m.want) }

func decEq(s string) gomock.Matcher { return decimalMatcher{decimal.RequireFromString(s)} }
