package core

import (
	"strings"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestParseStatus_CaseInsensitive(t *testing.T) {
	for _, raw := range []string{"active", "Active", "ACTIVE"} {
		st, err := ParseStatus(raw)
		check.NoError(t, err)
		check.Equal(t, StatusActive, st)
	}

	st, err := ParseStatus("pending")
	check.NoError(t, err)
	check.Equal(t, StatusPending, st)

	st, err = ParseStatus("completed")
	check.NoError(t, err)
	check.Equal(t, StatusCompleted, st)

	st, err = ParseStatus("cancelled")
	check.NoError(t, err)
	check.Equal(t, StatusCancelled, st)
}

func TestParseStatus_UnknownValue(t *testing.T) {
	_, err := ParseStatus("finished")
	check.Error(t, err)
	check.Equal(t, KindInvalidArgument, KindOf(err))

	// The message names the allowed set so callers can self-correct.
	for _, name := range AllStatuses() {
		check.True(t, strings.Contains(err.Error(), name))
	}
}

func TestParseCurrency_CaseInsensitive(t *testing.T) {
	for _, raw := range []string{"usd", "Usd", "USD"} {
		c, err := ParseCurrency(raw)
		check.NoError(t, err)
		check.Equal(t, CurrencyUSD, c)
	}

	c, err := ParseCurrency("clp")
	check.NoError(t, err)
	check.Equal(t, CurrencyCLP, c)
}

func TestParseCurrency_UnknownValue(t *testing.T) {
	_, err := ParseCurrency("GBP")
	check.Error(t, err)
	check.Equal(t, KindInvalidArgument, KindOf(err))

	for _, code := range AllCurrencies() {
		check.True(t, strings.Contains(err.Error(), code))
	}
}

func TestParseCurrency_EmptyRejected(t *testing.T) {
	// The USD default applies only at auction creation; the parser itself
	// rejects empty input.
	_, err := ParseCurrency("")
	check.Error(t, err)
	check.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestStatusStringRoundTrip(t *testing.T) {
	for _, name := range AllStatuses() {
		st, err := ParseStatus(name)
		check.NoError(t, err)
		check.Equal(t, name, st.String())
	}
	for _, code := range AllCurrencies() {
		c, err := ParseCurrency(code)
		check.NoError(t, err)
		check.Equal(t, code, c.String())
	}
}
