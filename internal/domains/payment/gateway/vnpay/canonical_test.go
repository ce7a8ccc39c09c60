package vnpay

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	t.Run("sorts keys and drops empty values", func(t *testing.T) {
		got := Canonicalize(map[string]any{
			"b": "2",
			"a": "1",
			"c": "",
			"d": 0,
			"e": nil,
		})
		assert.Equal(t, "a=1&b=2&d=0", got.String())
	})

	t.Run("encodes spaces as plus and reserved chars as percent", func(t *testing.T) {
		got := Canonicalize(map[string]string{
			FieldOrderInfo: "Thanh toan don hang ORD001",
			FieldReturnURL: "http://localhost:8080/return?x=1",
		})
		assert.Equal(t,
			"vnp_OrderInfo=Thanh+toan+don+hang+ORD001&vnp_ReturnUrl=http%3A%2F%2Flocalhost%3A8080%2Freturn%3Fx%3D1",
			got.String())
	})

	t.Run("escapes sub-delims in values", func(t *testing.T) {
		got := Canonicalize(map[string]string{"info": "(don) hang!"})
		assert.Equal(t, "info=%28don%29+hang%21", got.String())
	})

	t.Run("byte order puts upper case first", func(t *testing.T) {
		got := Canonicalize(map[string]string{"b": "1", "B": "2", "a": "3"})
		assert.Equal(t, "B=2&a=3&b=1", got.String())
	})

	t.Run("sorts on encoded keys", func(t *testing.T) {
		// raw order: "a b" < "a+"; encoded order: "a%2B" < "a+b"
		got := Canonicalize(map[string]string{"a+": "1", "a b": "2"})
		assert.Equal(t, "a%2B=1&a+b=2", got.String())
	})

	t.Run("same content gives same string", func(t *testing.T) {
		first := map[string]string{"vnp_TxnRef": "ORD001", "vnp_Amount": "100", "vnp_Locale": "vn"}
		second := map[string]string{"vnp_Locale": "vn", "vnp_Amount": "100", "vnp_TxnRef": "ORD001"}
		assert.Equal(t, Canonicalize(first).String(), Canonicalize(second).String())
	})

	t.Run("formats typed values", func(t *testing.T) {
		created := time.Date(2024, 1, 15, 3, 4, 5, 0, time.UTC)
		got := Canonicalize(map[string]any{
			"amount":  int64(10000000),
			"price":   decimal.RequireFromString("12.50"),
			"created": created,
			"expire":  time.Time{},
		})
		assert.Equal(t, "amount=10000000&created=20240115100405&price=12.5", got.String())
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Canonicalize(map[string]string{}).String())
	})
}

func TestCanonicalLookup(t *testing.T) {
	c := Canonicalize(map[string]string{FieldOrderInfo: "a b"})

	v, ok := c.Lookup(FieldOrderInfo)
	require.True(t, ok)
	assert.Equal(t, "a+b", v)

	_, ok = c.Lookup(FieldAmount)
	assert.False(t, ok)
}

func TestFormatDate(t *testing.T) {
	t.Run("renders in Vietnam time whatever the source zone", func(t *testing.T) {
		utc := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)
		ny := utc.In(time.FixedZone("EST", -5*60*60))

		assert.Equal(t, "20240116030000", FormatDate(utc))
		assert.Equal(t, FormatDate(utc), FormatDate(ny))
	})

	t.Run("parse is the inverse", func(t *testing.T) {
		parsed, err := ParseDate("20240116030000")
		require.NoError(t, err)
		assert.True(t, parsed.Equal(time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)))
	})
}
