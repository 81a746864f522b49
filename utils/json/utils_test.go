package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func TestEncode(t *testing.T) {
	data, err := Encode(sample{Name: "<KRW-BTC>", Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"<KRW-BTC>","qty":2}`, string(data))
}

func TestDecode(t *testing.T) {
	got, err := Decode[sample]([]byte(`{"name":"a","qty":3}`))
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "a", Qty: 3}, got)

	_, err = Decode[sample]([]byte(`{"name":"a","extra":1}`))
	assert.Error(t, err)

	_, err = Decode[sample]([]byte(`not json`))
	assert.Error(t, err)
}
