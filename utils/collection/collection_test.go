package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	kind  string
	value float64
}

func TestGroupBy(t *testing.T) {
	items := []item{{"a", 1}, {"b", 2}, {"a", 3}}
	groups := GroupBy(items, func(i item) string { return i.kind })

	assert.Len(t, groups, 2)
	assert.Equal(t, []item{{"a", 1}, {"a", 3}}, groups["a"])
	assert.Empty(t, GroupBy([]item(nil), func(i item) string { return i.kind }))
}

func TestSumBy(t *testing.T) {
	items := []item{{"a", 1.5}, {"b", 2}, {"a", -0.5}}
	assert.Equal(t, 3.0, SumBy(items, func(i item) float64 { return i.value }))
	assert.Equal(t, 0, SumBy([]item{}, func(item) int { return 1 }))
}
