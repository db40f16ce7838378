package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParamsClamps(t *testing.T) {
	p := NewParams(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = NewParams(3, 500)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 200, p.Offset)
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(NewParams(2, 10), 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = GetMeta(NewParams(1, 10), 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
