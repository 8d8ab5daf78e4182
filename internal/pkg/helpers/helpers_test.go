package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 15*time.Minute, ParseDuration("15m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("not-a-duration", time.Hour), "falls back to the default")
}

func TestParseAndFormatDate(t *testing.T) {
	parsed, err := ParseDate("2026-09-07")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC), parsed)
	assert.Equal(t, "2026-09-07", FormatDate(parsed))

	_, err = ParseDate("07/09/2026")
	assert.Error(t, err)
}

func TestTruncateToDate(t *testing.T) {
	ts := time.Date(2026, time.September, 7, 14, 35, 12, 99, time.UTC)
	assert.Equal(t, time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC), TruncateToDate(ts))
}

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{"first page", 1, 20, 0, 20},
		{"third page", 3, 10, 20, 10},
		{"zero size falls back", 1, 0, 0, DefaultPageSize},
		{"oversized page size falls back", 2, 1000, uint64(DefaultPageSize), DefaultPageSize},
		{"page below one resets", -1, 10, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 20, info.PageSize)
	assert.Equal(t, int64(45), info.TotalItems)
	assert.Equal(t, 3, info.TotalPages)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages, "an empty result still has one page")
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/courses?page=3&size=50", nil)
	page, size := GetPaginationParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/courses?page=abc&size=9999", nil)
	page, size = GetPaginationParams(c)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)
}
