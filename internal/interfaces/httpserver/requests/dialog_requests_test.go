package requests

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/dialog-api/internal/domain/dialog"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/dialogs?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
		wantErr  bool
	}{
		{query: "", page: 1, pageSize: 20},
		{query: "page=3&page_size=5", page: 3, pageSize: 5},
		{query: "page_size=500", page: 1, pageSize: 100},
		{query: "page=0", wantErr: true},
		{query: "page=-2", wantErr: true},
		{query: "page_size=x", wantErr: true},
		{query: "page=9223372036854775807", wantErr: true},
		{query: "page=9223372036854775807&page_size=1", page: math.MaxInt, pageSize: 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := ParsePagination(contextWithQuery(tt.query), 20, 100)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
		})
	}
}

func TestPaginationBounds(t *testing.T) {
	p := Pagination{Page: 2, PageSize: 4}
	assert.Equal(t, 4, p.Offset())

	start, end := p.Bounds(10)
	assert.Equal(t, 4, start)
	assert.Equal(t, 8, end)

	start, end = p.Bounds(6)
	assert.Equal(t, 4, start)
	assert.Equal(t, 6, end)

	start, end = p.Bounds(2)
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, end)

	huge := Pagination{Page: math.MaxInt, PageSize: 20}
	start, end = huge.Bounds(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestParseRankMode(t *testing.T) {
	tests := []struct {
		query   string
		want    dialog.RankMode
		wantErr bool
	}{
		{query: "", want: dialog.RankNone},
		{query: "filter=last_sent", want: dialog.RankLastSent},
		{query: "filter=LAST_RECEIVED", want: dialog.RankLastReceived},
		{query: "last_sent=true", want: dialog.RankLastSent},
		{query: "last_received=1", want: dialog.RankLastReceived},
		{query: "last_sent=false", want: dialog.RankNone},
		{query: "filter=none&last_sent=true", want: dialog.RankNone},
		{query: "last_sent=true&last_received=true", wantErr: true},
		{query: "filter=oldest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			mode, err := ParseRankMode(contextWithQuery(tt.query))
			if tt.wantErr {
				assert.ErrorIs(t, err, dialog.ErrInvalidRankMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}
