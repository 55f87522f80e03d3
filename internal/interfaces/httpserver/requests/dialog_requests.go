package requests

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jan-server/services/dialog-api/internal/domain/dialog"
)

// CreateDialogRequest opens (or returns) the dialog with another user.
type CreateDialogRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// SendMessageRequest carries the text of a new message.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// MarkReadRequest moves the read boundary of a dialog up to MessageID.
type MarkReadRequest struct {
	MessageID uint `json:"message_id" binding:"required"`
}

// Pagination holds page-number pagination parameters.
type Pagination struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Offset is the number of items skipped before the page starts.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Bounds returns the [start, end) window of the page over n items.
func (p Pagination) Bounds(n int) (int, int) {
	start := p.Offset()
	if start < 0 || start > n {
		start = n
	}
	end := n
	if p.PageSize >= 0 && p.PageSize < n-start {
		end = start + p.PageSize
	}
	return start, end
}

// ParsePagination reads page and page_size, applying the default size and capping at maxSize.
func ParsePagination(c *gin.Context, defaultSize, maxSize int) (Pagination, error) {
	p := Pagination{Page: 1, PageSize: defaultSize}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Pagination{}, errors.New("page must be a positive integer")
		}
		p.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return Pagination{}, errors.New("page_size must be a positive integer")
		}
		p.PageSize = size
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return Pagination{}, errors.New("page is out of range")
	}
	return p, nil
}

// ParseRankMode reads the ranking filter. "filter" wins over the boolean
// last_sent / last_received flags.
func ParseRankMode(c *gin.Context) (dialog.RankMode, error) {
	if raw, ok := c.GetQuery("filter"); ok {
		return dialog.ParseRankMode(raw)
	}

	lastSent := isTrue(c.Query("last_sent"))
	lastReceived := isTrue(c.Query("last_received"))
	switch {
	case lastSent && lastReceived:
		return "", dialog.ErrInvalidRankMode
	case lastSent:
		return dialog.RankLastSent, nil
	case lastReceived:
		return dialog.RankLastReceived, nil
	default:
		return dialog.RankNone, nil
	}
}

func isTrue(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
