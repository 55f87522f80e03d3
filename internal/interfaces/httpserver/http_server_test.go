package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/dialog-api/internal/config"
	"jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/infrastructure/auth"
	repo "jan-server/services/dialog-api/internal/infrastructure/repository/dialog"
	"jan-server/services/dialog-api/internal/interfaces/httpserver"
	"jan-server/services/dialog-api/internal/interfaces/httpserver/responses"
)

func newTestServer(t *testing.T, ready httpserver.ReadinessCheck) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:      "dialog-api",
		Environment:      "test",
		DevUserHeader:    "X-User-Id",
		MaxMessageLength: 50,
		DefaultPageSize:  20,
		MaxPageSize:      100,
	}
	log := zerolog.Nop()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int64
	store := repo.NewMemoryStoreWithClock(func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second)
	})
	service := dialog.NewService(store.Dialogs(), store.Messages(), dialog.MessagePolicy{MaxLength: cfg.MaxMessageLength}, log)
	validator, err := auth.NewValidator(context.Background(), cfg, log)
	require.NoError(t, err)

	return httpserver.New(cfg, log, service, validator, ready).Handler()
}

func call(t *testing.T, h http.Handler, method, path, user, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestServer_DialogLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	var first, again, reverse responses.DialogView
	require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/v1/dialogs", "alice", `{"user_id":"bob"}`, &first))
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/v1/dialogs", "alice", `{"user_id":"bob"}`, &again))
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/v1/dialogs", "bob", `{"user_id":"alice"}`, &reverse))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.ID, reverse.ID)
	assert.Equal(t, [2]string{"alice", "bob"}, first.Participants)

	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/v1/dialogs", "alice", `{"user_id":"alice"}`, nil))

	messagesPath := fmt.Sprintf("/v1/dialogs/%d/messages", first.ID)
	var m1, m2 responses.MessageView
	require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, messagesPath, "alice", `{"text":"hi"}`, &m1))
	require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, messagesPath, "alice", `{"text":"still there?"}`, &m2))
	assert.Less(t, m1.ID, m2.ID)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, messagesPath, "alice", `{"text":"   "}`, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, messagesPath, "alice", `{"text":"`+strings.Repeat("x", 51)+`"}`, nil))
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPost, messagesPath, "mallory", `{"text":"hey"}`, nil))

	var bobView responses.DialogView
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, fmt.Sprintf("/v1/dialogs/%d", first.ID), "bob", "", &bobView))
	assert.Equal(t, int64(2), bobView.UnreadCount)
	assert.Nil(t, bobView.LastSentAt)
	assert.NotNil(t, bobView.LastReceivedAt)

	var history responses.MessageListResponse
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, messagesPath, "bob", "", &history))
	require.Len(t, history.Data, 2)
	assert.Equal(t, "hi", history.Data[0].Text)
	assert.True(t, history.Data[0].IsRead)
	assert.True(t, history.Data[1].IsRead)

	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, fmt.Sprintf("/v1/dialogs/%d", first.ID), "bob", "", &bobView))
	assert.Zero(t, bobView.UnreadCount)

	var marked responses.MarkReadResponse
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, fmt.Sprintf("/v1/dialogs/%d/read", first.ID), "bob",
		fmt.Sprintf(`{"message_id":%d}`, m2.ID), &marked))
	assert.Zero(t, marked.Updated)

	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/v1/dialogs/999", "bob", "", nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/v1/dialogs", "", "", nil))
}

func TestServer_FavoritesAndRanking(t *testing.T) {
	h := newTestServer(t, nil)

	ids := make(map[string]uint)
	for _, friend := range []string{"f1", "f2", "f3"} {
		var view responses.DialogView
		require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/v1/dialogs", "me", `{"user_id":"`+friend+`"}`, &view))
		ids[friend] = view.ID
	}

	send := func(dialogID uint, sender string) {
		require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost,
			fmt.Sprintf("/v1/dialogs/%d/messages", dialogID), sender, `{"text":"ping"}`, nil))
	}
	send(ids["f2"], "me")
	send(ids["f1"], "f1")
	send(ids["f3"], "me")

	var page responses.DialogListResponse
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/v1/dialogs?filter=last_sent", "me", "", &page))
	require.Len(t, page.Data, 3)
	assert.Equal(t, []uint{ids["f3"], ids["f2"], ids["f1"]}, dialogIDs(page.Data))

	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/v1/dialogs?last_received=true", "me", "", &page))
	assert.Equal(t, ids["f1"], page.Data[0].ID)
	assert.Equal(t, int64(1), page.Data[0].UnreadCount)

	var fav responses.FavoriteResponse
	path := fmt.Sprintf("/v1/dialogs/%d/favorite", ids["f2"])
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPatch, path, "me", "", &fav))
	assert.True(t, fav.IsFavorite)
	assert.True(t, fav.Changed)
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPatch, path, "me", "", &fav))
	assert.True(t, fav.IsFavorite)
	assert.False(t, fav.Changed)

	var other responses.DialogView
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, fmt.Sprintf("/v1/dialogs/%d", ids["f2"]), "f2", "", &other))
	assert.False(t, other.IsFavorite)

	require.Equal(t, http.StatusOK, call(t, h, http.MethodDelete, path, "me", "", &fav))
	assert.False(t, fav.IsFavorite)
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPatch, path, "f1", "", nil))

	var mine responses.MessageListResponse
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/v1/messages?page_size=2", "f1", "", &mine))
	assert.Equal(t, int64(1), mine.Total)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, ids["f1"], mine.Data[0].DialogID)
}

func TestServer_PublicRoutes(t *testing.T) {
	h := newTestServer(t, func(ctx context.Context) error { return errors.New("db down") })

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/healthz", "", "", nil))
	assert.Equal(t, http.StatusServiceUnavailable, call(t, h, http.MethodGet, "/readyz", "", "", nil))
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/health/auth", "", "", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jan_dialog_api_requests_total")
}

func dialogIDs(views []responses.DialogView) []uint {
	out := make([]uint, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}
