package container

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/config"
	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, Env: "test"},
		Storage: config.StorageConfig{Type: config.StorageMemory},
		JWT:     config.JWTConfig{AccessSecret: "0123456789abcdef0123456789abcdef"},
		Discovery: config.DiscoveryConfig{
			WindowSize:         3,
			ScreenWidth:        390,
			CommitFraction:     0.15,
			SessionIdleTimeout: time.Minute,
		},
		Matching: config.MatchingConfig{LockBackend: config.LockMemory, LockTTL: time.Second},
	}
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (a apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newClients(t *testing.T) (*Container, apiClient, apiClient) {
	t.Helper()
	c, err := NewContainer(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	client := func(userID string) apiClient {
		token, err := c.Auth.IssueToken(userID, time.Hour)
		require.NoError(t, err)
		return apiClient{t: t, handler: c.Handler, token: token}
	}
	return c, client("anna"), client("boris")
}

func onboard(t *testing.T, client apiClient, name string, interests ...string) {
	t.Helper()
	w := client.do(http.MethodPost, "/api/v1/profile/complete-onboarding", map[string]any{
		"display_name": name,
		"bio":          "hello",
		"interests":    interests,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// verify fills in the card fields onboarding leaves empty and grants
// verification, which makes userID a candidate.
func verify(t *testing.T, c *Container, userID string) {
	t.Helper()
	ctx := context.Background()
	p, err := c.repos.profiles.GetByID(ctx, userID)
	require.NoError(t, err)
	birth := time.Date(1995, time.March, 10, 0, 0, 0, 0, time.UTC)
	p.PhotoURL = "https://example.com/" + userID + ".jpg"
	p.Location = "Paris"
	p.Phone = "+33612345678"
	p.BirthDate = &birth
	p.IsVerified = true
	require.NoError(t, c.repos.profiles.Update(ctx, p))
}

func TestContainer_HealthAndAuth(t *testing.T) {
	c, _, _ := newClients(t)
	anonymous := apiClient{t: t, handler: c.Handler}

	assert.Equal(t, http.StatusOK, anonymous.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/api/v1/profile/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/api/v1/discovery", nil).Code)
}

func TestContainer_ProfileEndpoints(t *testing.T) {
	_, anna, boris := newClients(t)

	assert.Equal(t, http.StatusNotFound, anna.do(http.MethodGet, "/api/v1/profile/me", nil).Code)

	onboard(t, anna, "Anna", "go", "chess")
	onboard(t, boris, "Boris", "chess", "hiking")

	w := anna.do(http.MethodPost, "/api/v1/profile/complete-onboarding", map[string]any{"display_name": "Anna"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = anna.do(http.MethodGet, "/api/v1/profile/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Anna", decode(t, w)["display_name"])

	w = anna.do(http.MethodGet, "/api/v1/profile/boris", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"chess"}, decode(t, w)["common_interests"])

	w = anna.do(http.MethodPut, "/api/v1/profile/me", map[string]any{"bio": "updated"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "updated", decode(t, w)["bio"])

	w = anna.do(http.MethodPut, "/api/v1/profile/me", map[string]any{"latitude": 123.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContainer_SwipeToMatch(t *testing.T) {
	c, anna, boris := newClients(t)
	onboard(t, anna, "Anna", "go", "chess")
	onboard(t, boris, "Boris", "chess")

	w := anna.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "anna", "direction": "accept"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = anna.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "nobody", "direction": "accept"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = anna.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "boris", "direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = anna.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "boris", "direction": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decode(t, w)["status"])

	w = anna.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "boris", "direction": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = boris.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "anna", "direction": "right"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "matched", body["status"])
	assert.Equal(t, true, body["is_match"])
	assert.Equal(t, "Anna", body["matched_user"].(map[string]any)["display_name"])

	c.swipeUseCase.WaitNotifications()

	w = anna.do(http.MethodGet, "/api/v1/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var matches []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "boris", matches[0]["partner"].(map[string]any)["id"])
	assert.Equal(t, []any{"chess"}, matches[0]["common_interests"])
	assert.NotEmpty(t, matches[0]["conversation_id"])

	assert.Equal(t, http.StatusBadRequest, anna.do(http.MethodGet, "/api/v1/matches?limit=0", nil).Code)
}

func TestContainer_DiscoveryAndFeed(t *testing.T) {
	c, anna, _ := newClients(t)
	onboard(t, anna, "Anna", "go")

	// onboarded profiles are unverified and never become candidates
	w := anna.do(http.MethodGet, "/api/v1/feed", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, "[]", w.Body.String())

	w = anna.do(http.MethodGet, "/api/v1/feed?age_min=40&age_max=30", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = anna.do(http.MethodGet, "/api/v1/discovery", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "empty", decode(t, w)["state"])
	assert.Equal(t, 1, c.Discovery.Len())

	w = anna.do(http.MethodPost, "/api/v1/discovery/swipe", map[string]any{"direction": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = anna.do(http.MethodPost, "/api/v1/discovery/drag", map[string]any{"dx": 10, "dy": 0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = anna.do(http.MethodPut, "/api/v1/discovery/filter", map[string]any{
		"max_distance_km": 10,
		"age_range":       map[string]int{"min": 30, "max": 20},
		"gender":          "all",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = anna.do(http.MethodPut, "/api/v1/discovery/filter", map[string]any{
		"max_distance_km": 10,
		"age_range":       map[string]int{"min": 20, "max": 30},
		"gender":          "all",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 10.0, decode(t, w)["filter"].(map[string]any)["max_distance_km"])

	w = anna.do(http.MethodDelete, "/api/v1/discovery/filter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50.0, decode(t, w)["filter"].(map[string]any)["max_distance_km"])

	assert.Equal(t, http.StatusOK, anna.do(http.MethodPost, "/api/v1/discovery/reload", nil).Code)
}

func TestContainer_DiscoveryDragAndRelease(t *testing.T) {
	c, anna, boris := newClients(t)
	onboard(t, anna, "Anna", "go")
	onboard(t, boris, "Boris", "go")
	verify(t, c, "boris")

	w := anna.do(http.MethodGet, "/api/v1/discovery", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decode(t, w)
	assert.Equal(t, "populated", snap["state"])
	require.Len(t, snap["window"], 1)
	assert.Equal(t, "boris", snap["window"].([]any)[0].(map[string]any)["id"])

	// below the commit threshold the card springs back
	require.Equal(t, http.StatusOK, anna.do(http.MethodPost, "/api/v1/discovery/drag", map[string]any{"dx": 10, "dy": 5}).Code)
	w = anna.do(http.MethodPost, "/api/v1/discovery/release", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "resetting", decode(t, w)["gesture"])

	gestureIs := func(state string) func() bool {
		return func() bool {
			w := anna.do(http.MethodGet, "/api/v1/discovery", nil)
			return w.Code == http.StatusOK && decode(t, w)["gesture"] == state
		}
	}
	require.Eventually(t, gestureIs("idle"), time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, anna.do(http.MethodPost, "/api/v1/discovery/drag", map[string]any{"dx": 200, "dy": 0}).Code)
	w = anna.do(http.MethodPost, "/api/v1/discovery/release", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "committing", decode(t, w)["gesture"])

	require.Eventually(t, func() bool {
		w := anna.do(http.MethodGet, "/api/v1/discovery", nil)
		return w.Code == http.StatusOK && decode(t, w)["state"] == "empty"
	}, time.Second, 5*time.Millisecond)

	w = anna.do(http.MethodPost, "/api/v1/discovery/release", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	decision, err := c.repos.swipes.GetByPair(context.Background(), "anna", "boris")
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionAccept, decision.Direction)
}

func TestContainer_MatchNotificationOverWebSocket(t *testing.T) {
	c, anna, boris := newClients(t)
	onboard(t, anna, "Anna", "go")
	onboard(t, boris, "Boris", "go")

	srv := httptest.NewServer(c.Handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?access_token=" + anna.token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.Eventually(t, func() bool { return c.Hub.Online("anna") == 1 }, time.Second, 5*time.Millisecond)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)

	w := anna.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "boris", "direction": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = boris.do(http.MethodPost, "/api/v1/swipe", map[string]any{"target_id": "anna", "direction": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, true, decode(t, w)["is_match"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var n domain.Notification
	require.NoError(t, conn.ReadJSON(&n))
	assert.Equal(t, domain.NotificationTypeMatch, n.Type)
	assert.Equal(t, "boris", n.Data["partner_id"])
	assert.NotEmpty(t, n.Data["conversation_id"])
}

func TestContainer_DiscoveryWithoutProfile(t *testing.T) {
	_, anna, _ := newClients(t)

	w := anna.do(http.MethodGet, "/api/v1/discovery", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unable to load", decode(t, w)["error"])
}
