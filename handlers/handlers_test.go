package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifetracker/handlers/admin"
	"lifetracker/middleware"
	"lifetracker/realtime"
	"lifetracker/services"
)

const testSecret = "handlers-test-secret-handlers-test"

type testServer struct {
	app   *fiber.App
	store *services.MemoryStore
	hub   *realtime.Hub
}

func newTestServer(t *testing.T, withGame bool) *testServer {
	t.Helper()
	store := services.NewMemoryStore()
	hub := realtime.NewHub(nil)
	engine := services.NewProgressEngine(store, nil, services.WithEmitter(hub))
	games := services.NewGameService(store, nil)
	achievements := services.NewAchievementService(store, nil)
	if withGame {
		require.NoError(t, games.Bootstrap(t.Context(), services.DefaultGame()))
	}

	InitGamificationHandlers(Deps{
		Engine:       engine,
		Leaderboard:  services.NewLeaderboardService(store, 100),
		Achievements: achievements,
		Games:        games,
		History:      store,
		Counters:     store,
		Hub:          hub,
	})
	admin.InitAdminHandlers(admin.Deps{
		Games:        games,
		Achievements: achievements,
		Engine:       engine,
		WeeklyJob:    services.NewWeeklyResetJob(engine, store, nil),
	})

	app := fiber.New()
	RegisterRoutes(app, testSecret, middleware.NewRateLimiter(1000, time.Minute))
	return &testServer{app: app, store: store, hub: hub}
}

func token(t *testing.T, userID string, extra ...string) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": userID, "exp": time.Now().Add(time.Hour).Unix()}
	for _, flag := range extra {
		claims[flag] = true
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestSubmitAction(t *testing.T) {
	s := newTestServer(t, true)
	tok := token(t, "u1")

	code, _ := s.do(t, "POST", "/api/gamification/actions", "", map[string]string{"userId": "u1", "action": "habit_completed"})
	assert.Equal(t, 401, code)

	code, body := s.do(t, "POST", "/api/gamification/actions", tok, map[string]string{"userId": "u1", "action": "habit_completed"})
	require.Equal(t, 200, code, body)
	delta := body["delta"].(map[string]interface{})
	assert.Equal(t, float64(10), delta["pointsAwarded"])
	assert.Equal(t, float64(10), delta["newPosition"])

	code, _ = s.do(t, "POST", "/api/gamification/actions", tok, map[string]string{"userId": "u2", "action": "habit_completed"})
	assert.Equal(t, 403, code)

	code, _ = s.do(t, "POST", "/api/gamification/actions", tok, map[string]string{"userId": "u1"})
	assert.Equal(t, 400, code)

	code, _ = s.do(t, "POST", "/api/gamification/actions", tok, map[string]interface{}{
		"userId":   "u1",
		"action":   "habit_completed",
		"metadata": map[string]interface{}{"location": map[string]float64{"lat": 120, "lng": 0}},
	})
	assert.Equal(t, 400, code)

	svc := token(t, "feed", "is_service")
	code, _ = s.do(t, "POST", "/api/gamification/actions", svc, map[string]string{"userId": "u2", "action": "goal_reached"})
	assert.Equal(t, 200, code)
}

func TestSubmitAction_NoActiveGame(t *testing.T) {
	s := newTestServer(t, false)

	code, body := s.do(t, "POST", "/api/gamification/actions", token(t, "u1"), map[string]string{"userId": "u1", "action": "habit_completed"})
	assert.Equal(t, 409, code)
	assert.Equal(t, "gamification disabled", body["error"])
	assert.Equal(t, false, body["success"])
}

func TestGetProgress(t *testing.T) {
	s := newTestServer(t, true)
	tok := token(t, "u1")

	code, body := s.do(t, "GET", "/api/gamification/progress/u1", tok, nil)
	require.Equal(t, 200, code)
	p := body["progress"].(map[string]interface{})
	assert.Equal(t, false, p["hasProfile"])
	assert.Equal(t, float64(1), p["level"])
	assert.Equal(t, float64(100), p["pointsToNextLevel"])

	s.do(t, "POST", "/api/gamification/actions", tok, map[string]string{"userId": "u1", "action": "goal_reached"})
	code, body = s.do(t, "GET", "/api/gamification/progress/u1", tok, nil)
	require.Equal(t, 200, code)
	p = body["progress"].(map[string]interface{})
	assert.Equal(t, true, p["hasProfile"])
	assert.Equal(t, float64(50), p["totalPoints"])
	assert.Equal(t, float64(50), p["todayPoints"])

	code, _ = s.do(t, "GET", "/api/gamification/progress/u2", tok, nil)
	assert.Equal(t, 403, code)

	code, body = s.do(t, "GET", "/api/gamification/progress/u1/transactions?limit=500", tok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(200), body["limit"])
	assert.Len(t, body["transactions"], 1)
}

func TestLeaderboardRoutes(t *testing.T) {
	s := newTestServer(t, true)
	svc := token(t, "feed", "is_service")
	for _, id := range []string{"a", "b", "c"} {
		s.do(t, "POST", "/api/gamification/actions", svc, map[string]string{"userId": id, "action": "habit_completed"})
	}
	s.do(t, "POST", "/api/gamification/actions", svc, map[string]string{"userId": "b", "action": "goal_reached"})
	tok := token(t, "a")

	code, body := s.do(t, "GET", "/api/gamification/leaderboard?scope=WEEKLY&limit=2", tok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "WEEKLY", body["scope"])
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "b", first["userId"])
	assert.Equal(t, float64(1), first["rank"])

	code, _ = s.do(t, "GET", "/api/gamification/leaderboard?scope=MONTHLY", tok, nil)
	assert.Equal(t, 400, code)
	code, _ = s.do(t, "GET", "/api/gamification/leaderboard?limit=0", tok, nil)
	assert.Equal(t, 400, code)

	code, body = s.do(t, "GET", "/api/gamification/leaderboard/user/c", tok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(3), body["total"])

	code, _ = s.do(t, "GET", "/api/gamification/leaderboard/user/nobody", tok, nil)
	assert.Equal(t, 404, code)
}

func TestCountersAndAchievements(t *testing.T) {
	s := newTestServer(t, true)
	adminTok := token(t, "root", "is_admin")
	svc := token(t, "feed", "is_service")
	user := token(t, "u1")

	code, body := s.do(t, "POST", "/api/admin/achievements/initialize", adminTok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(7), body["count"])

	code, _ = s.do(t, "PUT", "/api/gamification/counters/u1", user, map[string]int{"streak": 7})
	assert.Equal(t, 403, code)
	code, _ = s.do(t, "PUT", "/api/gamification/counters/u1", svc, map[string]int{"streak": -1})
	assert.Equal(t, 400, code)
	code, _ = s.do(t, "PUT", "/api/gamification/counters/u1", svc, map[string]int{"streak": 7, "habitCount": 1})
	require.Equal(t, 200, code)

	code, body = s.do(t, "POST", "/api/gamification/actions", user, map[string]string{"userId": "u1", "action": "habit_completed"})
	require.Equal(t, 200, code)
	unlocked := body["delta"].(map[string]interface{})["unlockedAchievements"]
	assert.Equal(t, []interface{}{"first_habit", "streak_7"}, unlocked)

	code, body = s.do(t, "GET", "/api/gamification/achievements/user/u1", user, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(2), body["unlockedCount"])
	assert.Equal(t, float64(7), body["totalCount"])

	code, body = s.do(t, "GET", "/api/gamification/achievements", user, nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["achievements"], 7)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, true)
	adminTok := token(t, "root", "is_admin")

	code, _ := s.do(t, "GET", "/api/admin/games", token(t, "u1"), nil)
	assert.Equal(t, 403, code)

	code, _ = s.do(t, "POST", "/api/admin/games", adminTok, map[string]interface{}{"version": 2, "rows": 0, "cols": 3})
	assert.Equal(t, 400, code)

	code, body := s.do(t, "POST", "/api/admin/games", adminTok, map[string]interface{}{
		"version":      2,
		"rows":         2,
		"cols":         2,
		"scoringRules": []map[string]interface{}{{"action": "habit_completed", "points": 1}},
	})
	require.Equal(t, 201, code, body)
	created := body["game"].(map[string]interface{})
	assert.Equal(t, false, created["isActive"])

	code, _ = s.do(t, "POST", "/api/admin/games", adminTok, map[string]interface{}{"version": 2, "rows": 1, "cols": 1})
	assert.Equal(t, 409, code)

	code, _ = s.do(t, "POST", "/api/admin/games/abc/activate", adminTok, nil)
	assert.Equal(t, 400, code)
	code, _ = s.do(t, "POST", "/api/admin/games/2/activate", adminTok, nil)
	require.Equal(t, 200, code)

	code, body = s.do(t, "GET", "/api/gamification/game", token(t, "u1"), nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(2), body["game"].(map[string]interface{})["version"])

	code, _ = s.do(t, "POST", "/api/admin/achievements", adminTok, map[string]interface{}{
		"achievementId": "night_owl",
		"name":          "Night Owl",
		"criterion":     map[string]interface{}{"kind": "ROUTINE_COUNT", "threshold": 3},
	})
	assert.Equal(t, 201, code)
	code, _ = s.do(t, "POST", "/api/admin/achievements", adminTok, map[string]interface{}{
		"achievementId": "bad",
		"name":          "Bad",
		"criterion":     map[string]interface{}{"kind": "LOGINS", "threshold": 3},
	})
	assert.Equal(t, 400, code)
}

func TestTriggerWeeklyReset(t *testing.T) {
	s := newTestServer(t, true)
	adminTok := token(t, "root", "is_admin")
	s.do(t, "POST", "/api/gamification/actions", token(t, "u1"), map[string]string{"userId": "u1", "action": "habit_completed"})

	code, body := s.do(t, "POST", "/api/admin/weekly-reset", adminTok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["ran"])
	assert.Equal(t, float64(1), body["usersReset"])

	code, body = s.do(t, "POST", "/api/admin/weekly-reset", adminTok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, false, body["ran"])

	s.do(t, "POST", "/api/gamification/actions", token(t, "u1"), map[string]string{"userId": "u1", "action": "habit_completed"})
	code, body = s.do(t, "POST", "/api/admin/weekly-reset?force=true", adminTok, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["ran"])
	assert.Equal(t, float64(1), body["usersReset"])

	p, err := s.store.GetProgress(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.WeeklyPoints)
	assert.Equal(t, 20, p.TotalPoints)
}

func TestActionEventsReachHub(t *testing.T) {
	s := newTestServer(t, true)
	sub := s.hub.Subscribe("u1")
	defer sub.Close()

	code, _ := s.do(t, "POST", "/api/gamification/actions", token(t, "u1"), map[string]string{"userId": "u1", "action": "habit_completed"})
	require.Equal(t, 200, code)

	select {
	case ev := <-sub.Events:
		assert.Equal(t, services.EventProgress, ev.Type)
		assert.Equal(t, 10, ev.Delta.PointsAwarded)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}
