package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/innercalm/internal/db"
	"github.com/terraincognita07/innercalm/internal/models"
	"github.com/terraincognita07/innercalm/internal/services"
	"gorm.io/gorm"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(delta)
}

type testServer struct {
	app      *fiber.App
	database *gorm.DB
	clock    *testClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "innercalm-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	repositories := db.NewRepositories(database)
	handler, err := NewHandler(Dependencies{
		Submissions: services.NewSubmissionService(repositories.MoodRecords, nil, nil, services.SubmissionOptions{
			CooldownWindow: 12 * time.Hour,
			Clock:          clock,
		}),
		History:   services.NewHistoryService(repositories.MoodRecords, time.Second, nil),
		Stats:     services.NewAdminStatsService(repositories.MoodRecords),
		Clock:     clock,
		SecretKey: testSecretKey,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return &testServer{app: app, database: database, clock: clock}
}

func signTestToken(t *testing.T, userID uint, role string, expiresAt time.Time) string {
	t.Helper()

	claims := authClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecretKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (server *testServer) tokenFor(t *testing.T, userID uint, role string) string {
	return signTestToken(t, userID, role, server.clock.Now().Add(24*time.Hour))
}

func (server *testServer) do(t *testing.T, method string, path string, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	switch value := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := server.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}

	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s decode body failed: %v (%s)", method, path, err, raw)
		}
	}
	return response.StatusCode, decoded
}

func surveyPayload(mood int) map[string]any {
	return map[string]any{
		"sleep_hours":        7.5,
		"trained":            true,
		"mood":               mood,
		"stress_level":       2,
		"water_liters":       2.0,
		"caffeine_cups":      1,
		"social_interaction": true,
		"screen_hours":       5.0,
		"ate_healthy":        true,
		"spent_time_outside": false,
		"meditated":          false,
		"work_study_hours":   8.0,
		"enough_sleep_week":  true,
		"physical_tiredness": 2,
		"mental_tiredness":   3,
		"motivation_level":   4,
		"suicidal_thoughts":  false,
	}
}

func seedMoodRecord(t *testing.T, database *gorm.DB, id string, ownerID uint, createdAt time.Time, mood int) {
	t.Helper()

	record := models.MoodRecord{
		ID:                id,
		OwnerID:           ownerID,
		CreatedAt:         createdAt.UTC(),
		Mood:              mood,
		StressLevel:       3,
		PhysicalTiredness: 3,
		MentalTiredness:   3,
		MotivationLevel:   3,
		SleepHours:        7,
		WaterLiters:       2,
		Critical:          models.IsCriticalMood(mood),
	}
	if err := database.Create(&record).Error; err != nil {
		t.Fatalf("seed mood record: %v", err)
	}
}
