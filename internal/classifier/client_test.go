package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/innercalm/internal/models"
	"github.com/terraincognita07/innercalm/internal/services"
)

func sampleRecord(mood int) models.MoodRecord {
	return models.MoodRecord{
		ID:                "rec-1",
		OwnerID:           1,
		Mood:              mood,
		StressLevel:       3,
		PhysicalTiredness: 2,
		MentalTiredness:   2,
		MotivationLevel:   3,
		SleepHours:        6.5,
		WaterLiters:       1.5,
		Trained:           true,
	}
}

func TestClassifySuccessSendsPreviousData(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction":"Moderate","confidence":0.82,"mood_state":"Struggling","mood_level":2,"improvements":["Increased sleep hours"],"status":"success"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second, nil)
	previous := sampleRecord(3)
	result, err := client.Classify(context.Background(), sampleRecord(2), &previous)
	require.NoError(t, err)

	assert.Equal(t, "Moderate", result.Prediction)
	assert.InDelta(t, 0.82, result.Confidence, 1e-9)
	assert.Equal(t, 2, result.MoodLevel)
	assert.True(t, result.Severe())
	assert.Equal(t, []string{"Increased sleep hours"}, result.Improvements)

	assert.EqualValues(t, 2, received["mood"])
	assert.EqualValues(t, 6.5, received["sleep_hours"])
	previousData, ok := received["previous_data"].(map[string]any)
	require.True(t, ok, "expected previous_data object")
	assert.EqualValues(t, 3, previousData["mood"])
}

func TestClassifyOmitsPreviousDataWhenAbsent(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction":"Good","confidence":0.9,"mood_state":"Positive","mood_level":4,"status":"success"}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL, time.Second, nil).Classify(context.Background(), sampleRecord(4), nil)
	require.NoError(t, err)
	assert.False(t, result.Severe())
	_, hasPrevious := received["previous_data"]
	assert.False(t, hasPrevious)
}

func TestClassifyServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded","status":"error"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second, nil).Classify(context.Background(), sampleRecord(3), nil)
	assert.ErrorIs(t, err, services.ErrClassificationUnavailable)
}

func TestClassifyErrorStatusBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","error":"bad features"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second, nil).Classify(context.Background(), sampleRecord(3), nil)
	assert.ErrorIs(t, err, services.ErrClassificationUnavailable)
}

func TestClassifyTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	startedAt := time.Now()
	_, err := NewClient(server.URL, 50*time.Millisecond, nil).Classify(context.Background(), sampleRecord(3), nil)
	assert.ErrorIs(t, err, services.ErrClassificationUnavailable)
	assert.Less(t, time.Since(startedAt), time.Second)
}

func TestClassifyDisabledWithoutURL(t *testing.T) {
	client := NewClient("  ", time.Second, nil)
	assert.False(t, client.Enabled())

	_, err := client.Classify(context.Background(), sampleRecord(3), nil)
	assert.ErrorIs(t, err, services.ErrClassificationUnavailable)
}
