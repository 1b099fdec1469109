package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/terraincognita07/innercalm/internal/models"
)

func ptr[T any](value T) *T {
	return &value
}

func validSurveyInput(mood int) MoodSurveyInput {
	return MoodSurveyInput{
		SleepHours:        ptr(7.0),
		Trained:           ptr(true),
		Mood:              ptr(mood),
		StressLevel:       ptr(2),
		WaterLiters:       ptr(2.5),
		CaffeineCups:      ptr(1),
		SocialInteraction: ptr(true),
		ScreenHours:       ptr(4.0),
		AteHealthy:        ptr(true),
		SpentTimeOutside:  ptr(false),
		Meditated:         ptr(true),
		WorkStudyHours:    ptr(8.0),
		EnoughSleepWeek:   ptr(true),
		PhysicalTiredness: ptr(2),
		MentalTiredness:   ptr(2),
		MotivationLevel:   ptr(4),
		SuicidalThoughts:  ptr(false),
	}
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (clock *manualClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *manualClock) Set(now time.Time) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = now
}

type moodRecordStoreStub struct {
	mu        sync.Mutex
	records   []models.MoodRecord
	insertErr error
	findErr   error
	listErr   error
	listDelay time.Duration
	inserts   int
}

func (stub *moodRecordStoreStub) Insert(_ context.Context, record *models.MoodRecord) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.insertErr != nil {
		return stub.insertErr
	}
	for _, existing := range stub.records {
		if existing.ID == record.ID {
			return errors.New("duplicate id")
		}
	}
	stub.records = append(stub.records, *record)
	stub.inserts++
	return nil
}

func (stub *moodRecordStoreStub) FindLatestByOwner(_ context.Context, ownerID uint) (models.MoodRecord, bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.findErr != nil {
		return models.MoodRecord{}, false, stub.findErr
	}
	owned := stub.ownedLocked(ownerID)
	if len(owned) == 0 {
		return models.MoodRecord{}, false, nil
	}
	return owned[0], true, nil
}

func (stub *moodRecordStoreStub) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.MoodRecord, error) {
	if stub.listDelay > 0 {
		select {
		case <-time.After(stub.listDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	owned := stub.ownedLocked(ownerID)
	if limit > 0 && len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (stub *moodRecordStoreStub) ownedLocked(ownerID uint) []models.MoodRecord {
	owned := make([]models.MoodRecord, 0)
	for _, record := range stub.records {
		if record.OwnerID == ownerID {
			owned = append(owned, record)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned
}

func (stub *moodRecordStoreStub) insertCount() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.inserts
}

type classifierStub struct {
	result Classification
	err    error
	delay  time.Duration
	block  bool
	calls  int
	mu     sync.Mutex
	prev   *models.MoodRecord
}

func (stub *classifierStub) Classify(ctx context.Context, _ models.MoodRecord, previous *models.MoodRecord) (Classification, error) {
	stub.mu.Lock()
	stub.calls++
	stub.prev = previous
	stub.mu.Unlock()

	if stub.block {
		// Ignores ctx on purpose to prove the pipeline bounds the call itself.
		time.Sleep(time.Second)
		return stub.result, nil
	}
	if stub.delay > 0 {
		select {
		case <-time.After(stub.delay):
		case <-ctx.Done():
			return Classification{}, ctx.Err()
		}
	}
	return stub.result, stub.err
}

func recordAt(id string, ownerID uint, createdAt time.Time) models.MoodRecord {
	return models.MoodRecord{ID: id, OwnerID: ownerID, CreatedAt: createdAt, Mood: 3}
}
