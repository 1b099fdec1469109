package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/innercalm/internal/models"
	"go.uber.org/zap"
)

const DefaultClassifierTimeout = 3 * time.Second

type SubmissionRecordStore interface {
	Insert(ctx context.Context, record *models.MoodRecord) error
	FindLatestByOwner(ctx context.Context, ownerID uint) (models.MoodRecord, bool, error)
}

type SubmissionResult struct {
	Record          models.MoodRecord
	Analysis        *Classification
	Suggestions     []Suggestion
	NextAvailableAt time.Time
}

type SubmissionOptions struct {
	CooldownWindow    time.Duration
	ClassifierTimeout time.Duration
	Clock             Clock
	Logger            *zap.Logger
	NewID             func() string
}

type SubmissionService struct {
	records           SubmissionRecordStore
	locker            OwnerLocker
	classifier        Classifier
	cooldown          time.Duration
	classifierTimeout time.Duration
	clock             Clock
	logger            *zap.Logger
	newID             func() string
}

func NewSubmissionService(records SubmissionRecordStore, locker OwnerLocker, classifier Classifier, options SubmissionOptions) *SubmissionService {
	if locker == nil {
		locker = NewLocalOwnerLocker()
	}
	if classifier == nil {
		classifier = DisabledClassifier{}
	}
	if options.CooldownWindow <= 0 {
		options.CooldownWindow = DefaultCooldownWindow
	}
	if options.ClassifierTimeout <= 0 {
		options.ClassifierTimeout = DefaultClassifierTimeout
	}
	if options.Clock == nil {
		options.Clock = SystemClock{}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}

	return &SubmissionService{
		records:           records,
		locker:            locker,
		classifier:        classifier,
		cooldown:          options.CooldownWindow,
		classifierTimeout: options.ClassifierTimeout,
		clock:             options.Clock,
		logger:            options.Logger,
		newID:             options.NewID,
	}
}

func (service *SubmissionService) CooldownWindow() time.Duration {
	return service.cooldown
}

// CheckEligibility is the read-only pre-check offered to clients. Submit
// always evaluates the gate again.
func (service *SubmissionService) CheckEligibility(ctx context.Context, ownerID uint) (Eligibility, error) {
	latest, found, err := service.records.FindLatestByOwner(ctx, ownerID)
	if err != nil {
		return Eligibility{}, &StoreError{Op: "load latest submission", Err: err}
	}
	return EvaluateEligibility(lastSubmissionTime(latest, found), service.clock.Now(), service.cooldown), nil
}

// Submit validates, gates, classifies and stores one survey. The gate check
// and the insert run while holding the owner's lock.
func (service *SubmissionService) Submit(ctx context.Context, ownerID uint, input MoodSurveyInput) (SubmissionResult, error) {
	startedAt := time.Now()
	defer func() {
		submissionDuration.Observe(time.Since(startedAt).Seconds())
	}()

	result, err := service.submit(ctx, ownerID, input)
	submissionsTotal.WithLabelValues(submissionOutcome(err)).Inc()
	return result, err
}

func (service *SubmissionService) submit(ctx context.Context, ownerID uint, input MoodSurveyInput) (SubmissionResult, error) {
	if ownerID == 0 {
		return SubmissionResult{}, &ValidationError{Fields: []FieldError{{Field: "owner_id", Rule: "required"}}}
	}

	draft, err := ValidateMoodSurvey(input)
	if err != nil {
		return SubmissionResult{}, err
	}

	unlock, err := service.locker.Lock(ctx, ownerID)
	if err != nil {
		return SubmissionResult{}, &StoreError{Op: "lock owner submissions", Err: err}
	}
	defer unlock()

	latest, found, err := service.records.FindLatestByOwner(ctx, ownerID)
	if err != nil {
		return SubmissionResult{}, &StoreError{Op: "load latest submission", Err: err}
	}

	now := service.clock.Now().UTC()
	decision := EvaluateEligibility(lastSubmissionTime(latest, found), now, service.cooldown)
	if !decision.Allowed {
		service.logger.Info("mood submission rejected by cooldown",
			zap.Uint("owner_id", ownerID),
			zap.Time("next_available_at", *decision.NextAvailableAt),
		)
		return SubmissionResult{}, &CooldownError{NextAvailableAt: *decision.NextAvailableAt}
	}

	record := draft
	record.ID = service.newID()
	record.OwnerID = ownerID
	record.CreatedAt = now
	record.Critical = models.IsCriticalMood(record.Mood)

	var previous *models.MoodRecord
	if found {
		previous = &latest
	}
	analysis := service.classify(ctx, record, previous)
	if analysis != nil && analysis.Severe() {
		record.Critical = true
	}

	if err := service.records.Insert(ctx, &record); err != nil {
		service.logger.Error("mood submission insert failed",
			zap.Uint("owner_id", ownerID),
			zap.Error(err),
		)
		return SubmissionResult{}, &StoreError{Op: "insert mood record", Err: err}
	}

	service.logger.Info("mood submission accepted",
		zap.Uint("owner_id", ownerID),
		zap.String("record_id", record.ID),
		zap.Bool("critical", record.Critical),
		zap.Bool("analysis_available", analysis != nil),
	)

	return SubmissionResult{
		Record:          record,
		Analysis:        analysis,
		Suggestions:     BuildSuggestions(record),
		NextAvailableAt: record.CreatedAt.Add(service.cooldown),
	}, nil
}

// classify returns nil when the scoring service is unavailable or slow.
// The caller then keeps the heuristic critical flag.
func (service *SubmissionService) classify(ctx context.Context, record models.MoodRecord, previous *models.MoodRecord) *Classification {
	classifyCtx, cancel := context.WithTimeout(ctx, service.classifierTimeout)
	defer cancel()

	type classifyOutcome struct {
		classification Classification
		err            error
	}
	done := make(chan classifyOutcome, 1)
	go func() {
		classification, err := service.classifier.Classify(classifyCtx, record, previous)
		done <- classifyOutcome{classification: classification, err: err}
	}()

	var outcome classifyOutcome
	select {
	case outcome = <-done:
	case <-classifyCtx.Done():
		outcome.err = classifyCtx.Err()
	}

	if err := outcome.err; err != nil {
		classificationFallbacksTotal.Inc()
		service.logger.Warn("mood classification unavailable, using heuristic",
			zap.Uint("owner_id", record.OwnerID),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			zap.Error(err),
		)
		return nil
	}
	return &outcome.classification
}

func lastSubmissionTime(latest models.MoodRecord, found bool) *time.Time {
	if !found {
		return nil
	}
	createdAt := latest.CreatedAt
	return &createdAt
}

func submissionOutcome(err error) string {
	var validationErr *ValidationError
	var cooldownErr *CooldownError
	switch {
	case err == nil:
		return outcomeAccepted
	case errors.As(err, &validationErr):
		return outcomeInvalid
	case errors.As(err, &cooldownErr):
		return outcomeCooldown
	default:
		return outcomeStoreError
	}
}
