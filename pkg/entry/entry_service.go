package entry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/balanza/balanza/internal/event_bus"
	"github.com/balanza/balanza/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, draft Draft) (EntrySeries, error)
	List(ctx context.Context) ([]EntrySeries, error)
	Get(ctx context.Context, id int64) (EntrySeries, error)
	Update(ctx context.Context, id int64, scope Scope, targetDate *time.Time, draft Draft) (UpdateResult, error)
	Delete(ctx context.Context, id int64, scope Scope, targetDate *time.Time) (DeleteResult, error)
}

// UpdateResult is the typed outcome of a scoped edit. Exactly one shape is
// populated per scope: Exception for occurrence, Original+NewSeries for future,
// Updated for entire.
type UpdateResult struct {
	Updated   *EntrySeries
	Original  *EntrySeries
	NewSeries *EntrySeries
	Exception *SeriesException
}

// DeleteResult is the typed outcome of a scoped delete.
type DeleteResult struct {
	Scope            Scope
	SeriesDeleted    bool
	ExceptionCreated bool
	Exception        *SeriesException
	Shortened        *EntrySeries
}

// ServiceImpl resolves scoped edit/delete requests against a series and its
// exceptions. Structural mutations are serialized per series id so that two
// concurrent future-scope edits cannot double-split a series.
type ServiceImpl struct {
	repo Repo
	bus  *event_bus.EventBus

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewService(repo Repo, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{
		repo:  repo,
		bus:   bus,
		locks: make(map[int64]*sync.Mutex),
	}
}

// lockSeries acquires the single-writer lock for a series id and returns the
// unlock function.
func (s *ServiceImpl) lockSeries(id int64) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (s *ServiceImpl) Create(ctx context.Context, draft Draft) (EntrySeries, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return EntrySeries{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateDraft(draft); err != nil {
		return EntrySeries{}, err
	}

	series, err := s.repo.StoreSeries(ctx, userId, seriesFromDraft(draft))
	if err != nil {
		return EntrySeries{}, err
	}

	s.publishMutation(ctx, event_bus.EntryCreated, series, "", 0)
	return series, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]EntrySeries, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAllSeries(ctx, userId)
}

func (s *ServiceImpl) Get(ctx context.Context, id int64) (EntrySeries, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return EntrySeries{}, fmt.Errorf("failed to get current user: %w", err)
	}
	series, err := s.repo.GetSeries(ctx, userId, id)
	if err != nil {
		return EntrySeries{}, err
	}
	if series == nil {
		return EntrySeries{}, ErrSeriesNotFound
	}
	return *series, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id int64, scope Scope, targetDate *time.Time, draft Draft) (UpdateResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if scope.RequiresDate() && targetDate == nil {
		return UpdateResult{}, ValidationError{Field: "date", Reason: "date required for scope " + string(scope)}
	}

	unlock := s.lockSeries(id)
	defer unlock()

	series, err := s.repo.GetSeries(ctx, userId, id)
	if err != nil {
		return UpdateResult{}, err
	}
	if series == nil {
		return UpdateResult{}, ErrSeriesNotFound
	}
	if scope.RequiresDate() && !series.ActiveOn(*targetDate) {
		return UpdateResult{}, ConflictError{Reason: "cannot edit outside series range"}
	}

	switch scope {
	case ScopeOccurrence:
		return s.updateOccurrence(ctx, userId, *series, *targetDate, draft)
	case ScopeFuture:
		return s.updateFuture(ctx, userId, *series, *targetDate, draft)
	case ScopeEntire:
		return s.updateEntire(ctx, userId, *series, draft)
	}
	return UpdateResult{}, ValidationError{Field: "scope", Reason: "must be one of occurrence, future, entire"}
}

// updateOccurrence records an override exception for a single date. The series
// itself is not touched.
func (s *ServiceImpl) updateOccurrence(ctx context.Context, userId int, series EntrySeries, targetDate time.Time, draft Draft) (UpdateResult, error) {
	if err := validateOverrideFields(draft.Title, draft.Description, draft.Amount); err != nil {
		return UpdateResult{}, err
	}

	exception, err := s.repo.StoreException(ctx, userId, SeriesException{
		SeriesID:    series.ID,
		Date:        targetDate,
		Type:        ExceptionOverride,
		Title:       draft.Title,
		Description: draft.Description,
		Amount:      draft.Amount,
	})
	if err != nil {
		return UpdateResult{}, err
	}

	s.publishMutation(ctx, event_bus.EntryUpdated, series, ScopeOccurrence, 0)
	return UpdateResult{Exception: &exception}, nil
}

// updateFuture splits the series at targetDate: the original is shortened to
// end the day before, and a successor series carrying the new definition starts
// at targetDate. Both writes happen in a single transaction so a failure cannot
// leave a shortened series without its successor.
func (s *ServiceImpl) updateFuture(ctx context.Context, userId int, series EntrySeries, targetDate time.Time, draft Draft) (UpdateResult, error) {
	if targetDate.Equal(series.StartDate) {
		return UpdateResult{}, ConflictError{Reason: "cannot split a series at its start date"}
	}

	draft.StartDate = targetDate
	if err := validateDraft(draft); err != nil {
		return UpdateResult{}, err
	}

	newSeries := seriesFromDraft(draft)
	newSeries.ParentSeriesID = &series.ID

	var shortened *EntrySeries
	var created EntrySeries
	err := s.repo.WithTransaction(ctx, func(repo Repo) error {
		var err error
		shortened, err = repo.ShortenSeries(ctx, userId, series.ID, targetDate.AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		if shortened == nil {
			return ErrSeriesNotFound
		}
		created, err = repo.StoreSeries(ctx, userId, newSeries)
		return err
	})
	if err != nil {
		return UpdateResult{}, err
	}

	s.publishMutation(ctx, event_bus.EntryUpdated, series, ScopeFuture, created.ID)
	return UpdateResult{Original: shortened, NewSeries: &created}, nil
}

// updateEntire overwrites all mutable fields of the series in place. Existing
// exceptions keep their dates; ones no longer visited by the new recurrence
// pattern simply become inert.
func (s *ServiceImpl) updateEntire(ctx context.Context, userId int, series EntrySeries, draft Draft) (UpdateResult, error) {
	if err := validateDraft(draft); err != nil {
		return UpdateResult{}, err
	}

	updated := seriesFromDraft(draft)
	updated.ID = series.ID
	updated.ParentSeriesID = series.ParentSeriesID
	result, err := s.repo.UpdateSeries(ctx, userId, updated)
	if err != nil {
		return UpdateResult{}, err
	}
	if result == nil {
		return UpdateResult{}, ErrSeriesNotFound
	}

	s.publishMutation(ctx, event_bus.EntryUpdated, *result, ScopeEntire, 0)
	return UpdateResult{Updated: result}, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int64, scope Scope, targetDate *time.Time) (DeleteResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if scope.RequiresDate() && targetDate == nil {
		return DeleteResult{}, ValidationError{Field: "date", Reason: "date required for scope " + string(scope)}
	}

	unlock := s.lockSeries(id)
	defer unlock()

	series, err := s.repo.GetSeries(ctx, userId, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if series == nil {
		return DeleteResult{}, ErrSeriesNotFound
	}
	if scope.RequiresDate() && !series.ActiveOn(*targetDate) {
		return DeleteResult{}, ConflictError{Reason: "cannot delete outside series range"}
	}

	switch scope {
	case ScopeOccurrence:
		exception, err := s.repo.StoreException(ctx, userId, SeriesException{
			SeriesID: series.ID,
			Date:     *targetDate,
			Type:     ExceptionSkip,
		})
		if err != nil {
			return DeleteResult{}, err
		}
		s.publishMutation(ctx, event_bus.EntryDeleted, *series, ScopeOccurrence, 0)
		return DeleteResult{Scope: scope, ExceptionCreated: true, Exception: &exception}, nil

	case ScopeFuture:
		if targetDate.Equal(series.StartDate) {
			return DeleteResult{}, ConflictError{Reason: "cannot truncate a series at its start date"}
		}
		shortened, err := s.repo.ShortenSeries(ctx, userId, series.ID, targetDate.AddDate(0, 0, -1))
		if err != nil {
			return DeleteResult{}, err
		}
		if shortened == nil {
			return DeleteResult{}, ErrSeriesNotFound
		}
		s.publishMutation(ctx, event_bus.EntryDeleted, *series, ScopeFuture, 0)
		return DeleteResult{Scope: scope, Shortened: shortened}, nil

	case ScopeEntire:
		deleted, err := s.repo.DeleteSeries(ctx, userId, series.ID)
		if err != nil {
			return DeleteResult{}, err
		}
		if !deleted {
			log.Warnf("entry series not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
			return DeleteResult{}, ErrSeriesNotFound
		}
		s.publishMutation(ctx, event_bus.EntryDeleted, *series, ScopeEntire, 0)
		return DeleteResult{Scope: scope, SeriesDeleted: true}, nil
	}
	return DeleteResult{}, ValidationError{Field: "scope", Reason: "must be one of occurrence, future, entire"}
}

func seriesFromDraft(draft Draft) EntrySeries {
	return EntrySeries{
		EntryType:      draft.EntryType,
		RecurrenceType: draft.RecurrenceType,
		Title:          draft.Title,
		Description:    draft.Description,
		Amount:         draft.Amount,
		StartDate:      draft.StartDate,
		EndDate:        draft.EndDate,
		Weekday:        draft.Weekday,
		DayOfMonth:     draft.DayOfMonth,
	}
}

// publishMutation emits a usage analytics event. Analytics never fail the
// primary operation.
func (s *ServiceImpl) publishMutation(ctx context.Context, eventType event_bus.EventType, series EntrySeries, scope Scope, splitSeriesId int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event_bus.NewEvent(ctx, eventType, event_bus.EntryMutation{
		SeriesId:       series.ID,
		EntryType:      string(series.EntryType),
		RecurrenceType: string(series.RecurrenceType),
		Scope:          string(scope),
		SplitSeriesId:  splitSeriesId,
	}))
}
