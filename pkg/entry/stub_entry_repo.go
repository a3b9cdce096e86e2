package entry

import (
	"context"
	"sync"
	"time"
)

// RepoStub is an in-memory Repo used by service tests.
type RepoStub struct {
	mu              sync.Mutex
	series          map[int64]EntrySeries
	exceptions      map[int64]map[string]SeriesException // seriesId -> date -> exception
	nextSeriesId    int64
	nextExceptionId int64
	now             time.Time
}

func NewRepoStub() *RepoStub {
	return &RepoStub{
		series:          make(map[int64]EntrySeries),
		exceptions:      make(map[int64]map[string]SeriesException),
		nextSeriesId:    1,
		nextExceptionId: 1,
		now:             time.Now().UTC(),
	}
}

const stubDateLayout = "2006-01-02"

func (r *RepoStub) WithTransaction(ctx context.Context, fn func(repo Repo) error) error {
	r.mu.Lock()
	// Snapshot current state for rollback
	originalSeries := make(map[int64]EntrySeries, len(r.series))
	for k, v := range r.series {
		originalSeries[k] = v
	}
	originalExceptions := make(map[int64]map[string]SeriesException, len(r.exceptions))
	for k, v := range r.exceptions {
		inner := make(map[string]SeriesException, len(v))
		for dk, dv := range v {
			inner[dk] = dv
		}
		originalExceptions[k] = inner
	}
	originalNextSeriesId := r.nextSeriesId
	originalNextExceptionId := r.nextExceptionId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.series = originalSeries
		r.exceptions = originalExceptions
		r.nextSeriesId = originalNextSeriesId
		r.nextExceptionId = originalNextExceptionId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepoStub) StoreSeries(ctx context.Context, userId int, series EntrySeries) (EntrySeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	series.ID = r.nextSeriesId
	r.nextSeriesId++
	series.UserID = userId
	series.CreatedAt = r.now
	series.UpdatedAt = r.now
	r.series[series.ID] = series
	return series, nil
}

func (r *RepoStub) GetSeries(ctx context.Context, userId int, id int64) (*EntrySeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	series, ok := r.series[id]
	if !ok || series.UserID != userId {
		return nil, nil
	}
	return &series, nil
}

func (r *RepoStub) GetAllSeries(ctx context.Context, userId int) ([]EntrySeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]EntrySeries, 0, len(r.series))
	for _, series := range r.series {
		if series.UserID == userId {
			result = append(result, series)
		}
	}
	// Sort by (start date, id) to mirror the database ordering
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartDate.Before(result[i].StartDate) ||
				(result[j].StartDate.Equal(result[i].StartDate) && result[j].ID < result[i].ID) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (r *RepoStub) UpdateSeries(ctx context.Context, userId int, series EntrySeries) (*EntrySeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.series[series.ID]
	if !ok || existing.UserID != userId {
		return nil, nil
	}
	series.UserID = userId
	series.ParentSeriesID = existing.ParentSeriesID
	series.CreatedAt = existing.CreatedAt
	series.UpdatedAt = r.now
	r.series[series.ID] = series
	return &series, nil
}

func (r *RepoStub) ShortenSeries(ctx context.Context, userId int, id int64, endDate time.Time) (*EntrySeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	series, ok := r.series[id]
	if !ok || series.UserID != userId {
		return nil, nil
	}
	series.EndDate = &endDate
	series.UpdatedAt = r.now
	r.series[id] = series
	return &series, nil
}

func (r *RepoStub) DeleteSeries(ctx context.Context, userId int, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	series, ok := r.series[id]
	if !ok || series.UserID != userId {
		return false, nil
	}
	delete(r.series, id)
	// Cascade like the series_exception foreign key does
	delete(r.exceptions, id)
	return true, nil
}

func (r *RepoStub) StoreException(ctx context.Context, userId int, exception SeriesException) (SeriesException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := exception.Date.Format(stubDateLayout)
	if r.exceptions[exception.SeriesID] == nil {
		r.exceptions[exception.SeriesID] = make(map[string]SeriesException)
	}
	if existing, ok := r.exceptions[exception.SeriesID][key]; ok {
		exception.ID = existing.ID
		exception.CreatedAt = existing.CreatedAt
	} else {
		exception.ID = r.nextExceptionId
		r.nextExceptionId++
		exception.CreatedAt = r.now
	}
	exception.UserID = userId
	r.exceptions[exception.SeriesID][key] = exception
	return exception, nil
}

func (r *RepoStub) GetExceptions(ctx context.Context, userId int, seriesId int64) ([]SeriesException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]SeriesException, 0, len(r.exceptions[seriesId]))
	for _, exception := range r.exceptions[seriesId] {
		if exception.UserID == userId {
			result = append(result, exception)
		}
	}
	sortExceptions(result)
	return result, nil
}

func (r *RepoStub) GetExceptionsIn(ctx context.Context, userId int, from, to time.Time) ([]SeriesException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []SeriesException
	for _, byDate := range r.exceptions {
		for _, exception := range byDate {
			if exception.UserID == userId && !exception.Date.Before(from) && !exception.Date.After(to) {
				result = append(result, exception)
			}
		}
	}
	sortExceptions(result)
	return result, nil
}

func sortExceptions(exceptions []SeriesException) {
	for i := 0; i < len(exceptions); i++ {
		for j := i + 1; j < len(exceptions); j++ {
			if exceptions[j].Date.Before(exceptions[i].Date) ||
				(exceptions[j].Date.Equal(exceptions[i].Date) && exceptions[j].SeriesID < exceptions[i].SeriesID) {
				exceptions[i], exceptions[j] = exceptions[j], exceptions[i]
			}
		}
	}
}
