package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	WithTransaction(ctx context.Context, fn func(repo Repo) error) error
	StoreSeries(ctx context.Context, userId int, series EntrySeries) (EntrySeries, error)
	GetSeries(ctx context.Context, userId int, id int64) (*EntrySeries, error)
	GetAllSeries(ctx context.Context, userId int) ([]EntrySeries, error)
	UpdateSeries(ctx context.Context, userId int, series EntrySeries) (*EntrySeries, error)
	ShortenSeries(ctx context.Context, userId int, id int64, endDate time.Time) (*EntrySeries, error)
	DeleteSeries(ctx context.Context, userId int, id int64) (bool, error)
	StoreException(ctx context.Context, userId int, exception SeriesException) (SeriesException, error)
	GetExceptions(ctx context.Context, userId int, seriesId int64) ([]SeriesException, error)
	GetExceptionsIn(ctx context.Context, userId int, from, to time.Time) ([]SeriesException, error)
}

type RepoImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db, tx: nil}
}

// querier returns the appropriate database interface (either tx or pool)
func (r *RepoImpl) querier() interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepoImpl) WithTransaction(ctx context.Context, fn func(repo Repo) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepoImpl{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const seriesColumns = `id, entry_type, recurrence_type, title, description, amount::text,
		start_date, end_date, weekday, day_of_month, parent_series_id, created_at, updated_at`

func (r *RepoImpl) StoreSeries(ctx context.Context, userId int, series EntrySeries) (EntrySeries, error) {
	query := `INSERT INTO entry_series (user_id, entry_type, recurrence_type, title, description, amount,
				start_date, end_date, weekday, day_of_month, parent_series_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, created_at, updated_at`

	err := r.querier().QueryRow(ctx, query,
		userId,
		series.EntryType,
		series.RecurrenceType,
		series.Title,
		series.Description,
		series.Amount.StringFixed(2),
		series.StartDate,
		series.EndDate,
		series.Weekday,
		series.DayOfMonth,
		series.ParentSeriesID,
	).Scan(&series.ID, &series.CreatedAt, &series.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("could not store entry series: %w", err)
		log.Error(err)
		return EntrySeries{}, err
	}
	series.UserID = userId
	return series, nil
}

func (r *RepoImpl) GetSeries(ctx context.Context, userId int, id int64) (*EntrySeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM entry_series WHERE id = $1 AND user_id = $2`

	series, err := scanSeries(r.querier().QueryRow(ctx, query, id, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not get entry series %d: %w", id, err)
		log.Error(err)
		return nil, err
	}
	series.UserID = userId
	return series, nil
}

func (r *RepoImpl) GetAllSeries(ctx context.Context, userId int) ([]EntrySeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM entry_series WHERE user_id = $1 ORDER BY start_date, id`

	rows, err := r.querier().Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query entry series: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	allSeries := make([]EntrySeries, 0, 10)
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			err := fmt.Errorf("could not scan entry series: %w", err)
			log.Error(err)
			return nil, err
		}
		series.UserID = userId
		allSeries = append(allSeries, *series)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over entry series rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return allSeries, nil
}

// UpdateSeries overwrites all mutable fields of a series in place. Returns nil
// when the series does not exist for this user.
func (r *RepoImpl) UpdateSeries(ctx context.Context, userId int, series EntrySeries) (*EntrySeries, error) {
	query := `UPDATE entry_series
			  SET entry_type = $1, recurrence_type = $2, title = $3, description = $4, amount = $5,
				  start_date = $6, end_date = $7, weekday = $8, day_of_month = $9, updated_at = now()
			  WHERE id = $10 AND user_id = $11
			  RETURNING updated_at`

	err := r.querier().QueryRow(ctx, query,
		series.EntryType,
		series.RecurrenceType,
		series.Title,
		series.Description,
		series.Amount.StringFixed(2),
		series.StartDate,
		series.EndDate,
		series.Weekday,
		series.DayOfMonth,
		series.ID,
		userId,
	).Scan(&series.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not update entry series %d: %w", series.ID, err)
		log.Error(err)
		return nil, err
	}
	series.UserID = userId
	return &series, nil
}

// ShortenSeries sets the series end date, used by future-scope edits and
// deletes. Returns nil when the series does not exist for this user.
func (r *RepoImpl) ShortenSeries(ctx context.Context, userId int, id int64, endDate time.Time) (*EntrySeries, error) {
	query := `UPDATE entry_series SET end_date = $1, updated_at = now()
			  WHERE id = $2 AND user_id = $3
			  RETURNING ` + seriesColumns

	series, err := scanSeries(r.querier().QueryRow(ctx, query, endDate, id, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not shorten entry series %d: %w", id, err)
		log.Error(err)
		return nil, err
	}
	series.UserID = userId
	return series, nil
}

// DeleteSeries removes the series row; exceptions cascade via the foreign key.
func (r *RepoImpl) DeleteSeries(ctx context.Context, userId int, id int64) (bool, error) {
	query := `DELETE FROM entry_series WHERE id = $1 AND user_id = $2`
	tag, err := r.querier().Exec(ctx, query, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete entry series %d: %w", id, err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// StoreException inserts a per-date exception, replacing any existing exception
// on the same (series, date).
func (r *RepoImpl) StoreException(ctx context.Context, userId int, exception SeriesException) (SeriesException, error) {
	query := `INSERT INTO series_exception (series_id, user_id, exception_date, exception_type, title, description, amount)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (series_id, exception_date)
			  DO UPDATE SET exception_type = EXCLUDED.exception_type, title = EXCLUDED.title,
							description = EXCLUDED.description, amount = EXCLUDED.amount
			  RETURNING id, created_at`

	var title, description, amount *string
	if exception.Type == ExceptionOverride {
		title = &exception.Title
		description = &exception.Description
		amountStr := exception.Amount.StringFixed(2)
		amount = &amountStr
	}

	err := r.querier().QueryRow(ctx, query,
		exception.SeriesID,
		userId,
		exception.Date,
		exception.Type,
		title,
		description,
		amount,
	).Scan(&exception.ID, &exception.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not store series exception: %w", err)
		log.Error(err)
		return SeriesException{}, err
	}
	exception.UserID = userId
	return exception, nil
}

func (r *RepoImpl) GetExceptions(ctx context.Context, userId int, seriesId int64) ([]SeriesException, error) {
	query := `SELECT id, series_id, exception_date, exception_type, title, description, amount::text, created_at
			  FROM series_exception
			  WHERE user_id = $1 AND series_id = $2
			  ORDER BY exception_date`
	return r.queryExceptions(ctx, userId, query, userId, seriesId)
}

func (r *RepoImpl) GetExceptionsIn(ctx context.Context, userId int, from, to time.Time) ([]SeriesException, error) {
	query := `SELECT id, series_id, exception_date, exception_type, title, description, amount::text, created_at
			  FROM series_exception
			  WHERE user_id = $1 AND exception_date BETWEEN $2 AND $3
			  ORDER BY exception_date, series_id`
	return r.queryExceptions(ctx, userId, query, userId, from, to)
}

func (r *RepoImpl) queryExceptions(ctx context.Context, userId int, query string, args ...any) ([]SeriesException, error) {
	rows, err := r.querier().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query series exceptions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	exceptions := make([]SeriesException, 0, 10)
	for rows.Next() {
		var exception SeriesException
		var title, description, amount *string
		if err := rows.Scan(
			&exception.ID,
			&exception.SeriesID,
			&exception.Date,
			&exception.Type,
			&title,
			&description,
			&amount,
			&exception.CreatedAt,
		); err != nil {
			err := fmt.Errorf("could not scan series exception: %w", err)
			log.Error(err)
			return nil, err
		}
		if title != nil {
			exception.Title = *title
		}
		if description != nil {
			exception.Description = *description
		}
		if amount != nil {
			exception.Amount, err = decimal.NewFromString(*amount)
			if err != nil {
				err := fmt.Errorf("could not parse exception amount from database: %w", err)
				log.Error(err)
				return nil, err
			}
		}
		exception.UserID = userId
		exceptions = append(exceptions, exception)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over series exception rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return exceptions, nil
}

func scanSeries(row pgx.Row) (*EntrySeries, error) {
	var series EntrySeries
	var amount string
	if err := row.Scan(
		&series.ID,
		&series.EntryType,
		&series.RecurrenceType,
		&series.Title,
		&series.Description,
		&amount,
		&series.StartDate,
		&series.EndDate,
		&series.Weekday,
		&series.DayOfMonth,
		&series.ParentSeriesID,
		&series.CreatedAt,
		&series.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("could not parse series amount from database: %w", err)
	}
	series.Amount = parsed
	return &series, nil
}
