package entry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/balanza/balanza/internal/rest"
	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/user"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type EntrySeriesDTO struct {
	Id             int64           `json:"id"`
	EntryType      string          `json:"entry_type"`
	RecurrenceType string          `json:"recurrence_type"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	StartDate      string          `json:"start_date"`
	EndDate        *string         `json:"end_date"`
	Weekday        *int            `json:"weekday,omitempty"`
	DayOfMonth     *int            `json:"day_of_month,omitempty"`
	ParentSeriesId *int64          `json:"parent_series_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// EntryCommandDTO is the request body of both create and update commands.
type EntryCommandDTO struct {
	EntryType      string          `json:"entry_type"`
	RecurrenceType string          `json:"recurrence_type"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	StartDate      string          `json:"start_date"`
	EndDate        *string         `json:"end_date"`
	Weekday        *int            `json:"weekday"`
	DayOfMonth     *int            `json:"day_of_month"`
}

type ExceptionDTO struct {
	Id            int64            `json:"id"`
	SeriesId      int64            `json:"series_id"`
	ExceptionDate string           `json:"exception_date"`
	ExceptionType string           `json:"exception_type"`
	Title         string           `json:"title,omitempty"`
	Description   string           `json:"description,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type splitResponseDTO struct {
	OriginalSeries struct {
		Id        int64     `json:"id"`
		EndDate   *string   `json:"end_date"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"original_series"`
	NewSeries EntrySeriesDTO `json:"new_series"`
}

type deleteResponseDTO struct {
	Message  string `json:"message"`
	Scope    string `json:"scope"`
	Affected struct {
		SeriesDeleted    bool `json:"series_deleted"`
		ExceptionCreated bool `json:"exception_created"`
	} `json:"affected"`
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var dto EntryCommandDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := draftFromDTO(dto)
	if err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), draft)
	if err != nil {
		WriteError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusCreated, seriesToDTO(created))
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	allSeries, err := h.service.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	dtos := make([]EntrySeriesDTO, 0, len(allSeries))
	for _, series := range allSeries {
		dtos = append(dtos, seriesToDTO(series))
	}
	rest.RespondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := seriesIdFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	series, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, seriesToDTO(series))
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := seriesIdFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	scope, targetDate, err := scopeFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var dto EntryCommandDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	draft, err := draftFromDTO(dto)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.service.Update(r.Context(), id, scope, targetDate, draft)
	if err != nil {
		WriteError(w, err)
		return
	}

	switch {
	case result.Exception != nil:
		rest.RespondJSON(w, http.StatusOK, map[string]ExceptionDTO{"exception": exceptionToDTO(*result.Exception)})
	case result.NewSeries != nil:
		var response splitResponseDTO
		response.OriginalSeries.Id = result.Original.ID
		response.OriginalSeries.EndDate = formatOptionalDate(result.Original.EndDate)
		response.OriginalSeries.UpdatedAt = result.Original.UpdatedAt
		response.NewSeries = seriesToDTO(*result.NewSeries)
		rest.RespondJSON(w, http.StatusOK, response)
	default:
		rest.RespondJSON(w, http.StatusOK, seriesToDTO(*result.Updated))
	}
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := seriesIdFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	scope, targetDate, err := scopeFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.service.Delete(r.Context(), id, scope, targetDate)
	if err != nil {
		WriteError(w, err)
		return
	}

	var response deleteResponseDTO
	response.Scope = string(result.Scope)
	response.Affected.SeriesDeleted = result.SeriesDeleted
	response.Affected.ExceptionCreated = result.ExceptionCreated
	switch result.Scope {
	case ScopeOccurrence:
		response.Message = "occurrence skipped"
	case ScopeFuture:
		response.Message = "series truncated"
	case ScopeEntire:
		response.Message = "series deleted"
	}
	rest.RespondJSON(w, http.StatusOK, response)
}

// WriteError maps domain errors of this package onto HTTP statuses.
func WriteError(w http.ResponseWriter, err error) {
	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		rest.RespondError(w, http.StatusBadRequest, "invalid request", validationErr.Error())
		return
	}
	var conflictErr ConflictError
	if errors.As(err, &conflictErr) {
		rest.RespondError(w, http.StatusConflict, "conflict", conflictErr.Error())
		return
	}
	if errors.Is(err, ErrSeriesNotFound) {
		rest.RespondError(w, http.StatusNotFound, ErrSeriesNotFound.Error(), "")
		return
	}
	if errors.Is(err, user.ErrNoUser) {
		rest.RespondError(w, http.StatusForbidden, "no user in request context", "")
		return
	}
	rest.RespondInternalError(w, err)
}

func seriesIdFromPath(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["entryId"], 10, 64)
	if err != nil {
		return 0, ValidationError{Field: "entryId", Reason: "must be a numeric series id"}
	}
	return id, nil
}

// scopeFromQuery parses the scope and optional date query parameters shared by
// update and delete requests.
func scopeFromQuery(r *http.Request) (Scope, *time.Time, error) {
	scope, err := ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		return "", nil, err
	}

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		return scope, nil, nil
	}
	date, err := utils.ParseDate(dateParam)
	if err != nil {
		return "", nil, ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"}
	}
	return scope, &date, nil
}

func draftFromDTO(dto EntryCommandDTO) (Draft, error) {
	startDate, err := utils.ParseDate(dto.StartDate)
	if err != nil {
		return Draft{}, ValidationError{Field: "start_date", Reason: "must be in YYYY-MM-DD format"}
	}
	var endDate *time.Time
	if dto.EndDate != nil {
		parsed, err := utils.ParseDate(*dto.EndDate)
		if err != nil {
			return Draft{}, ValidationError{Field: "end_date", Reason: "must be in YYYY-MM-DD format"}
		}
		endDate = &parsed
	}

	return Draft{
		EntryType:      EntryType(dto.EntryType),
		RecurrenceType: RecurrenceType(dto.RecurrenceType),
		Title:          dto.Title,
		Description:    dto.Description,
		Amount:         dto.Amount,
		StartDate:      startDate,
		EndDate:        endDate,
		Weekday:        dto.Weekday,
		DayOfMonth:     dto.DayOfMonth,
	}, nil
}

func seriesToDTO(s EntrySeries) EntrySeriesDTO {
	return EntrySeriesDTO{
		Id:             s.ID,
		EntryType:      string(s.EntryType),
		RecurrenceType: string(s.RecurrenceType),
		Title:          s.Title,
		Description:    s.Description,
		Amount:         s.Amount,
		StartDate:      utils.FormatDate(s.StartDate),
		EndDate:        formatOptionalDate(s.EndDate),
		Weekday:        s.Weekday,
		DayOfMonth:     s.DayOfMonth,
		ParentSeriesId: s.ParentSeriesID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func exceptionToDTO(e SeriesException) ExceptionDTO {
	dto := ExceptionDTO{
		Id:            e.ID,
		SeriesId:      e.SeriesID,
		ExceptionDate: utils.FormatDate(e.Date),
		ExceptionType: string(e.Type),
		CreatedAt:     e.CreatedAt,
	}
	if e.Type == ExceptionOverride {
		dto.Title = e.Title
		dto.Description = e.Description
		amount := e.Amount
		dto.Amount = &amount
	}
	return dto
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := utils.FormatDate(*t)
	return &formatted
}
