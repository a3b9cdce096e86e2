package occurrence

import (
	"net/http"
	"strconv"
	"time"

	"github.com/balanza/balanza/internal/rest"
	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/entry"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type OccurrenceDTO struct {
	OccurrenceId   string          `json:"occurrence_id"`
	SeriesId       int64           `json:"series_id"`
	EntryType      string          `json:"entry_type"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	OccurrenceDate string          `json:"occurrence_date"`
}

type pageDTO struct {
	Occurrences []OccurrenceDTO `json:"occurrences"`
	Pagination  struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"pagination"`
}

func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	query, err := queryFromRequest(r)
	if err != nil {
		entry.WriteError(w, err)
		return
	}

	page, err := h.service.Query(r.Context(), query)
	if err != nil {
		entry.WriteError(w, err)
		return
	}

	var response pageDTO
	response.Occurrences = make([]OccurrenceDTO, 0, len(page.Occurrences))
	for _, occurrence := range page.Occurrences {
		response.Occurrences = append(response.Occurrences, occurrenceToDTO(occurrence))
	}
	response.Pagination.Total = page.Total
	response.Pagination.Limit = query.Limit
	response.Pagination.Offset = query.Offset
	rest.RespondJSON(w, http.StatusOK, response)
}

func queryFromRequest(r *http.Request) (Query, error) {
	from, err := requiredDate(r, "from_date")
	if err != nil {
		return Query{}, err
	}
	to, err := requiredDate(r, "to_date")
	if err != nil {
		return Query{}, err
	}

	query := Query{From: from, To: to, Limit: DefaultLimit}

	if typeParam := r.URL.Query().Get("entry_type"); typeParam != "" {
		entryType := entry.EntryType(typeParam)
		if entryType != entry.EntryTypeIncome && entryType != entry.EntryTypeExpense {
			return Query{}, entry.ValidationError{Field: "entry_type", Reason: "must be income or expense"}
		}
		query.EntryType = &entryType
	}

	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return Query{}, entry.ValidationError{Field: "limit", Reason: "must be a number"}
		}
		query.Limit = limit
	}
	if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil {
			return Query{}, entry.ValidationError{Field: "offset", Reason: "must be a number"}
		}
		query.Offset = offset
	}
	return query, nil
}

func requiredDate(r *http.Request, param string) (time.Time, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return time.Time{}, entry.ValidationError{Field: param, Reason: "is required"}
	}
	date, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, entry.ValidationError{Field: param, Reason: "must be in YYYY-MM-DD format"}
	}
	return date, nil
}

func occurrenceToDTO(o Occurrence) OccurrenceDTO {
	return OccurrenceDTO{
		OccurrenceId:   o.ID.String(),
		SeriesId:       o.SeriesID,
		EntryType:      string(o.EntryType),
		Title:          o.Title,
		Description:    o.Description,
		Amount:         o.Amount,
		OccurrenceDate: utils.FormatDate(o.Date),
	}
}
