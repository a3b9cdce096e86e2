package projection

import (
	"errors"
	"net/http"

	"github.com/balanza/balanza/internal/rest"
	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/balance"
	"github.com/balanza/balanza/pkg/entry"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type ProjectionDTO struct {
	Date             string          `json:"date"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	StartingBalance  struct {
		Amount        decimal.Decimal `json:"amount"`
		EffectiveDate string          `json:"effective_date"`
	} `json:"starting_balance"`
	Computation struct {
		TotalIncome  decimal.Decimal `json:"total_income"`
		TotalExpense decimal.Decimal `json:"total_expense"`
		NetChange    decimal.Decimal `json:"net_change"`
	} `json:"computation"`
	DateRangeLimits struct {
		MinDate string `json:"min_date"`
		MaxDate string `json:"max_date"`
	} `json:"date_range_limits"`
}

func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		entry.WriteError(w, entry.ValidationError{Field: "date", Reason: "is required"})
		return
	}
	date, err := utils.ParseDate(dateParam)
	if err != nil {
		entry.WriteError(w, entry.ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"})
		return
	}

	projection, err := h.service.Project(r.Context(), date)
	if err != nil {
		if errors.Is(err, balance.ErrNoStartingBalance) {
			rest.RespondError(w, http.StatusNotFound, err.Error(), "")
			return
		}
		entry.WriteError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, projectionToDTO(projection))
}

func projectionToDTO(p Projection) ProjectionDTO {
	var dto ProjectionDTO
	dto.Date = utils.FormatDate(p.Date)
	dto.ProjectedBalance = p.ProjectedBalance
	dto.StartingBalance.Amount = p.StartingAmount
	dto.StartingBalance.EffectiveDate = utils.FormatDate(p.EffectiveDate)
	dto.Computation.TotalIncome = p.TotalIncome
	dto.Computation.TotalExpense = p.TotalExpense
	dto.Computation.NetChange = p.NetChange
	dto.DateRangeLimits.MinDate = utils.FormatDate(p.MinDate)
	dto.DateRangeLimits.MaxDate = utils.FormatDate(p.MaxDate)
	return dto
}
