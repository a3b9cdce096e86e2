package balance

import (
	"encoding/json"
	"errors"
	"net/http"
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

type StartingBalanceDTO struct {
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate string          `json:"effective_date"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.GetBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, balanceToDTO(balance))
}

func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var dto StartingBalanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	effectiveDate, err := utils.ParseDate(dto.EffectiveDate)
	if err != nil {
		writeError(w, entry.ValidationError{Field: "effective_date", Reason: "must be in YYYY-MM-DD format"})
		return
	}

	balance, err := h.service.SetBalance(r.Context(), dto.Amount, effectiveDate)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.RespondJSON(w, http.StatusOK, balanceToDTO(balance))
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoStartingBalance) {
		rest.RespondError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	entry.WriteError(w, err)
}

func balanceToDTO(balance StartingBalance) StartingBalanceDTO {
	return StartingBalanceDTO{
		Amount:        balance.Amount,
		EffectiveDate: utils.FormatDate(balance.EffectiveDate),
		UpdatedAt:     balance.UpdatedAt,
	}
}
