package settlement

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the settlement endpoints to the expenses router
func (h *Handler) Register(r chi.Router) {
	r.Get("/settlement/{groupId}", h.GetSettlement)
	r.Post("/settle/{groupId}", h.Settle)
}

// GetSettlement handles GET /expenses/settlement/{groupId}
// @Summary      Group settlement
// @Description  Amounts owed keyed by "debtor-creditor", summed over all expenses. With by=currency, a list split by currency is returned instead.
// @Tags         settlement
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        by query string false "Set to currency to keep currencies apart"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/settlement/{groupId} [get]
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if r.URL.Query().Get("by") == "currency" {
		balances, err := h.service.GroupSettlementByCurrency(r.Context(), groupID)
		if err != nil {
			h.fail(w, r, "Failed to calculate settlement", err)
			return
		}
		response.JSON(w, http.StatusOK, &CurrencySettlementResponse{Settlement: balances})
		return
	}

	result, err := h.service.GroupSettlement(r.Context(), groupID)
	if err != nil {
		h.fail(w, r, "Failed to calculate settlement", err)
		return
	}

	response.JSON(w, http.StatusOK, &SettlementResponse{Settlement: result})
}

// Settle handles POST /expenses/settle/{groupId}
// @Summary      Settle a group
// @Description  Group admin marks the group as paid. Expenses are not changed.
// @Tags         settlement
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=group.GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/settle/{groupId} [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	g, err := h.service.Settle(r.Context(), groupID, identity)
	if err != nil {
		h.fail(w, r, "Failed to settle group", err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotGroupAdmin):
		response.Forbidden(w, err.Error())
	default:
		response.Internal(w, r, message, err)
	}
}
