package group

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.Authorize(middleware.PermGroupCreate)).Post("/create", h.Create)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(middleware.PermGroupView))
		r.Get("/my-groups", h.ListMine)
		r.Get("/status", h.ListByStatus)
		r.Get("/{groupId}", h.GetByID)
		r.Get("/{groupId}/audit", h.Audit)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(middleware.PermGroupUpdate))
		r.Put("/update", h.Update)
		r.Patch("/members/add", h.AddMembers)
		r.Patch("/members/remove", h.RemoveMembers)
	})

	r.With(middleware.Authorize(middleware.PermGroupDelete)).Delete("/{groupId}", h.Delete)

	return r
}

// Create handles POST /groups/create
// @Summary      Create a new group
// @Description  Create a group with the caller as admin. Consumes one credit.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), identity, &req)
	if err != nil {
		h.fail(w, r, "Failed to create group", err)
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// GetByID handles GET /groups/{groupId}
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	group, err := h.service.GetByID(r.Context(), identity, id)
	if err != nil {
		h.fail(w, r, "Failed to get group", err)
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// ListMine handles GET /groups/my-groups
// @Summary      List my groups
// @Description  Get a paginated list of groups the caller belongs to
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Param        sortBy query string false "newest or oldest" default(newest)
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups/my-groups [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	groups, total, err := h.service.ListMine(r.Context(), identity, page, limit, SortOrder(r.URL.Query().Get("sortBy")))
	if err != nil {
		response.Internal(w, r, "Failed to list groups", err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, toResponses(groups), response.NewMeta(page, limit, total))
}

// ListByStatus handles GET /groups/status
// @Summary      Filter my groups by settle status
// @Tags         groups
// @Produce      json
// @Param        isPaid query bool true "Settled or not"
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups/status [get]
func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	isPaid, err := strconv.ParseBool(r.URL.Query().Get("isPaid"))
	if err != nil {
		response.BadRequest(w, "isPaid must be true or false")
		return
	}

	groups, err := h.service.ListByPaymentStatus(r.Context(), identity, isPaid)
	if err != nil {
		response.Internal(w, r, "Failed to list groups", err)
		return
	}

	response.JSON(w, http.StatusOK, toResponses(groups))
}

// Update handles PUT /groups/update
// @Summary      Update a group
// @Description  Group admin changes name, description, thumbnail or hands over admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/update [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	id, err := uuid.Parse(req.GroupID)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	group, err := h.service.Update(r.Context(), identity, id, &req)
	if err != nil {
		h.fail(w, r, "Failed to update group", err)
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// AddMembers handles PATCH /groups/members/add
// @Summary      Add members
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body MembersRequest true "Emails to add"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/members/add [patch]
func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.service.AddMembers, "Failed to add members")
}

// RemoveMembers handles PATCH /groups/members/remove
// @Summary      Remove members
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body MembersRequest true "Emails to remove"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/members/remove [patch]
func (h *Handler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.service.RemoveMembers, "Failed to remove members")
}

type membersFunc func(context.Context, *middleware.Identity, uuid.UUID, []string) (*Group, error)

func (h *Handler) changeMembers(w http.ResponseWriter, r *http.Request, apply membersFunc, failure string) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req MembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	id, err := uuid.Parse(req.GroupID)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	group, err := apply(r.Context(), identity, id, req.Emails)
	if err != nil {
		h.fail(w, r, failure, err)
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Audit handles GET /groups/{groupId}/audit
// @Summary      Last settlement date
// @Description  Returns when the group was last settled, or null
// @Tags         groups
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=AuditResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/audit [get]
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	at, err := h.service.LastSettled(r.Context(), identity, id)
	if err != nil {
		h.fail(w, r, "Failed to get group audit", err)
		return
	}

	resp := &AuditResponse{}
	if at != nil {
		formatted := at.UTC().Format(timeLayout)
		resp.LastSettled = &formatted
	}
	response.JSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /groups/{groupId}
// @Summary      Delete a group
// @Description  Group admin deletes the group and all of its expenses
// @Tags         groups
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		h.fail(w, r, "Failed to delete group", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Group deleted successfully"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr)
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotGroupAdmin):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInsufficientCredits):
		response.BadRequest(w, err.Error())
	default:
		response.Internal(w, r, message, err)
	}
}

func toResponses(groups []*Group) []*GroupResponse {
	out := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = g.ToResponse()
	}
	return out
}
