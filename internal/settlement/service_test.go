package settlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/group"
	"github.com/fkhayef/groupsplit/pkg/middleware"
)

type memGroups map[uuid.UUID]*group.Group

func (m memGroups) GetByID(_ context.Context, id uuid.UUID) (*group.Group, error) {
	g, ok := m[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m memGroups) MarkSettled(_ context.Context, id uuid.UUID, at time.Time) (*group.Group, error) {
	g, ok := m[id]
	if !ok {
		return nil, nil
	}
	g.PaymentStatus.IsPaid = true
	g.PaymentStatus.Amount = 0
	g.PaymentStatus.Date = at
	cp := *g
	return &cp, nil
}

type memExpenses map[uuid.UUID][]*expense.Expense

func (m memExpenses) ListByGroup(_ context.Context, groupID uuid.UUID) ([]*expense.Expense, error) {
	return m[groupID], nil
}

type recordingNotifier struct {
	recipients []string
}

func (n *recordingNotifier) NotifyGroupSettled(_ context.Context, recipients []string, _ string, _ uuid.UUID) error {
	n.recipients = append(n.recipients, recipients...)
	return nil
}

var (
	admin  = &middleware.Identity{ID: uuid.NewString(), Email: "a@example.com", Role: middleware.RoleAdmin}
	member = &middleware.Identity{ID: uuid.NewString(), Email: "b@example.com", Role: middleware.RoleAdmin}
)

func setup(t *testing.T) (*Service, memGroups, uuid.UUID, *recordingNotifier) {
	t.Helper()
	groupID := uuid.New()
	groups := memGroups{groupID: {
		ID:           groupID,
		Name:         "Trip",
		AdminEmail:   admin.Email,
		MembersEmail: []string{admin.Email, member.Email},
		PaymentStatus: group.PaymentStatus{
			Amount:   42,
			Currency: "USD",
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	expenses := memExpenses{groupID: {
		exp(admin.Email, "INR", line(admin.Email, 10), line(member.Email, 10)),
	}}
	notifier := &recordingNotifier{}
	svc := NewService(groups, expenses, notifier)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	return svc, groups, groupID, notifier
}

func TestGroupSettlement(t *testing.T) {
	svc, _, groupID, _ := setup(t)

	result, err := svc.GroupSettlement(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"b@example.com-a@example.com": 10}, result)

	_, err = svc.GroupSettlement(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSettleByAdmin(t *testing.T) {
	svc, groups, groupID, notifier := setup(t)

	g, err := svc.Settle(context.Background(), groupID, admin)
	require.NoError(t, err)
	assert.True(t, g.PaymentStatus.IsPaid)
	assert.Zero(t, g.PaymentStatus.Amount)
	assert.Equal(t, "USD", g.PaymentStatus.Currency)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), g.PaymentStatus.Date)
	assert.ElementsMatch(t, []string{admin.Email, member.Email}, notifier.recipients)

	_, err = svc.Settle(context.Background(), groupID, admin)
	require.NoError(t, err)
	assert.True(t, groups[groupID].PaymentStatus.IsPaid)

	result, err := svc.GroupSettlement(context.Background(), groupID)
	require.NoError(t, err)
	assert.NotEmpty(t, result)
}

func TestSettleByNonAdminLeavesGroupUntouched(t *testing.T) {
	svc, groups, groupID, notifier := setup(t)
	before := *groups[groupID]

	_, err := svc.Settle(context.Background(), groupID, member)
	assert.ErrorIs(t, err, ErrNotGroupAdmin)
	assert.Equal(t, before.PaymentStatus, groups[groupID].PaymentStatus)
	assert.Empty(t, notifier.recipients)

	_, err = svc.Settle(context.Background(), uuid.New(), admin)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestHandler(t *testing.T) {
	svc, _, groupID, _ := setup(t)
	r := chi.NewRouter()
	NewHandler(svc).Register(r)

	serve := func(method, path string, who *middleware.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(middleware.WithIdentity(req.Context(), who))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(http.MethodGet, "/settlement/"+groupID.String(), member)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data SettlementResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 10.0, body.Data.Settlement["b@example.com-a@example.com"])

	rec = serve(http.MethodGet, "/settlement/"+groupID.String()+"?by=currency", member)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currency":"INR"`)

	assert.Equal(t, http.StatusForbidden, serve(http.MethodPost, "/settle/"+groupID.String(), member).Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodPost, "/settle/"+uuid.NewString(), admin).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/settlement/nope", admin).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/settle/"+groupID.String(), admin).Code)
}
