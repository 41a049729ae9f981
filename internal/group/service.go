package group

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrNotMember           = errors.New("you are not a member of this group")
	ErrNotGroupAdmin       = errors.New("only group admin can perform this action")
	ErrInsufficientCredits = errors.New("you do not have enough credits to perform this operation")
)

// Store is the group persistence used by the service
type Store interface {
	CreateWithCredit(ctx context.Context, creatorEmail string, g *Group) (*Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	ListByMember(ctx context.Context, email string, limit, offset int, order SortOrder) ([]*Group, int, error)
	ListByPaymentStatus(ctx context.Context, email string, isPaid bool) ([]*Group, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error)
	AddMembers(ctx context.Context, id uuid.UUID, emails []string) (*Group, error)
	RemoveMembers(ctx context.Context, id uuid.UUID, emails []string) (*Group, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Notifier tells new members they were added to a group
type Notifier interface {
	NotifyAddedToGroup(ctx context.Context, recipients []string, groupName string, groupID uuid.UUID) error
}

// Service handles group business logic
type Service struct {
	repo            Store
	notifier        Notifier
	defaultCurrency string
	now             func() time.Time
}

// NewService creates a new group service
func NewService(repo Store, notifier Notifier, defaultCurrency string) *Service {
	return &Service{
		repo:            repo,
		notifier:        notifier,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// Create creates a group owned by the caller, consuming one credit
func (s *Service) Create(ctx context.Context, creator *middleware.Identity, req *CreateGroupRequest) (*Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	var v validation.Collector
	n := validation.RuneLen(req.Name)
	v.Check(n >= 1 && n <= 100, "name", "must be between 1 and 100 characters")
	v.Check(validation.RuneLen(req.Description) <= 500, "description", "must be at most 500 characters")
	members := normalizeEmails(&v, "membersEmail", req.MembersEmail)
	if err := v.Err(); err != nil {
		return nil, err
	}

	adminEmail := validation.NormalizeEmail(creator.Email)
	g, err := s.repo.CreateWithCredit(ctx, adminEmail, &Group{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		Thumbnail:    strings.TrimSpace(req.Thumbnail),
		AdminEmail:   adminEmail,
		MembersEmail: dedupe(append([]string{adminEmail}, members...)),
		PaymentStatus: PaymentStatus{
			Amount:   0,
			Currency: s.defaultCurrency,
			Date:     s.now(),
			IsPaid:   false,
		},
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, g, without(g.MembersEmail, adminEmail))
	return g, nil
}

// GetByID retrieves a group visible to the caller
func (s *Service) GetByID(ctx context.Context, caller *middleware.Identity, id uuid.UUID) (*Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	if !g.HasMember(validation.NormalizeEmail(caller.Email)) {
		return nil, ErrNotMember
	}
	return g, nil
}

// ListMine retrieves the caller's groups, newest first unless order says otherwise
func (s *Service) ListMine(ctx context.Context, caller *middleware.Identity, page, limit int, order SortOrder) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if order != SortOldest {
		order = SortNewest
	}

	offset := (page - 1) * limit
	return s.repo.ListByMember(ctx, validation.NormalizeEmail(caller.Email), limit, offset, order)
}

// ListByPaymentStatus filters the caller's groups by the settle flag
func (s *Service) ListByPaymentStatus(ctx context.Context, caller *middleware.Identity, isPaid bool) ([]*Group, error) {
	return s.repo.ListByPaymentStatus(ctx, validation.NormalizeEmail(caller.Email), isPaid)
}

// Update changes a group's details. Only the admin may do it, and a new
// admin must already be a member.
func (s *Service) Update(ctx context.Context, caller *middleware.Identity, id uuid.UUID, req *UpdateGroupRequest) (*Group, error) {
	g, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if validation.NormalizeEmail(caller.Email) != g.AdminEmail {
		return nil, ErrNotGroupAdmin
	}

	var v validation.Collector
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		n := validation.RuneLen(name)
		v.Check(n >= 1 && n <= 100, "name", "must be between 1 and 100 characters")
	}
	if req.Description != nil {
		v.Check(validation.RuneLen(*req.Description) <= 500, "description", "must be at most 500 characters")
	}
	if req.AdminEmail != nil {
		admin := validation.NormalizeEmail(*req.AdminEmail)
		req.AdminEmail = &admin
		v.Check(g.HasMember(admin), "adminEmail", "must be a member of the group")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrGroupNotFound
	}
	return updated, nil
}

// AddMembers adds emails to the group; existing members are ignored
func (s *Service) AddMembers(ctx context.Context, caller *middleware.Identity, id uuid.UUID, emails []string) (*Group, error) {
	g, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var v validation.Collector
	v.Check(len(emails) > 0, "emails", "at least one email is required")
	normalized := normalizeEmails(&v, "emails", emails)
	if err := v.Err(); err != nil {
		return nil, err
	}

	updated, err := s.repo.AddMembers(ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrGroupNotFound
	}

	var added []string
	for _, e := range dedupe(normalized) {
		if !g.HasMember(e) {
			added = append(added, e)
		}
	}
	s.notify(ctx, updated, added)
	return updated, nil
}

// RemoveMembers removes emails from the group. The admin cannot be removed.
func (s *Service) RemoveMembers(ctx context.Context, caller *middleware.Identity, id uuid.UUID, emails []string) (*Group, error) {
	g, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var v validation.Collector
	v.Check(len(emails) > 0, "emails", "at least one email is required")
	normalized := normalizeEmails(&v, "emails", emails)
	for _, e := range normalized {
		if e == g.AdminEmail {
			v.Add("emails", "the group admin cannot be removed")
			break
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	updated, err := s.repo.RemoveMembers(ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrGroupNotFound
	}
	return updated, nil
}

// LastSettled returns when the group was last settled, or nil if it never was
func (s *Service) LastSettled(ctx context.Context, caller *middleware.Identity, id uuid.UUID) (*time.Time, error) {
	g, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !g.PaymentStatus.IsPaid {
		return nil, nil
	}
	at := g.PaymentStatus.Date
	return &at, nil
}

// Delete removes a group together with its expenses. Only the admin may do it.
func (s *Service) Delete(ctx context.Context, caller *middleware.Identity, id uuid.UUID) error {
	g, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return err
	}
	if validation.NormalizeEmail(caller.Email) != g.AdminEmail {
		return ErrNotGroupAdmin
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrGroupNotFound
	}
	return nil
}

func (s *Service) notify(ctx context.Context, g *Group, recipients []string) {
	if s.notifier == nil || len(recipients) == 0 {
		return
	}
	if err := s.notifier.NotifyAddedToGroup(ctx, recipients, g.Name, g.ID); err != nil {
		slog.WarnContext(ctx, "failed to notify new group members", "group_id", g.ID, "error", err)
	}
}

func normalizeEmails(v *validation.Collector, field string, emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = validation.NormalizeEmail(e)
		if !validation.IsEmail(e) {
			v.Add(field, "invalid email: "+e)
			continue
		}
		out = append(out, e)
	}
	return out
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func without(emails []string, drop string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e != drop {
			out = append(out, e)
		}
	}
	return out
}
