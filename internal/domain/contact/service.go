package contact

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/shared/id"
)

// SuccessMessage is returned to the visitor after a stored submission.
const SuccessMessage = "Thank you for your message! I'll get back to you soon."

// Filter narrows an inbox listing.
type Filter struct {
	Read    *bool
	Replied *bool
	Search  string
	Offset  int
	Limit   int
}

// Repository persists contact messages.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	Get(ctx context.Context, id string) (*Message, error)
	List(ctx context.Context, f Filter) ([]Message, int, error)
	Update(ctx context.Context, m *Message) error
	Stats(ctx context.Context, now time.Time) (Stats, error)
}

// Notifier delivers notifications about a new message. Enqueue must not
// block on delivery.
type Notifier interface {
	Enqueue(m Message)
}

// Query is an admin inbox request.
type Query struct {
	Read    *bool
	Replied *bool
	Search  string
	Page    int
	PerPage int
}

// Page is one window of the inbox.
type Page struct {
	Items   []Message `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Pages   int       `json:"pages"`
	HasNext bool      `json:"has_next"`
	HasPrev bool      `json:"has_prev"`
}

// Service implements contact form submission and the admin inbox.
type Service struct {
	repo      Repository
	notifier  Notifier
	logger    *zap.Logger
	validator *validator.Validate
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewService creates a contact service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		validator: newValidator(),
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Submit validates, sanitizes and stores a submission, then queues the
// notifications. Notification failures never fail the submission.
func (s *Service) Submit(ctx context.Context, sub Submission, meta Meta) (*Message, error) {
	sub = normalize(sub)
	if err := s.validate(sub); err != nil {
		return nil, err
	}

	m := &Message{
		ID:            id.NewMessageID().String(),
		Name:          s.clean(sub.Name),
		Email:         sub.Email,
		Subject:       s.clean(sub.Subject),
		Message:       s.clean(sub.Message),
		Phone:         s.clean(sub.Phone),
		Company:       s.clean(sub.Company),
		IPAddress:     meta.IP,
		UserAgent:     truncate(meta.UserAgent, 500),
		DateSubmitted: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	s.logger.Info("contact message received",
		zap.String("id", m.ID),
		zap.String("email", m.Email),
		zap.String("ip", m.IPAddress))

	if s.notifier != nil {
		s.notifier.Enqueue(*m)
	}
	return m, nil
}

// Get returns one message.
func (s *Service) Get(ctx context.Context, messageID string) (*Message, error) {
	return s.repo.Get(ctx, messageID)
}

// List returns one page of the inbox, newest first.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	page, perPage := project.NormalizePage(q.Page, q.PerPage)
	items, total, err := s.repo.List(ctx, Filter{
		Read:    q.Read,
		Replied: q.Replied,
		Search:  strings.TrimSpace(q.Search),
		Offset:  project.Offset(page, perPage),
		Limit:   perPage,
	})
	if err != nil {
		return Page{}, fmt.Errorf("list contact messages: %w", err)
	}
	if items == nil {
		items = []Message{}
	}
	p := project.Paginate(total, page, perPage)
	return Page{
		Items:   items,
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
		HasNext: p.HasNext,
		HasPrev: p.HasPrev,
	}, nil
}

// Update applies admin flags. Marking a message replied stamps the reply
// date the first time.
func (s *Service) Update(ctx context.Context, messageID string, u Update) (*Message, error) {
	m, err := s.repo.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if u.Read != nil {
		m.Read = *u.Read
	}
	if u.Replied != nil {
		m.Replied = *u.Replied
		if m.Replied && m.ReplyDate == nil {
			now := s.now().UTC()
			m.ReplyDate = &now
		}
		if !m.Replied {
			m.ReplyDate = nil
		}
	}
	if u.Notes != nil {
		m.Notes = truncate(s.clean(*u.Notes), 1000)
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update contact message: %w", err)
	}
	return m, nil
}

// Stats returns inbox counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx, s.now().UTC())
}

func (s *Service) clean(v string) string {
	return html.UnescapeString(strings.TrimSpace(s.policy.Sanitize(v)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
