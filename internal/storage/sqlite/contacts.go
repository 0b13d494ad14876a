package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
)

const contactColumns = `id, name, email, subject, message, phone, company, ip_address, user_agent,
	read_status, replied, reply_date, notes, date_submitted`

// ContactStore implements contact.Repository.
type ContactStore struct {
	db *sql.DB
}

var _ contact.Repository = (*ContactStore)(nil)

// Create inserts a message.
func (s *ContactStore) Create(ctx context.Context, m *contact.Message) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO contacts ("+contactColumns+
		") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.Phone, m.Company, m.IPAddress, m.UserAgent,
		boolInt(m.Read), boolInt(m.Replied), nullMillis(m.ReplyDate), m.Notes, toMillis(m.DateSubmitted))
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// Get returns one message.
func (s *ContactStore) Get(ctx context.Context, id string) (*contact.Message, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id = ?", id)
	m, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contact.ErrNotFound
	}
	return m, err
}

// List returns one window of messages, newest first.
func (s *ContactStore) List(ctx context.Context, f contact.Filter) ([]contact.Message, int, error) {
	var conds []string
	var args []any
	if f.Read != nil {
		conds = append(conds, "read_status = ?")
		args = append(args, boolInt(*f.Read))
	}
	if f.Replied != nil {
		conds = append(conds, "replied = ?")
		args = append(args, boolInt(*f.Replied))
	}
	if f.Search != "" {
		pattern := likePattern(strings.ToLower(f.Search))
		conds = append(conds, `(lower(name) LIKE ? ESCAPE '\' OR lower(email) LIKE ? ESCAPE '\'
			OR lower(subject) LIKE ? ESCAPE '\' OR lower(message) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	limit, limitArgs := limitClause(f.Limit, f.Offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+contactColumns+" FROM contacts"+where+
		" ORDER BY date_submitted DESC, id DESC"+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	items := []contact.Message{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contacts: %w", err)
	}
	return items, total, nil
}

// Update stores the admin-editable fields.
func (s *ContactStore) Update(ctx context.Context, m *contact.Message) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE contacts SET read_status = ?, replied = ?, reply_date = ?, notes = ? WHERE id = ?",
		boolInt(m.Read), boolInt(m.Replied), nullMillis(m.ReplyDate), m.Notes, m.ID)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return requireRow(res, contact.ErrNotFound)
}

// Stats counts messages relative to now.
func (s *ContactStore) Stats(ctx context.Context, now time.Time) (contact.Stats, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := today.AddDate(0, 0, -7)

	var st contact.Stats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN read_status = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(replied), 0),
		COALESCE(SUM(CASE WHEN date_submitted >= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN date_submitted >= ? THEN 1 ELSE 0 END), 0)
		FROM contacts`, toMillis(week), toMillis(today)).
		Scan(&st.Total, &st.Unread, &st.Replied, &st.ThisWeek, &st.Today)
	if err != nil {
		return contact.Stats{}, fmt.Errorf("contact stats: %w", err)
	}
	return st, nil
}

func scanContact(row scanner) (*contact.Message, error) {
	var (
		m             contact.Message
		read, replied int
		replyDate     sql.NullInt64
		submitted     int64
	)
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Phone, &m.Company,
		&m.IPAddress, &m.UserAgent, &read, &replied, &replyDate, &m.Notes, &submitted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	m.Read = read != 0
	m.Replied = replied != 0
	m.ReplyDate = timePtr(replyDate)
	m.DateSubmitted = fromMillis(submitted)
	return &m, nil
}
