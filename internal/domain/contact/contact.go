package contact

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("contact message not found")
	ErrValidation = errors.New("invalid contact submission")
)

// Submission is the public contact form payload.
type Submission struct {
	Name    string `json:"name" validate:"required,max=100,personname"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=2000,minwords=3"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=20,phone"`
	Company string `json:"company,omitempty" validate:"omitempty,max=100"`
}

// Meta is request information recorded with a submission.
type Meta struct {
	IP        string
	UserAgent string
}

// Message is a stored contact submission.
type Message struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Phone         string     `json:"phone,omitempty"`
	Company       string     `json:"company,omitempty"`
	IPAddress     string     `json:"ip_address,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
	Read          bool       `json:"read_status"`
	Replied       bool       `json:"replied"`
	ReplyDate     *time.Time `json:"reply_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	DateSubmitted time.Time  `json:"date_submitted"`
}

// Update carries the admin-editable flags. Nil fields are left untouched.
type Update struct {
	Read    *bool   `json:"read_status"`
	Replied *bool   `json:"replied"`
	Notes   *string `json:"notes" binding:"omitempty,max=1000"`
}

// Stats summarises the inbox for the admin dashboard.
type Stats struct {
	Total    int `json:"total_contacts"`
	Unread   int `json:"unread_contacts"`
	Replied  int `json:"replied_contacts"`
	ThisWeek int `json:"this_week"`
	Today    int `json:"today"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Fields[0].Field + " " + e.Fields[0].Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
