package service

import (
	"errors"
	"strings"
	"time"

	"go-retail-pos/internal/metrics"
	"go-retail-pos/pkg/apperror"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is pushed to websocket clients of one tenant.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	Actor   string      `json:"actor,omitempty"`
	Message string      `json:"message,omitempty"`
	At      time.Time   `json:"at"`
}

// EventPublisher fans events out to connected clients. Publish must not block.
type EventPublisher interface {
	Publish(tenantID uuid.UUID, event interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(uuid.UUID, interface{}) {}

// NopPublisher discards events.
var NopPublisher EventPublisher = nopPublisher{}

// Actor is the authenticated caller a write is attributed to.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// Ref is the value stored in created_by/updated_by columns.
func (a Actor) Ref() string {
	return a.UserID.String()
}

// Deps carries the collaborators every domain service shares.
type Deps struct {
	Events  EventPublisher
	Metrics *metrics.Metrics
}

func (d Deps) publish(tenantID uuid.UUID, eventType, action, actor, message string, data interface{}) {
	if d.Events == nil {
		return
	}
	d.Events.Publish(tenantID, Event{
		Type:    eventType,
		Action:  action,
		Data:    data,
		Actor:   actor,
		Message: message,
		At:      time.Now(),
	})
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}
	return nil
}

// notFound maps a missing row to the given coded error and passes anything else through.
func notFound(err error, coded *apperror.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return coded
	}
	return err
}

// normalizeEmail is applied before validation so surrounding blanks and
// capitals never reach the email tag or the unique index.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// parseOptionalID parses s when set. Callers validate the format first.
func parseOptionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func dateOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
