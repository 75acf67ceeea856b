package todo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks data that does not conform to the Task or ChecklistItem shape.
var ErrMalformed = errors.New("malformed task data")

// FieldError names the field that failed validation.
type FieldError struct {
	TaskID string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("%s: %s: %s", ErrMalformed, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: task %s: %s: %s", ErrMalformed, e.TaskID, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrMalformed }

// Validate checks that t is a well-formed persisted task.
func Validate(t Task) error {
	fail := func(field, reason string) error {
		return &FieldError{TaskID: t.ID, Field: field, Reason: reason}
	}
	if t.ID == "" {
		return fail("id", "missing")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fail("title", "empty")
	}
	if t.CreatedAt <= 0 {
		return fail("createdAt", "missing")
	}
	if t.UpdatedAt < t.CreatedAt {
		return fail("updatedAt", "before createdAt")
	}
	seen := make(map[string]bool, len(t.Checklist))
	for i, item := range t.Checklist {
		if err := ValidateItem(item); err != nil {
			var fe *FieldError
			errors.As(err, &fe)
			return fail(fmt.Sprintf("checklist[%d].%s", i, fe.Field), fe.Reason)
		}
		if seen[item.ID] {
			return fail(fmt.Sprintf("checklist[%d]", i), "duplicate id "+item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

// ValidateItem checks a single checklist item.
// Empty text is only legal while an edit is in progress, never in stored data.
func ValidateItem(item ChecklistItem) error {
	if item.ID == "" {
		return &FieldError{Field: "id", Reason: "missing"}
	}
	if strings.TrimSpace(item.Text) == "" {
		return &FieldError{Field: "text", Reason: "empty"}
	}
	return nil
}

// ValidateAll validates every task of a collection and its updatedAt-descending order.
func ValidateAll(tasks []Task) error {
	for i, t := range tasks {
		if err := Validate(t); err != nil {
			return err
		}
		if i > 0 && tasks[i-1].UpdatedAt < t.UpdatedAt {
			return &FieldError{TaskID: t.ID, Field: "updatedAt", Reason: "collection not ordered by updatedAt descending"}
		}
	}
	return nil
}
