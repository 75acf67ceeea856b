// Package checklist computes the next checklist from an edit intent.
//
// Every function is pure: the input slice is never modified and a fresh
// slice is returned together with a flag telling whether anything changed.
// Persisting the result is the caller's job.
package checklist

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"neolist/internal/todo"
)

// NewID returns a fresh item ID.
// ULIDs carry a millisecond timestamp plus entropy that increases
// monotonically within the same millisecond, so IDs made in rapid
// succession are distinct and sort in creation order.
var NewID = func() string {
	return ulid.Make().String()
}

// Add appends an incomplete item with the trimmed text.
// Empty text is rejected and the checklist is returned unchanged.
func Add(items []todo.ChecklistItem, text string) ([]todo.ChecklistItem, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return todo.CloneChecklist(items), false
	}
	out := make([]todo.ChecklistItem, len(items), len(items)+1)
	copy(out, items)
	out = append(out, todo.ChecklistItem{ID: NewID(), Text: text})
	return out, true
}

// EditText replaces the text of the item with the given ID.
// Text that is empty after trimming deletes the item.
func EditText(items []todo.ChecklistItem, id, text string) ([]todo.ChecklistItem, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Delete(items, id)
	}
	out := todo.CloneChecklist(items)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if out[i].Text == text {
			return out, false
		}
		out[i].Text = text
		return out, true
	}
	return out, false
}

// Toggle flips the completion flag of the item with the given ID.
func Toggle(items []todo.ChecklistItem, id string) ([]todo.ChecklistItem, bool) {
	out := todo.CloneChecklist(items)
	for i := range out {
		if out[i].ID == id {
			out[i].Completed = !out[i].Completed
			return out, true
		}
	}
	return out, false
}

// Delete removes the item with the given ID.
func Delete(items []todo.ChecklistItem, id string) ([]todo.ChecklistItem, bool) {
	out := make([]todo.ChecklistItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out, len(out) != len(items)
}

// AppendSuggestions appends one incomplete item per non-empty suggestion,
// keeping the suggestion order. It returns the number of items appended.
func AppendSuggestions(items []todo.ChecklistItem, texts []string) ([]todo.ChecklistItem, int) {
	out := make([]todo.ChecklistItem, len(items), len(items)+len(texts))
	copy(out, items)
	added := 0
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, todo.ChecklistItem{ID: NewID(), Text: text})
		added++
	}
	return out, added
}
