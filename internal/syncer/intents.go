package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"neolist/internal/checklist"
	"neolist/internal/store"
	"neolist/internal/suggest"
	"neolist/internal/todo"
)

// currentUser returns the identity intents run as.
func (c *Controller) currentUser() (string, error) {
	userID := c.UserID()
	if userID == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// latestTask reads the task from the newest snapshot of userID.
func (c *Controller) latestTask(userID, taskID string) (todo.Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap.UserID != userID {
		return todo.Task{}, store.ErrNotFound
	}
	task, ok := c.snap.Task(taskID)
	if !ok {
		return todo.Task{}, store.ErrNotFound
	}
	return task, nil
}

// AddTask creates a task with the trimmed title.
func (c *Controller) AddTask(ctx context.Context, title string) (todo.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return todo.Task{}, ErrEmptyTitle
	}
	userID, err := c.currentUser()
	if err != nil {
		return todo.Task{}, err
	}
	task, err := c.store.Create(ctx, userID, title)
	if err != nil {
		return todo.Task{}, fmt.Errorf("add task: %w", err)
	}
	c.logger.Debug("task created", "task", task.ID)
	return task, nil
}

// DeleteTask permanently removes a task.
func (c *Controller) DeleteTask(ctx context.Context, taskID string) error {
	userID, err := c.currentUser()
	if err != nil {
		return err
	}
	if err := c.store.Remove(ctx, userID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	c.logger.Debug("task deleted", "task", taskID)
	return nil
}

// UpdateTitle renames a task. Blank titles are rejected and an unchanged
// title is a no-op.
func (c *Controller) UpdateTitle(ctx context.Context, taskID, title string) (todo.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return todo.Task{}, ErrEmptyTitle
	}
	return c.patchTask(ctx, taskID, func(task todo.Task) (todo.Fields, bool) {
		return todo.TitleField(title), task.Title != title
	})
}

// UpdateNotes replaces the notes of a task. Notes may be empty.
func (c *Controller) UpdateNotes(ctx context.Context, taskID, notes string) (todo.Task, error) {
	return c.patchTask(ctx, taskID, func(task todo.Task) (todo.Fields, bool) {
		return todo.NotesField(notes), task.Notes != notes
	})
}

// AddItem appends a sub-task.
func (c *Controller) AddItem(ctx context.Context, taskID, text string) (todo.Task, error) {
	return c.editChecklist(ctx, taskID, func(items []todo.ChecklistItem) ([]todo.ChecklistItem, bool) {
		return checklist.Add(items, text)
	})
}

// EditItem changes a sub-task's text; blank text deletes it.
func (c *Controller) EditItem(ctx context.Context, taskID, itemID, text string) (todo.Task, error) {
	return c.editChecklist(ctx, taskID, func(items []todo.ChecklistItem) ([]todo.ChecklistItem, bool) {
		return checklist.EditText(items, itemID, text)
	})
}

// ToggleItem flips a sub-task's completion.
func (c *Controller) ToggleItem(ctx context.Context, taskID, itemID string) (todo.Task, error) {
	return c.editChecklist(ctx, taskID, func(items []todo.ChecklistItem) ([]todo.ChecklistItem, bool) {
		return checklist.Toggle(items, itemID)
	})
}

// DeleteItem removes a sub-task.
func (c *Controller) DeleteItem(ctx context.Context, taskID, itemID string) (todo.Task, error) {
	return c.editChecklist(ctx, taskID, func(items []todo.ChecklistItem) ([]todo.ChecklistItem, bool) {
		return checklist.Delete(items, itemID)
	})
}

// SuggestItems asks the suggestion capability for sub-tasks based on the
// task title and appends them. It returns the number of items added.
// A suggestion failure leaves the task untouched and wraps suggest.ErrSuggestion.
func (c *Controller) SuggestItems(ctx context.Context, taskID string) (todo.Task, int, error) {
	userID, err := c.currentUser()
	if err != nil {
		return todo.Task{}, 0, err
	}
	task, err := c.latestTask(userID, taskID)
	if err != nil {
		return todo.Task{}, 0, err
	}

	suggestions, err := c.suggester.Suggest(ctx, task.Title)
	if err != nil {
		if !errors.Is(err, suggest.ErrSuggestion) {
			err = fmt.Errorf("%w: %v", suggest.ErrSuggestion, err)
		}
		return task, 0, err
	}
	if len(suggestions) == 0 {
		return task, 0, nil
	}

	// The suggestion call may take a while; build on the checklist as it is now.
	added := 0
	updated, err := c.editChecklist(ctx, taskID, func(items []todo.ChecklistItem) ([]todo.ChecklistItem, bool) {
		var next []todo.ChecklistItem
		next, added = checklist.AppendSuggestions(items, suggestions)
		return next, added > 0
	})
	if errors.Is(err, ErrNoChange) {
		return updated, 0, nil
	}
	return updated, added, err
}

// patchTask issues one patch built from the latest copy of the task.
func (c *Controller) patchTask(ctx context.Context, taskID string, build func(todo.Task) (todo.Fields, bool)) (todo.Task, error) {
	userID, err := c.currentUser()
	if err != nil {
		return todo.Task{}, err
	}
	task, err := c.latestTask(userID, taskID)
	if err != nil {
		return todo.Task{}, err
	}
	fields, changed := build(task)
	if !changed {
		return task, ErrNoChange
	}
	updated, err := c.store.Patch(ctx, userID, taskID, fields)
	if err != nil {
		return todo.Task{}, fmt.Errorf("update task: %w", err)
	}
	c.logger.Debug("task updated", "task", taskID, "fields", strings.Join(fields.Paths(), ","))
	return updated, nil
}

// editChecklist computes the next checklist from the latest known one and
// writes it in a single patch.
func (c *Controller) editChecklist(ctx context.Context, taskID string, edit func([]todo.ChecklistItem) ([]todo.ChecklistItem, bool)) (todo.Task, error) {
	return c.patchTask(ctx, taskID, func(task todo.Task) (todo.Fields, bool) {
		next, changed := edit(task.Checklist)
		return todo.ChecklistField(next), changed
	})
}
