// Package todo defines the task and checklist entities shared by every layer.
package todo

// ChecklistItem is a single sub-task line inside a task's checklist.
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a top-level to-do entry.
// ID is assigned by the store and is not part of the stored payload.
type Task struct {
	ID        string          `json:"-"`
	Title     string          `json:"title"`
	Notes     string          `json:"notes"`
	Checklist []ChecklistItem `json:"checklist"`
	CreatedAt int64           `json:"createdAt"` // epoch milliseconds
	UpdatedAt int64           `json:"updatedAt"` // epoch milliseconds
}

// Progress returns the number of completed checklist items and the checklist length.
func (t Task) Progress() (done, total int) {
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}
	return done, len(t.Checklist)
}

// Item looks up a checklist item by ID.
func (t Task) Item(id string) (ChecklistItem, bool) {
	for _, item := range t.Checklist {
		if item.ID == id {
			return item, true
		}
	}
	return ChecklistItem{}, false
}

// Fields is a partial update. Nil fields are left untouched.
type Fields struct {
	Title     *string
	Notes     *string
	Checklist *[]ChecklistItem
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Notes == nil && f.Checklist == nil
}

// Paths returns the wire names of the fields that are set, in a fixed order.
func (f Fields) Paths() []string {
	var paths []string
	if f.Title != nil {
		paths = append(paths, "title")
	}
	if f.Notes != nil {
		paths = append(paths, "notes")
	}
	if f.Checklist != nil {
		paths = append(paths, "checklist")
	}
	return paths
}

// Apply returns a copy of t with the set fields replaced.
// UpdatedAt is not touched; stamping it is the store's job.
func (f Fields) Apply(t Task) Task {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Notes != nil {
		t.Notes = *f.Notes
	}
	if f.Checklist != nil {
		t.Checklist = CloneChecklist(*f.Checklist)
	}
	return t
}

// TitleField returns a Fields updating only the title.
func TitleField(title string) Fields { return Fields{Title: &title} }

// NotesField returns a Fields updating only the notes.
func NotesField(notes string) Fields { return Fields{Notes: &notes} }

// ChecklistField returns a Fields replacing the whole checklist.
func ChecklistField(items []ChecklistItem) Fields {
	items = CloneChecklist(items)
	return Fields{Checklist: &items}
}

// CloneChecklist returns a copy of items that never aliases the input.
// A nil input yields an empty, non-nil slice.
func CloneChecklist(items []ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, len(items))
	copy(out, items)
	return out
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.Checklist = CloneChecklist(t.Checklist)
	return t
}
