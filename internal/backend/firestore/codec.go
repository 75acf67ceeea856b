package firestore

import (
	"fmt"
	"math"
	"path"

	fs "google.golang.org/api/firestore/v1"

	"neolist/internal/todo"
)

// Document field names. They match the todo JSON tags.
const (
	fieldTitle     = "title"
	fieldNotes     = "notes"
	fieldChecklist = "checklist"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"

	itemID        = "id"
	itemText      = "text"
	itemCompleted = "completed"
)

// Members of fs.Value that must be sent even when they hold the zero value.
const (
	forceString  = "StringValue"
	forceBoolean = "BooleanValue"
	forceInteger = "IntegerValue"
)

func stringValue(s string) fs.Value {
	return fs.Value{StringValue: s, ForceSendFields: []string{forceString}}
}

func boolValue(b bool) fs.Value {
	return fs.Value{BooleanValue: b, ForceSendFields: []string{forceBoolean}}
}

func intValue(n int64) fs.Value {
	return fs.Value{IntegerValue: n, ForceSendFields: []string{forceInteger}}
}

func checklistValue(items []todo.ChecklistItem) fs.Value {
	values := make([]*fs.Value, 0, len(items))
	for _, it := range items {
		values = append(values, &fs.Value{MapValue: &fs.MapValue{Fields: map[string]fs.Value{
			itemID:        stringValue(it.ID),
			itemText:      stringValue(it.Text),
			itemCompleted: boolValue(it.Completed),
		}}})
	}
	return fs.Value{ArrayValue: &fs.ArrayValue{Values: values}}
}

// encodeTask returns the stored document of a task. The ID is not part of it.
func encodeTask(t todo.Task) *fs.Document {
	return &fs.Document{Fields: map[string]fs.Value{
		fieldTitle:     stringValue(t.Title),
		fieldNotes:     stringValue(t.Notes),
		fieldChecklist: checklistValue(t.Checklist),
		fieldCreatedAt: intValue(t.CreatedAt),
		fieldUpdatedAt: intValue(t.UpdatedAt),
	}}
}

// encodePatch returns the document and update mask for a partial update.
// updatedAt is always part of both.
func encodePatch(fields todo.Fields, updatedAt int64) (*fs.Document, []string) {
	payload := map[string]fs.Value{fieldUpdatedAt: intValue(updatedAt)}
	if fields.Title != nil {
		payload[fieldTitle] = stringValue(*fields.Title)
	}
	if fields.Notes != nil {
		payload[fieldNotes] = stringValue(*fields.Notes)
	}
	if fields.Checklist != nil {
		payload[fieldChecklist] = checklistValue(*fields.Checklist)
	}
	return &fs.Document{Fields: payload}, append(fields.Paths(), fieldUpdatedAt)
}

// kind is the member set in a decoded value.
type kind int

const (
	kindZero kind = iota
	kindString
	kindBoolean
	kindInteger
	kindDouble
	kindArray
	kindMap
	kindOther
)

// kindOf reports which member of v is set. The decoded type cannot tell an
// empty string, false, 0 and null apart, so such values are kindZero and
// read as the zero value of whatever type the field expects.
func kindOf(v fs.Value) kind {
	switch {
	case v.StringValue != "":
		return kindString
	case v.BooleanValue:
		return kindBoolean
	case v.IntegerValue != 0:
		return kindInteger
	case v.DoubleValue != 0:
		return kindDouble
	case v.ArrayValue != nil:
		return kindArray
	case v.MapValue != nil:
		return kindMap
	case v.BytesValue != "", v.TimestampValue != "", v.ReferenceValue != "", v.NullValue != "",
		v.GeoPointValue != nil, v.FieldReferenceValue != "", v.FunctionValue != nil, v.PipelineValue != nil:
		return kindOther
	}
	return kindZero
}

// decodeDocument strictly decodes a stored document. A missing field or one
// holding another type is reported as todo.ErrMalformed.
func decodeDocument(doc *fs.Document) (todo.Task, error) {
	id := path.Base(doc.Name)
	fields := doc.Fields

	d := decoder{id: id}
	task := todo.Task{
		ID:        id,
		Title:     d.str(fields, fieldTitle),
		Notes:     d.str(fields, fieldNotes),
		Checklist: d.items(fields, fieldChecklist),
		CreatedAt: d.integer(fields, fieldCreatedAt),
		UpdatedAt: d.integer(fields, fieldUpdatedAt),
	}
	if d.err != nil {
		return todo.Task{}, d.err
	}
	if err := todo.Validate(task); err != nil {
		return todo.Task{}, err
	}
	return task, nil
}

// decoder keeps the first decoding failure.
type decoder struct {
	id     string
	prefix string
	err    error
}

func (d *decoder) fail(field, reason string) {
	if d.err == nil {
		d.err = &todo.FieldError{TaskID: d.id, Field: d.prefix + field, Reason: reason}
	}
}

func (d *decoder) str(fields map[string]fs.Value, name string) string {
	v, ok := fields[name]
	if !ok {
		d.fail(name, "missing")
		return ""
	}
	if k := kindOf(v); k != kindString && k != kindZero {
		d.fail(name, "not a string")
		return ""
	}
	return v.StringValue
}

func (d *decoder) boolean(fields map[string]fs.Value, name string) bool {
	v, ok := fields[name]
	if !ok {
		d.fail(name, "missing")
		return false
	}
	if k := kindOf(v); k != kindBoolean && k != kindZero {
		d.fail(name, "not a boolean")
		return false
	}
	return v.BooleanValue
}

// integer accepts integers and integral doubles, which clients writing plain
// numbers may produce.
func (d *decoder) integer(fields map[string]fs.Value, name string) int64 {
	v, ok := fields[name]
	if !ok {
		d.fail(name, "missing")
		return 0
	}
	switch kindOf(v) {
	case kindZero, kindInteger:
		return v.IntegerValue
	case kindDouble:
		if v.DoubleValue == math.Trunc(v.DoubleValue) {
			return int64(v.DoubleValue)
		}
	}
	d.fail(name, "not an integer")
	return 0
}

func (d *decoder) items(fields map[string]fs.Value, name string) []todo.ChecklistItem {
	v, ok := fields[name]
	if !ok {
		d.fail(name, "missing")
		return nil
	}
	if kindOf(v) != kindArray {
		d.fail(name, "not an array")
		return nil
	}
	items := make([]todo.ChecklistItem, 0, len(v.ArrayValue.Values))
	for i, el := range v.ArrayValue.Values {
		if el == nil || kindOf(*el) != kindMap {
			d.fail(fmt.Sprintf("%s[%d]", name, i), "not a map")
			return nil
		}
		sub := decoder{id: d.id, prefix: fmt.Sprintf("%s%s[%d].", d.prefix, name, i)}
		f := el.MapValue.Fields
		item := todo.ChecklistItem{
			ID:        sub.str(f, itemID),
			Text:      sub.str(f, itemText),
			Completed: sub.boolean(f, itemCompleted),
		}
		if sub.err != nil {
			if d.err == nil {
				d.err = sub.err
			}
			return nil
		}
		items = append(items, item)
	}
	return items
}
