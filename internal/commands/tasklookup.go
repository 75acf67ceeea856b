package commands

import (
	"neolist/internal/syncer"
	"neolist/internal/todo"
)

// lookupTask finds the task at the reference's position in the snapshot.
func lookupTask(snap syncer.Snapshot, ref TaskRef) (todo.Task, error) {
	if ref.Task < 1 || ref.Task > len(snap.Tasks) {
		return todo.Task{}, usageErrorf("task number out of range: %d", ref.Task)
	}
	return snap.Tasks[ref.Task-1].Clone(), nil
}

// lookupItem finds the referenced sub-task and its task.
func lookupItem(snap syncer.Snapshot, ref TaskRef) (todo.Task, todo.ChecklistItem, error) {
	task, err := lookupTask(snap, ref)
	if err != nil {
		return todo.Task{}, todo.ChecklistItem{}, err
	}
	if ref.Item < 1 || ref.Item > len(task.Checklist) {
		return todo.Task{}, todo.ChecklistItem{}, usageErrorf("item number out of range: %s", ref)
	}
	return task, task.Checklist[ref.Item-1], nil
}

// resolveTask parses args[0] as a task reference and looks it up in the
// controller's current snapshot.
func resolveTask(ctl *syncer.Controller, args []string) (todo.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return todo.Task{}, err
	}
	if ref.HasItem() {
		return todo.Task{}, usageErrorf("expected a task, got sub-task %s", ref)
	}
	return lookupTask(ctl.Snapshot(), ref)
}

// resolveItem parses args[0] as a sub-task reference and looks it up.
func resolveItem(ctl *syncer.Controller, args []string) (todo.Task, todo.ChecklistItem, error) {
	ref, err := ParseItemRef(args)
	if err != nil {
		return todo.Task{}, todo.ChecklistItem{}, err
	}
	return lookupItem(ctl.Snapshot(), ref)
}
