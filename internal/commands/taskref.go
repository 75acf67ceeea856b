package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TaskRef is a parsed task or sub-task reference. Task numbers are the
// 1-based positions printed by list; Item is 0 when only a task is named.
type TaskRef struct {
	Task int
	Item int
}

// HasItem reports whether the reference names a sub-task.
func (r TaskRef) HasItem() bool {
	return r.Item != 0
}

func (r TaskRef) String() string {
	if r.HasItem() {
		return fmt.Sprintf("%d.%d", r.Task, r.Item)
	}
	return strconv.Itoa(r.Task)
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = &UsageError{Msg: "task reference required"}

	// ErrItemRefRequired indicates a task was named where a sub-task is needed.
	ErrItemRefRequired = &UsageError{Msg: "sub-task reference required (use <task>.<item>)"}
)

// ParseTaskRef parses the reference in args[0].
//
// Parsing rules:
// 1. All digits (e.g. 3) names a task
// 2. <digits>.<digits> (e.g. 3.2) names sub-task 2 of task 3
// 3. Anything else is an invalid reference
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	arg := args[0]
	invalid := usageErrorf("invalid task reference: %s", arg)

	taskPart, itemPart, hasItem := strings.Cut(arg, ".")
	if !isAllDigits(taskPart) || (hasItem && !isAllDigits(itemPart)) {
		return TaskRef{}, invalid
	}
	task, err := strconv.Atoi(taskPart)
	if err != nil {
		return TaskRef{}, invalid
	}
	ref := TaskRef{Task: task}
	if hasItem {
		if ref.Item, err = strconv.Atoi(itemPart); err != nil || ref.Item == 0 {
			return TaskRef{}, usageErrorf("item number out of range: %s", arg)
		}
	}
	return ref, nil
}

// ParseItemRef is ParseTaskRef for commands that act on a sub-task.
func ParseItemRef(args []string) (TaskRef, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return TaskRef{}, err
	}
	if !ref.HasItem() {
		return TaskRef{}, ErrItemRefRequired
	}
	return ref, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
