package presentation

// EditorMode tags the admin dialog variant
type EditorMode int

const (
	EditorClosed EditorMode = iota
	EditorCreating
	EditorEditing
)

func (m EditorMode) String() string {
	switch m {
	case EditorCreating:
		return "creating"
	case EditorEditing:
		return "editing"
	default:
		return "closed"
	}
}

// EditorState is the dialog state owned by one admin form instance:
// Closed, Creating, or Editing a target. The zero value is Closed.
type EditorState[T any] struct {
	mode   EditorMode
	target T
}

func (s EditorState[T]) Mode() EditorMode { return s.mode }
func (s EditorState[T]) IsOpen() bool     { return s.mode != EditorClosed }

// Target returns the record being edited; false unless Editing
func (s EditorState[T]) Target() (T, bool) {
	if s.mode != EditorEditing {
		var zero T
		return zero, false
	}
	return s.target, true
}

// OpenCreate opens an empty form, discarding any edit in progress
func (s EditorState[T]) OpenCreate() EditorState[T] {
	return EditorState[T]{mode: EditorCreating}
}

// OpenEdit opens the form on target
func (s EditorState[T]) OpenEdit(target T) EditorState[T] {
	return EditorState[T]{mode: EditorEditing, target: target}
}

// Cancel closes the form without saving
func (s EditorState[T]) Cancel() EditorState[T] {
	return EditorState[T]{}
}

// Saved closes the form after a successful save. A failed save keeps the
// current state so the form stays open.
func (s EditorState[T]) Saved(err error) EditorState[T] {
	if err != nil {
		return s
	}
	return EditorState[T]{}
}
