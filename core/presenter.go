package core

import "context"

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the transient message shown to the user until dismissed.
type Notice struct {
	Kind    NoticeKind
	Message string
	Visible bool
}

// Presenter shows notices and asks the user for confirmations.
type Presenter interface {
	// Notify shows a notice. Only one notice is visible at a time: a new one replaces the previous.
	Notify(kind NoticeKind, message string)

	// Confirm blocks until the user answers or ctx is done. Declining returns false and a nil error.
	Confirm(ctx context.Context, message string) (bool, error)
}
