package backend

import (
	"context"

	"github.com/yllada/gterm/session"
)

// StatusUpdater receives connection status patches. *session.Registry
// implements it.
type StatusUpdater interface {
	UpdateStatus(id string, patch session.StatusPatch)
}

// ReportStatus records the outcome of a connect call against session id.
// Success marks the session connected; failure marks it failed with the
// result message.
func ReportStatus[T any](u StatusUpdater, id string, res Result[T]) {
	if res.OK {
		u.UpdateStatus(id, session.Connected())
		return
	}
	u.UpdateStatus(id, session.Failed(res.Msg, ""))
}

// Connect marks session id as connecting, runs fn and reports the result.
func Connect[T any](ctx context.Context, u StatusUpdater, id string, fn Func, tr Translator) Result[T] {
	u.UpdateStatus(id, session.Connecting())
	res := Call[T](ctx, fn, tr)
	ReportStatus(u, id, res)
	return res
}
