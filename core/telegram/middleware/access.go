package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions configures the admin gate. A zero AdminID disables gating,
// which effectively locks admin-only commands when no admin is configured.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// WithAdminCheck wraps handler so only the configured admin can run it.
// Non-admin senders get OnReject (or silence) and no handler execution.
func WithAdminCheck(opts AdminOptions, adminOnly bool, handler tele.HandlerFunc) tele.HandlerFunc {
	if !adminOnly {
		return handler
	}
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil || opts.AdminID == 0 || sender.ID != opts.AdminID {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return handler(c)
	}
}
