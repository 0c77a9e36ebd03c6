// Package callbacks decodes telebot callback data ("\f<unique>|<payload>").
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits raw callback data into unique and payload. The
// payload part is optional.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackKey returns the callback unique, falling back to parsing Data when
// telebot delivered the update through the generic OnCallback endpoint.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	unique, _ := ParseCallbackData(cb)
	return unique
}

// CallbackPayload returns the part after '|'. Always parsed from Data since
// cb.Unique is empty on the generic endpoint.
func CallbackPayload(c tele.Context) string {
	_, payload := ParseCallbackData(c.Callback())
	return payload
}
