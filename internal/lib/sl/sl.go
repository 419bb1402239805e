// Package sl holds small helpers for log/slog attributes.
package sl

import "log/slog"

// Err returns an "error" attribute with the error text.
//
//	log.Error("failed to reevaluate store", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
