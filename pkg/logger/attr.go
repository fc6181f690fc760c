package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Provider records the authentication provider under the key "provider".
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// AccessMethod records the detected access method under the key "access_method".
func AccessMethod(method string) slog.Attr {
	return slog.String("access_method", method)
}

// LineUserID records the LINE user identifier under the key "line_user_id".
func LineUserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("line_user_id", id)
}
