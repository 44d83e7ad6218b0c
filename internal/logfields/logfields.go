package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyName       = "paste_name"
	KeyTitle      = "title"
	KeyLanguage   = "language"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyHost       = "host"
	KeyRemote     = "remote"
	KeySubject    = "subject"
	KeyEntries    = "entries"
	KeyBytes      = "bytes"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func Language(l string) slog.Attr     { return slog.String(KeyLanguage, l) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Host(h string) slog.Attr         { return slog.String(KeyHost, h) }
func Remote(r string) slog.Attr       { return slog.String(KeyRemote, r) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Entries(n int) slog.Attr         { return slog.Int(KeyEntries, n) }
func Bytes(n int64) slog.Attr         { return slog.Int64(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
