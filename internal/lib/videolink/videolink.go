// Package videolink проверяет ссылки на видео уроков.
package videolink

import (
	"net/url"
	"strings"
)

var allowedHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
}

// Valid сообщает, ведёт ли ссылка на youtube.com по http или https.
func Valid(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	_, ok := allowedHosts[strings.ToLower(u.Hostname())]
	return ok
}
