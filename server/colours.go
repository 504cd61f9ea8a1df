package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ANSI colours for the development console
const (
	Green      = "\033[32m"
	Yellow     = "\033[33m"
	Blue       = "\033[34m"
	Magenta    = "\033[35m"
	Cyan       = "\033[36m"
	Red        = "\033[31m"
	Gray       = "\033[90m"
	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:     Green,
	http.MethodPost:    Blue,
	http.MethodPut:     Cyan,
	http.MethodDelete:  Yellow,
	http.MethodPatch:   Magenta,
	http.MethodOptions: Gray,
}

func colorize(color, s string) string {
	return color + s + ResetColor
}

// statusColor groups responses the way they read in a request log.
func statusColor(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return Red
	case status >= http.StatusBadRequest:
		return Yellow
	case status >= http.StatusMultipleChoices:
		return Cyan
	}
	return Green
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%-19s] %s", colorize(color, fmt.Sprintf(" %-7s", method)), path)
}
