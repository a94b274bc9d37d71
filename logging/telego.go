package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// TelegoLogger adapts slog.Logger to the logger interface expected by telego
type TelegoLogger struct {
	Logger *slog.Logger
}

func (l TelegoLogger) Debugf(format string, args ...any) {
	l.Logger.Debug("telego: " + strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l TelegoLogger) Errorf(format string, args ...any) {
	l.Logger.Error("telego: " + strings.TrimSpace(fmt.Sprintf(format, args...)))
}
