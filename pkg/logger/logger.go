package logger

import (
	"os"
	"strings"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// Logger groups the module loggers used across the bot.
type Logger struct {
	App      waLog.Logger
	Gateway  waLog.Logger
	Engine   waLog.Logger
	Dispatch waLog.Logger
	Store    waLog.Logger
	HTTP     waLog.Logger
}

func New(level string) *Logger {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		level = "INFO"
	}
	app := waLog.Stdout("Notifier", level, os.Getenv("NO_COLOR") == "")
	return &Logger{
		App:      app,
		Gateway:  app.Sub("Gateway"),
		Engine:   app.Sub("Engine"),
		Dispatch: app.Sub("Dispatch"),
		Store:    app.Sub("Store"),
		HTTP:     app.Sub("HTTP"),
	}
}

// InitForTests keeps App on stdout for debugging and silences the rest.
func InitForTests() *Logger {
	return &Logger{
		App:      waLog.Stdout("Test", "DEBUG", false),
		Gateway:  waLog.Noop,
		Engine:   waLog.Noop,
		Dispatch: waLog.Noop,
		Store:    waLog.Noop,
		HTTP:     waLog.Noop,
	}
}
