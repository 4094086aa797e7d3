package apexlog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// Init sets up Apex with a custom handler and a log level from the KEEP_LOG
// env variable.
func Init() {
	level := strings.ToUpper(os.Getenv("KEEP_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&Handler{})
	log.SetLevelFromString(level)
}

// Handler formats log messages and writes to stdout.
type Handler struct{}

// HandleLog implements the log.Handler interface.
func (h *Handler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	fields := formatFields(e.Fields)
	if fields != "" {
		fields = " " + fields
	}
	fmt.Fprintf(os.Stdout, "%s %.1s %s%s\n", timestamp, level, e.Message, fields)
	return nil
}

func formatFields(fields log.Fields) string {
	if len(fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, fields[name]))
	}
	return strings.Join(parts, " ")
}
