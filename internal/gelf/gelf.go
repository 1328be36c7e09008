package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Writer sends GELF messages over UDP. It implements io.Writer and expects
// one zap JSON-encoded entry per Write call, so it can back a zapcore.Core.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "intake-relay"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// syslog severities used by GELF
var levels = map[string]int{
	"debug":  7,
	"info":   6,
	"warn":   4,
	"error":  3,
	"dpanic": 2,
	"panic":  2,
	"fatal":  2,
}

// Write implements io.Writer. Each call sends one GELF message.
// Lines that are not JSON objects are shipped verbatim as informational.
func (w *Writer) Write(p []byte) (int, error) {
	msg, err := json.Marshal(w.message(p))
	if err != nil {
		return len(p), nil // don't fail the log call
	}

	// Fire-and-forget
	_, _ = w.conn.Write(msg)
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}

func (w *Writer) message(p []byte) map[string]any {
	line := strings.TrimRight(string(p), "\n")

	out := map[string]any{
		"version":       "1.1",
		"host":          w.hostname,
		"short_message": line,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         6,
		"_service":      w.service,
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return out
	}

	for k, v := range entry {
		switch k {
		case "msg":
			if s, ok := v.(string); ok && s != "" {
				out["short_message"] = s
			}
		case "level":
			if s, ok := v.(string); ok {
				if lvl, found := levels[s]; found {
					out["level"] = lvl
				}
			}
		case "ts":
			if f, ok := v.(float64); ok {
				out["timestamp"] = f
			}
		case "stacktrace":
			out["full_message"] = v
		default:
			// "_id" is reserved by GELF
			if k == "id" {
				k = "field_id"
			}
			out["_"+k] = v
		}
	}
	return out
}
