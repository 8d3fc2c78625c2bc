package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AuditEventType names an audit record.
type AuditEventType string

const (
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"

	AuditCommandExec  AuditEventType = "command_exec"
	AuditCommandError AuditEventType = "command_error"

	AuditStateSave AuditEventType = "state_save"
	AuditStateLoad AuditEventType = "state_load"

	AuditIntrusionAlert AuditEventType = "intrusion_alert"
	AuditIntrusionClear AuditEventType = "intrusion_clear"

	AuditConfigReload AuditEventType = "config_reload"
)

// AuditEvent is one JSON line in the audit log.
type AuditEvent struct {
	// Timestamp is Unix milliseconds.
	Timestamp int64          `json:"ts"`
	EventType AuditEventType `json:"event"`
	SessionID string         `json:"session"`

	// Target is the file, command word or config path acted on.
	Target string `json:"target"`

	// Action is the full input line or sub-action.
	Action  string `json:"action"`
	Success bool   `json:"success"`

	// Code is the numeric error code, 0 on success.
	Code    int                    `json:"code"`
	Error   string                 `json:"error"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"fields"`
}

var (
	auditFile   *os.File
	auditZap    *zap.Logger
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes audit events, optionally scoped to a session.
type AuditLogger struct {
	sessionID string
}

// InitAudit opens <logs>/<date>_audit.log. No-op unless debug mode is on.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	auditPath := filepath.Join(LogsDir(), fmt.Sprintf("%s_audit.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	// Records carry their own ts; the encoder adds only the message.
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})
	auditZap = zap.New(zapcore.NewCore(enc, zapcore.AddSync(file), zapcore.DebugLevel))
	return nil
}

// CloseAudit flushes and closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditZap != nil {
		_ = auditZap.Sync()
		auditZap = nil
	}
	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger
func Audit() *AuditLogger {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}
	if event.Fields == nil {
		event.Fields = make(map[string]interface{})
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditZap == nil {
		return
	}
	auditZap.Info(event.Message,
		zap.Int64("ts", event.Timestamp),
		zap.String("event", string(event.EventType)),
		zap.String("session", event.SessionID),
		zap.String("target", event.Target),
		zap.String("action", event.Action),
		zap.Bool("success", event.Success),
		zap.Int("code", event.Code),
		zap.String("error", event.Error),
		zap.Any("fields", event.Fields),
	)
}

// =============================================================================
// CONVENIENCE METHODS
// =============================================================================

// SessionStart records the start of an interpreter session.
func (a *AuditLogger) SessionStart(sessionID string) {
	a.Log(AuditEvent{
		EventType: AuditSessionStart,
		SessionID: sessionID,
		Success:   true,
		Message:   "session started",
	})
}

// SessionEnd records the end of a session with its step count.
func (a *AuditLogger) SessionEnd(sessionID string, steps int64, durationMs int64) {
	a.Log(AuditEvent{
		EventType: AuditSessionEnd,
		SessionID: sessionID,
		Success:   true,
		Message:   fmt.Sprintf("session ended after %d steps", steps),
		Fields:    map[string]interface{}{"steps": steps, "dur_ms": durationMs},
	})
}

// CommandExec records a successful command.
func (a *AuditLogger) CommandExec(command, line string, durationMs int64) {
	a.Log(AuditEvent{
		EventType: AuditCommandExec,
		Target:    command,
		Action:    line,
		Success:   true,
		Fields:    map[string]interface{}{"dur_ms": durationMs},
	})
}

// CommandError records a failed command with its numeric code.
func (a *AuditLogger) CommandError(command, line string, code int, err error) {
	e := AuditEvent{
		EventType: AuditCommandError,
		Target:    command,
		Action:    line,
		Code:      code,
	}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}

// StateSave records a save of session state to path.
func (a *AuditLogger) StateSave(path string, size int, err error) {
	a.stateEvent(AuditStateSave, path, size, err)
}

// StateLoad records a load of session state from path.
func (a *AuditLogger) StateLoad(path string, size int, err error) {
	a.stateEvent(AuditStateLoad, path, size, err)
}

func (a *AuditLogger) stateEvent(t AuditEventType, path string, size int, err error) {
	e := AuditEvent{
		EventType: t,
		Target:    path,
		Success:   err == nil,
		Fields:    map[string]interface{}{"bytes": size},
	}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}

// Intrusion records an alert transition. raised is true when the alert turns on.
func (a *AuditLogger) Intrusion(raised bool, steps, threshold int64) {
	t := AuditIntrusionClear
	msg := "step rate back under threshold"
	if raised {
		t = AuditIntrusionAlert
		msg = "step count exceeded threshold"
	}
	a.Log(AuditEvent{
		EventType: t,
		Success:   true,
		Message:   msg,
		Fields:    map[string]interface{}{"steps": steps, "threshold": threshold},
	})
}

// ConfigReload records a config hot reload attempt.
func (a *AuditLogger) ConfigReload(path string, err error) {
	e := AuditEvent{
		EventType: AuditConfigReload,
		Target:    path,
		Success:   err == nil,
	}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}
