package monitor

import (
	"context"
	"time"

	"github.com/macauleyjustin/dishwatch/internal/recovery"
	"github.com/macauleyjustin/dishwatch/internal/telemetry"
	"github.com/macauleyjustin/dishwatch/internal/wifi"
)

// sleepResult indicates what ended a sleep period.
type sleepResult int

const (
	sleepCompleted   sleepResult = iota // timer expired normally
	sleepCancelled                      // context was cancelled
	sleepInterrupted                    // a command was received and handled
)

// sleepOrCommand blocks for duration d, until ctx is cancelled, or until a
// command arrives on r.Commands. Commands are handled inline, which is what
// guarantees no command ever runs concurrently with a cycle.
func (r *Runner) sleepOrCommand(ctx context.Context, d time.Duration, setState func(string)) sleepResult {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return sleepCancelled
	case <-t.C:
		return sleepCompleted
	case cmd := <-r.Commands:
		r.handleCommand(ctx, cmd, setState)
		return sleepInterrupted
	}
}

// handleCommand dispatches an incoming command.
func (r *Runner) handleCommand(ctx context.Context, cmd Command, setState func(string)) {
	switch cmd.Type {
	case "connect":
		r.handleConnect(ctx, cmd, setState)
	case "disconnect":
		r.handleDisconnect(ctx, cmd)
	case "tle_refresh":
		r.handleTLERefresh(cmd)
	case "pause":
		r.handlePause(cmd)
	case "resume":
		r.handleResume(cmd)
	default:
		cmd.Reply <- CommandResult{OK: false, Error: "unknown command: " + cmd.Type}
	}
}

// handleConnect runs a manual recovery session immediately, ignoring the
// cooldown gate: a human asked, so the unattended throttle does not apply.
// The reply is sent before the attempt so the HTTP handler isn't held for
// the duration; the outcome arrives on the event stream and in the next
// status snapshot.
func (r *Runner) handleConnect(ctx context.Context, cmd Command, setState func(string)) {
	cmd.Reply <- CommandResult{OK: true, Message: "recovery session started"}

	setState("RECOVERING")
	sess := recovery.NewSession(false)
	outcome := r.Engine.Run(ctx, sess)
	r.Metrics.RecoveryAttempts.WithLabelValues(string(outcome.State)).Inc()

	snap := r.Snapshot()
	snap.LastRecovery = &outcome
	r.snapshot.Store(snap)

	if outcome.State == recovery.StateSucceeded {
		r.broadcastLog("info", "manual connect succeeded via "+outcome.SSID)
	} else {
		r.broadcastLog("warn", "manual connect ended: "+outcome.Reason)
	}
	setState("IDLE")
}

// handleDisconnect tears down the active wireless connection, if any.
func (r *Runner) handleDisconnect(ctx context.Context, cmd Command) {
	linkType, name, err := r.Connector.ActiveLink(ctx)
	if err != nil {
		cmd.Reply <- CommandResult{OK: false, Error: "active link query failed: " + err.Error()}
		return
	}
	if linkType != wifi.LinkWiFi || name == "" {
		cmd.Reply <- CommandResult{OK: false, Error: "not connected via wifi"}
		return
	}
	if err := r.Connector.Disconnect(ctx, name); err != nil {
		cmd.Reply <- CommandResult{OK: false, Error: "disconnect failed: " + err.Error()}
		return
	}
	r.broadcastLog("info", "disconnected from "+name)
	cmd.Reply <- CommandResult{OK: true, Message: "disconnected from " + name}
}

// handleTLERefresh forces an immediate element refresh.
func (r *Runner) handleTLERefresh(cmd Command) {
	n, err := r.Elements.ForceRefresh(time.Now().UTC())
	if err != nil {
		r.Metrics.TLERefreshes.WithLabelValues("error").Inc()
		cmd.Reply <- CommandResult{OK: false, Error: "element refresh failed: " + err.Error()}
		return
	}
	r.Metrics.TLERefreshes.WithLabelValues("ok").Inc()
	r.broadcastLog("info", "orbital elements refreshed")
	cmd.Reply <- CommandResult{
		OK:              true,
		Message:         "orbital elements refreshed",
		ElementsUpdated: n,
	}
}

func (r *Runner) handlePause(cmd Command) {
	if r.paused.Load() {
		cmd.Reply <- CommandResult{OK: true, Message: "monitor already paused"}
		return
	}
	r.paused.Store(true)
	r.broadcastLog("info", "monitor paused by user")
	cmd.Reply <- CommandResult{OK: true, Message: "monitor paused"}
}

func (r *Runner) handleResume(cmd Command) {
	if !r.paused.Load() {
		cmd.Reply <- CommandResult{OK: true, Message: "monitor already running"}
		return
	}
	r.paused.Store(false)
	r.broadcastLog("info", "monitor resumed by user")
	cmd.Reply <- CommandResult{OK: true, Message: "monitor resumed"}
}

func (r *Runner) broadcast(v map[string]any) {
	v["ts"] = telemetry.NowTS()
	v["component"] = "monitor"
	r.Hub.BroadcastJSON(v)
}

func (r *Runner) broadcastLog(level, message string) {
	r.Log.Printf("%s: %s", level, message)
	if r.LogSink != nil {
		r.LogSink(level, message)
	}
	r.broadcast(map[string]any{
		"type":    "log",
		"level":   level,
		"message": message,
	})
}
