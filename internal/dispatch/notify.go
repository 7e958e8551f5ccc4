package dispatch

import (
	"context"
	log "log/slog"
	"os/exec"
	"strings"

	"aura/internal/assistant"
)

// Notifier posts desktop notifications through an external command
// (notify-send by default). Without one it still succeeds: the responder
// prints and speaks the message anyway.
type Notifier struct {
	Cmd string
}

func (n *Notifier) Execute(ctx context.Context, params map[string]string) (assistant.ActionResult, error) {
	msg := strings.TrimSpace(params["message"])
	if msg == "" {
		return assistant.ActionResult{OK: false, Message: "What should the notification say?"}, nil
	}

	if n.Cmd != "" {
		if _, err := exec.LookPath(n.Cmd); err == nil {
			if err := exec.CommandContext(ctx, n.Cmd, "Aura", msg).Run(); err != nil {
				log.Warn("desktop notification failed", "cmd", n.Cmd, "err", err)
			}
		}
	}

	return assistant.ActionResult{
		OK:      true,
		Message: msg,
		Payload: map[string]string{"notified": "true"},
	}, nil
}
