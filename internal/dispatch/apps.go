package dispatch

import (
	"context"
	"fmt"
	log "log/slog"
	"os/exec"
	"strings"

	"aura/internal/assistant"
)

// AppLauncher starts desktop programs by name. The process is detached;
// the assistant does not wait for it.
type AppLauncher struct {
	// Aliases maps spoken names to executables ("browser" -> "firefox").
	Aliases map[string]string
}

func (l *AppLauncher) Execute(ctx context.Context, params map[string]string) (assistant.ActionResult, error) {
	name := strings.TrimSpace(params["app"])
	if name == "" {
		return assistant.ActionResult{OK: false, Message: "Which application should I open?"}, nil
	}

	bin := name
	if alias, ok := l.Aliases[strings.ToLower(name)]; ok {
		bin = alias
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return assistant.ActionResult{
			OK:      false,
			Message: fmt.Sprintf("I couldn't find %s on this machine.", name),
		}, nil
	}

	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return assistant.ActionResult{}, fmt.Errorf("start %s: %w", bin, err)
	}
	go cmd.Wait() // reap, don't care about the exit status

	log.Info("launched", "app", bin, "pid", cmd.Process.Pid)
	return assistant.ActionResult{
		OK:      true,
		Message: fmt.Sprintf("Opening %s.", name),
		Payload: map[string]string{"pid": fmt.Sprint(cmd.Process.Pid)},
	}, nil
}
