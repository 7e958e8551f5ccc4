package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"aura/internal/assistant"
	"aura/internal/reminders"
)

// ReminderHandler adds and lists reminders in the persistent store.
type ReminderHandler struct {
	Store *reminders.Store
	Now   func() time.Time // test hook; nil means time.Now
}

func (h *ReminderHandler) Execute(ctx context.Context, params map[string]string) (assistant.ActionResult, error) {
	switch params["action"] {
	case "list":
		return h.list()
	case "add", "":
		return h.add(params)
	default:
		return assistant.ActionResult{
			OK:      false,
			Message: fmt.Sprintf("I can't %s reminders.", params["action"]),
		}, nil
	}
}

func (h *ReminderHandler) add(params map[string]string) (assistant.ActionResult, error) {
	text := strings.TrimSpace(params["text"])
	if text == "" {
		return assistant.ActionResult{OK: false, Message: "What should I remind you about?"}, nil
	}

	now := h.now()
	due, err := ParseWhen(params["when"], now)
	if err != nil {
		return assistant.ActionResult{
			OK:      false,
			Message: fmt.Sprintf("I didn't understand the time %q.", params["when"]),
		}, nil
	}

	id, err := h.Store.Add(text, due)
	if err != nil {
		return assistant.ActionResult{}, err
	}

	return assistant.ActionResult{
		OK:      true,
		Message: fmt.Sprintf("I'll remind you to %s at %s.", text, due.Format("15:04 on Jan 2")),
		Payload: map[string]string{"id": strconv.FormatInt(id, 10)},
	}, nil
}

func (h *ReminderHandler) list() (assistant.ActionResult, error) {
	pending, err := h.Store.Pending()
	if err != nil {
		return assistant.ActionResult{}, err
	}

	if len(pending) == 0 {
		return assistant.ActionResult{OK: true, Message: "You have no reminders."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d reminders: ", len(pending))
	for i, r := range pending {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s at %s", r.Text, r.Due.Format("15:04 on Jan 2"))
	}
	b.WriteString(".")

	return assistant.ActionResult{OK: true, Message: b.String()}, nil
}

func (h *ReminderHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var (
	inRe = regexp.MustCompile(`(?i)^(?:in\s+)?(\d+)\s+(minute|minutes|hour|hours|day|days)$`)
	atRe = regexp.MustCompile(`(?i)^(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
)

// ParseWhen turns a raw spoken time phrase into an absolute time.
// Supported: "in N minutes/hours/days", "at HH[:MM] [am|pm]", "tomorrow",
// an RFC 3339 stamp, or empty (defaults to one hour from now).
func ParseWhen(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return now.Add(time.Hour), nil
	}
	if raw == "tomorrow" {
		d := now.AddDate(0, 0, 1)
		return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, now.Location()), nil
	}

	if m := inRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch {
		case strings.HasPrefix(m[2], "minute"):
			return now.Add(time.Duration(n) * time.Minute), nil
		case strings.HasPrefix(m[2], "hour"):
			return now.Add(time.Duration(n) * time.Hour), nil
		default:
			return now.AddDate(0, 0, n), nil
		}
	}

	if m := atRe.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, fmt.Errorf("bad clock time %q", raw)
		}
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1) // next occurrence
		}
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unparseable time %q", raw)
}
