package recognize

import (
	"regexp"
	"strings"

	"aura/internal/assistant"
)

// Local fast-path patterns. Anything they miss goes to the classifier, so
// they only cover unambiguous phrasings and must never misfire.
var (
	launchRe = regexp.MustCompile(`(?i)^(?:open|launch|start)\s+(.+)$`)
	remindRe = regexp.MustCompile(`(?i)^remind me(?: to)?\s+(.+?)(?:\s+(?:at|in|on)\s+(.+))?$`)
	notifyRe = regexp.MustCompile(`(?i)^(?:notify me|send (?:a )?notification)[:,]?\s*(.+)$`)
	fileRe   = regexp.MustCompile(`(?i)^(delete|remove|copy|move|rename)\s+(?:the )?file\s+(\S+)(?:\s+to\s+(\S+))?$`)
	listRe   = regexp.MustCompile(`(?i)^list\s+files(?:\s+in\s+(.+))?$`)
)

var stopPhrases = []string{
	"stop listening",
	"stop",
	"goodbye",
	"good bye",
	"shut down",
	"go to sleep",
}

func matchPattern(text string) (assistant.Intent, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(text), ".!?")
	lower := strings.ToLower(trimmed)

	for _, p := range stopPhrases {
		if lower == p {
			return assistant.Intent{Kind: assistant.KindStop, Query: text}, true
		}
	}

	if m := launchRe.FindStringSubmatch(trimmed); m != nil {
		return assistant.Intent{
			Kind:   assistant.KindAppLaunch,
			Params: map[string]string{"app": strings.ToLower(strings.TrimSpace(m[1]))},
			Query:  text,
		}, true
	}

	if lower == "list reminders" || lower == "what are my reminders" {
		return assistant.Intent{
			Kind:   assistant.KindReminder,
			Params: map[string]string{"action": "list"},
			Query:  text,
		}, true
	}

	if m := remindRe.FindStringSubmatch(trimmed); m != nil {
		params := map[string]string{"action": "add", "text": strings.TrimSpace(m[1])}
		if m[2] != "" {
			params["when"] = strings.TrimSpace(m[2])
		}
		return assistant.Intent{Kind: assistant.KindReminder, Params: params, Query: text}, true
	}

	if m := notifyRe.FindStringSubmatch(trimmed); m != nil {
		return assistant.Intent{
			Kind:   assistant.KindNotification,
			Params: map[string]string{"message": strings.TrimSpace(m[1])},
			Query:  text,
		}, true
	}

	if m := fileRe.FindStringSubmatch(trimmed); m != nil {
		op := strings.ToLower(m[1])
		if op == "remove" {
			op = "delete"
		}
		if op == "rename" {
			op = "move"
		}
		params := map[string]string{"op": op, "path": m[2]}
		if m[3] != "" {
			params["dest"] = m[3]
		}
		return assistant.Intent{Kind: assistant.KindFileOp, Params: params, Query: text}, true
	}

	if m := listRe.FindStringSubmatch(trimmed); m != nil {
		params := map[string]string{"op": "list"}
		if m[1] != "" {
			params["path"] = strings.TrimSpace(m[1])
		}
		return assistant.Intent{Kind: assistant.KindFileOp, Params: params, Query: text}, true
	}

	return assistant.Intent{}, false
}
