package tui

import "strings"

// commandRecall tracks up/down browsing through past commands in the
// composer. cursor == len(entries) means the user is on their current
// draft, not browsing.
type commandRecall struct {
	entries []string
	cursor  int
	draft   string
}

func (r *commandRecall) Set(entries []string) {
	r.entries = append([]string(nil), entries...)
	r.cursor = len(r.entries)
	r.draft = ""
}

func (r *commandRecall) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.entries = append(r.entries, text)
	r.cursor = len(r.entries)
	r.draft = ""
}

// Prev steps back one command, stashing the draft on first entry.
func (r *commandRecall) Prev(current string) (string, bool) {
	if len(r.entries) == 0 {
		return "", false
	}
	if r.cursor == len(r.entries) {
		r.draft = current
	}
	if r.cursor > 0 {
		r.cursor--
	}
	return r.entries[r.cursor], true
}

// Next steps forward, restoring the stashed draft past the newest
// entry.
func (r *commandRecall) Next() (string, bool) {
	if len(r.entries) == 0 || r.cursor == len(r.entries) {
		return "", false
	}
	if r.cursor < len(r.entries)-1 {
		r.cursor++
		return r.entries[r.cursor], true
	}
	r.cursor = len(r.entries)
	return r.draft, true
}
