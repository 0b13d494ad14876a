package terminal

// history is the ordered list of submitted lines plus the recall cursor.
// cursor is -1 when not recalling and otherwise counts back from the most
// recent entry, so it always stays within [-1, len(entries)-1].
type history struct {
	entries []string
	cursor  int
}

func newHistory() history {
	return history{cursor: -1}
}

func (h *history) push(line string) {
	h.entries = append(h.entries, line)
	h.cursor = -1
}

// previous moves one step further into the past. It reports false when the
// oldest entry is already staged.
func (h *history) previous() (string, bool) {
	if h.cursor >= len(h.entries)-1 {
		return "", false
	}
	h.cursor++
	return h.entries[len(h.entries)-1-h.cursor], true
}

// next moves one step toward the present. Reaching -1 stages an empty line.
// It reports false when the cursor is already at -1.
func (h *history) next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor--
	if h.cursor == -1 {
		return "", true
	}
	return h.entries[len(h.entries)-1-h.cursor], true
}

func (h *history) snapshot() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
