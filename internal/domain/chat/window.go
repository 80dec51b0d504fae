package chat

// HistoryWindow bounds how many prior turns are embedded in a prompt
const HistoryWindow = 10

// Window returns the most recent n turns in chronological order,
// oldest first. Input is assumed chronological already.
func Window(history []Turn, n int) []Turn {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}
