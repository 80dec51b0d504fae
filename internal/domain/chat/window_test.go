package chat

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turns(n int) []Turn {
	out := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		typ := TypeUser
		if i%2 == 1 {
			typ = TypeAssistant
		}
		out = append(out, Turn{Type: typ, Content: "msg-" + strconv.Itoa(i)})
	}
	return out
}

func TestWindow_KeepsLastN(t *testing.T) {
	history := turns(25)
	got := Window(history, HistoryWindow)

	require.Len(t, got, HistoryWindow)
	assert.Equal(t, "msg-15", got[0].Content)
	assert.Equal(t, "msg-24", got[len(got)-1].Content)
	// chronological order preserved
	for i := 1; i < len(got); i++ {
		prev, _ := strconv.Atoi(got[i-1].Content[4:])
		cur, _ := strconv.Atoi(got[i].Content[4:])
		assert.Equal(t, prev+1, cur)
	}
}

func TestWindow_ShortHistoryUnchanged(t *testing.T) {
	history := turns(3)
	got := Window(history, HistoryWindow)
	assert.Equal(t, history, got)
}

func TestWindow_Empty(t *testing.T) {
	assert.Empty(t, Window(nil, HistoryWindow))
	assert.Empty(t, Window([]Turn{}, HistoryWindow))
}

func TestWindow_ReturnsCopy(t *testing.T) {
	history := turns(12)
	got := Window(history, HistoryWindow)
	got[0].Content = "mutated"
	assert.Equal(t, "msg-2", history[2].Content)
}
