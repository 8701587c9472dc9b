package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(i int) Turn {
	role := RoleUser
	if i%2 == 1 {
		role = RoleAssistant
	}
	return Turn{Role: role, Content: fmt.Sprintf("turn %d", i)}
}

func TestWindowEvictsOldestFirst(t *testing.T) {
	w := NewWindow(3)
	for i := 0; i < 3; i++ {
		w.Append(turn(i))
	}
	require.Equal(t, 3, w.Len())

	w.Append(turn(3))

	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []Turn{turn(1), turn(2), turn(3)}, w.Turns())
}

func TestWindowManyWraps(t *testing.T) {
	w := NewWindow(10)
	for i := 0; i < 47; i++ {
		w.Append(turn(i))
		assert.LessOrEqual(t, w.Len(), 10)
	}
	turns := w.Turns()
	require.Len(t, turns, 10)
	assert.Equal(t, "turn 37", turns[0].Content)
	assert.Equal(t, "turn 46", turns[9].Content)
}

func TestFromTurnsTruncates(t *testing.T) {
	var history []Turn
	for i := 0; i < 5; i++ {
		history = append(history, turn(i))
	}
	w := FromTurns(2, history)
	assert.Equal(t, []Turn{turn(3), turn(4)}, w.Turns())
}

func TestWindowMinimumCapacity(t *testing.T) {
	w := NewWindow(0)
	w.Append(turn(0))
	w.Append(turn(2))
	assert.Equal(t, []Turn{turn(2)}, w.Turns())
}
