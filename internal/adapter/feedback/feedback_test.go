package feedback_test

import (
	"fmt"
	"testing"

	"github.com/niksmo/game-storefront/internal/adapter/feedback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	t.Run("DrainEmpties", func(t *testing.T) {
		j := feedback.New(0)
		j.Push(feedback.LevelSuccess, "added to cart")
		j.Push(feedback.LevelInfo, "removed from cart")

		msgs := j.Drain()
		require.Len(t, msgs, 2)
		assert.Equal(t, "added to cart", msgs[0].Text)
		assert.Equal(t, feedback.LevelInfo, msgs[1].Level)
		assert.False(t, msgs[0].At.IsZero())

		assert.NotNil(t, j.Drain())
		assert.Empty(t, j.Drain())
	})

	t.Run("DropsOldest", func(t *testing.T) {
		j := feedback.New(3)
		for i := range 5 {
			j.Push(feedback.LevelInfo, fmt.Sprint(i))
		}
		msgs := j.Drain()
		require.Len(t, msgs, 3)
		assert.Equal(t, "2", msgs[0].Text)
		assert.Equal(t, "4", msgs[2].Text)
	})
}
