package service

import (
	"strings"
	"testing"
	"time"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func userMsg(content string, at time.Time) *entity.ChatMessage {
	return &entity.ChatMessage{
		Id:        uuid.New(),
		Sender:    entity.ChatMessageSenderUser,
		Content:   content,
		CreatedAt: at,
	}
}

func aiMsg(content string, at time.Time) *entity.ChatMessage {
	return &entity.ChatMessage{
		Id:        uuid.New(),
		Sender:    entity.ChatMessageSenderAI,
		Content:   content,
		CreatedAt: at,
	}
}

func TestPairTurns(t *testing.T) {
	base := time.Now()

	t.Run("Strict alternation", func(t *testing.T) {
		turns := pairTurns([]*entity.ChatMessage{
			userMsg("A", base),
			aiMsg("X", base.Add(time.Second)),
			userMsg("B", base.Add(2*time.Second)),
			aiMsg("Y", base.Add(3*time.Second)),
		})

		assert.Len(t, turns, 2)
		assert.Equal(t, "A", turns[0].User)
		assert.Equal(t, "X", *turns[0].AI)
		assert.Equal(t, "B", turns[1].User)
		assert.Equal(t, "Y", *turns[1].AI)
	})

	t.Run("Consecutive user messages pair in arrival order", func(t *testing.T) {
		turns := pairTurns([]*entity.ChatMessage{
			userMsg("A", base),
			userMsg("B", base.Add(time.Second)),
			aiMsg("X", base.Add(2*time.Second)),
		})

		assert.Len(t, turns, 2)
		assert.Equal(t, "A", turns[0].User)
		assert.Equal(t, "X", *turns[0].AI)
		assert.Equal(t, "B", turns[1].User)
		assert.Nil(t, turns[1].AI)
	})

	t.Run("Leading AI message without a user message is dropped", func(t *testing.T) {
		turns := pairTurns([]*entity.ChatMessage{
			aiMsg("orphan", base),
			userMsg("A", base.Add(time.Second)),
			aiMsg("X", base.Add(2*time.Second)),
		})

		assert.Len(t, turns, 1)
		assert.Equal(t, "A", turns[0].User)
		assert.Equal(t, "X", *turns[0].AI)
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, pairTurns(nil))
	})
}

func TestDeriveSessionName(t *testing.T) {
	t.Run("Cuts at first period", func(t *testing.T) {
		name := deriveSessionName("Paris is the capital of France. It is known for the Eiffel Tower.")
		assert.Equal(t, "Paris is the capital of France", name)
	})

	t.Run("Cuts at first comma", func(t *testing.T) {
		name := deriveSessionName("Yes, that is correct")
		assert.Equal(t, "Yes", name)
	})

	t.Run("Truncates when no delimiter", func(t *testing.T) {
		long := strings.Repeat("a", 80)
		name := deriveSessionName(long)
		assert.Equal(t, 50, len([]rune(name)))
	})

	t.Run("Short response without delimiter kept whole", func(t *testing.T) {
		assert.Equal(t, "Hello there", deriveSessionName("Hello there"))
	})

	t.Run("Multibyte runes survive truncation", func(t *testing.T) {
		long := strings.Repeat("é", 80)
		name := deriveSessionName(long)
		assert.Equal(t, strings.Repeat("é", 50), name)
	})
}

func TestHistoryTail(t *testing.T) {
	x := "X"
	turns := []dto.TurnDTO{
		{User: "A", AI: &x},
		{User: "B", AI: &x},
		{User: "C", AI: &x},
	}

	t.Run("Returns last n in order", func(t *testing.T) {
		tail := historyTail(turns, 2)
		assert.Len(t, tail, 2)
		assert.Equal(t, "B", tail[0].User)
		assert.Equal(t, "C", tail[1].User)
	})

	t.Run("Short history returned whole", func(t *testing.T) {
		tail := historyTail(turns[:1], 2)
		assert.Len(t, tail, 1)
		assert.Equal(t, "A", tail[0].User)
	})
}
