package history_test

import (
	"fmt"
	"testing"
	"time"

	"creative-studio/internal/generation"
	"creative-studio/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 5, 1, 14, 2, 11, 0, time.UTC)

func appendN(t *testing.T, store *history.Store, kind generation.Kind, n int) []history.Entry {
	var all []history.Entry
	for i := 0; i < n; i++ {
		e := history.NewEntry(start.Add(time.Duration(i)*time.Second), fmt.Sprintf("topic %d", i), fmt.Sprintf("payload %d", i))
		require.NoError(t, store.Append(kind, e))
		all = append(all, e)
	}
	return all
}

func TestRecentFewerThanWindow(t *testing.T) {
	for n := 0; n < history.DefaultWindow; n++ {
		store := history.NewStore()
		all := appendN(t, store, generation.Story, n)

		recent, err := store.Recent(generation.Story, history.DefaultWindow)
		require.NoError(t, err)
		assert.Len(t, recent, n)
		for i := range all {
			assert.Equal(t, all[i], recent[i])
		}
	}
}

func TestRecentReturnsLastFive(t *testing.T) {
	store := history.NewStore()
	all := appendN(t, store, generation.ImagePrompt, 12)

	recent, err := store.Recent(generation.ImagePrompt, history.DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, all[7:], recent)
	assert.Equal(t, "payload 11", recent[len(recent)-1].Payload)
}

func TestRecentIsIdempotent(t *testing.T) {
	store := history.NewStore()
	appendN(t, store, generation.Story, 7)

	first, err := store.Recent(generation.Story, history.DefaultWindow)
	require.NoError(t, err)
	second, err := store.Recent(generation.Story, history.DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 7, store.Len(generation.Story))

	first[0].Payload = "mutated"
	third, err := store.Recent(generation.Story, history.DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestRecentAll(t *testing.T) {
	store := history.NewStore()
	all := appendN(t, store, generation.Chat, 9)

	recent, err := store.Recent(generation.Chat, 0)
	require.NoError(t, err)
	assert.Equal(t, all, recent)
}

func TestSequencesAreIndependent(t *testing.T) {
	store := history.NewStore()
	appendN(t, store, generation.Story, 3)

	chat, err := store.Recent(generation.Chat, history.DefaultWindow)
	require.NoError(t, err)
	assert.Empty(t, chat)

	prompts, err := store.Recent(generation.ImagePrompt, history.DefaultWindow)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestUnknownKind(t *testing.T) {
	store := history.NewStore()
	assert.ErrorIs(t, store.Append("poem", history.Entry{}), generation.ErrUnknownKind)

	_, err := store.Recent("poem", 5)
	assert.ErrorIs(t, err, generation.ErrUnknownKind)
}

func TestEntryFormatting(t *testing.T) {
	e := history.NewEntry(start, "a lonely lighthouse on a cliff above the stormy sea", "Once...")
	assert.Equal(t, "14:02:11", e.Timestamp)
	assert.Equal(t, "14:02:11 - a lonely lighthouse on a cliff...", e.Title())

	short := history.NewEntry(start, "cats", "Once...")
	assert.Equal(t, "14:02:11 - cats...", short.Title())
}
