package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creative-studio/internal/api"
	"creative-studio/internal/database"
	"creative-studio/internal/generation"
	"creative-studio/internal/session"
	"creative-studio/pkg/client"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type echoCompleter struct{}

func (echoCompleter) Complete(ctx context.Context, req generation.CompletionRequest) (generation.Completion, error) {
	return generation.Completion{Text: "echo " + req.Prompt}, nil
}

func newStudio(t *testing.T) (*client.Client, *session.Cache) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())

	cache := session.NewCache(4, session.Options{
		Factory: func(apiKey string) (generation.Completer, error) {
			return echoCompleter{}, nil
		},
		ProviderTimeout: time.Second,
	})

	server := httptest.NewServer(api.NewRouter(api.NewStudioService(db, cache), []string{"*"}, 5*time.Second))
	t.Cleanup(server.Close)

	return client.New(server.URL), cache
}

func staticKey(key string) func() (string, error) {
	return func() (string, error) { return key, nil }
}

func TestHistoryLimit(t *testing.T) {
	assert.Equal(t, 0, historyLimit("chat"))
	assert.Equal(t, recentEntries, historyLimit("story"))
	assert.Equal(t, recentEntries, historyLimit("image_prompt"))
}

func TestRunShowsWholeChatTranscript(t *testing.T) {
	c, cache := newStudio(t)

	in := bufio.NewReader(strings.NewReader("3\nfirst\n3\nsecond\n3\nthird\nq\n"))
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, in, &out, staticKey("sk-test")))

	// Six turns exist after the third message; the first one is still shown.
	assert.Equal(t, 3, strings.Count(out.String(), "You: first"))
	assert.Contains(t, out.String(), "AI: echo third")
	assert.Equal(t, 0, cache.Len())
}

func TestRunEndsSessionWhenKeyRejected(t *testing.T) {
	c, cache := newStudio(t)

	in := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer
	err := run(context.Background(), c, in, &out, staticKey(""))
	assert.ErrorContains(t, err, "error setting api key")
	assert.Equal(t, 0, cache.Len())
}
