package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"creative-studio/internal/generation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	calls []generation.CompletionRequest
	reply generation.Completion
	err   error
	wait  bool
}

func (f *fakeCompleter) Complete(ctx context.Context, req generation.CompletionRequest) (generation.Completion, error) {
	f.calls = append(f.calls, req)
	if f.wait {
		<-ctx.Done()
		return generation.Completion{}, ctx.Err()
	}
	return f.reply, f.err
}

func TestEffectivePrompt(t *testing.T) {
	s := "a lonely lighthouse"

	p, err := generation.EffectivePrompt(s, generation.Chat)
	require.NoError(t, err)
	assert.Equal(t, s, p)

	p, err = generation.EffectivePrompt(s, generation.Story)
	require.NoError(t, err)
	assert.Equal(t, "Write a creative short story about: "+s, p)

	p, err = generation.EffectivePrompt(s, generation.ImagePrompt)
	require.NoError(t, err)
	assert.Equal(t, "Generate a detailed, creative image prompt about: "+s, p)

	_, err = generation.EffectivePrompt(s, generation.Kind("poem"))
	assert.ErrorIs(t, err, generation.ErrUnknownKind)
}

func TestMaxTokensPassedThrough(t *testing.T) {
	expected := map[generation.Kind]int64{
		generation.Chat:        150,
		generation.Story:       500,
		generation.ImagePrompt: 100,
	}

	for kind, maxTokens := range expected {
		t.Run(kind.String(), func(t *testing.T) {
			fake := &fakeCompleter{reply: generation.Completion{Text: "ok"}}
			service := generation.NewService(fake, time.Second)

			res := service.Generate(context.Background(), "hello", kind)
			assert.True(t, res.OK())

			require.Len(t, fake.calls, 1)
			assert.Equal(t, maxTokens, fake.calls[0].MaxTokens)
			assert.Equal(t, 0.7, fake.calls[0].Temperature)
			assert.Equal(t, generation.Model, fake.calls[0].Model)
		})
	}
}

func TestGenerateStorySuccess(t *testing.T) {
	fake := &fakeCompleter{reply: generation.Completion{Text: "Once...", Usage: generation.Usage{PromptTokens: 12, CompletionTokens: 3}}}
	service := generation.NewService(fake, time.Second)

	res := service.Generate(context.Background(), "a lonely lighthouse", generation.Story)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "Write a creative short story about: a lonely lighthouse", fake.calls[0].Prompt)
	assert.Equal(t, int64(500), fake.calls[0].MaxTokens)
	assert.True(t, res.OK())
	assert.Equal(t, "Once...", res.Text())
	assert.Equal(t, "Once...", res.Display())
	assert.Equal(t, int64(12), res.Usage.PromptTokens)
}

func TestGenerateProviderError(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("timeout")}
	service := generation.NewService(fake, time.Second)

	res := service.Generate(context.Background(), "a lonely lighthouse", generation.Story)

	assert.False(t, res.OK())
	assert.Equal(t, "Error: timeout", res.Message())
	assert.Equal(t, "Error: timeout", res.Display())
	assert.Empty(t, res.Text())
}

func TestGenerateEmptyCompletionIsFailure(t *testing.T) {
	fake := &fakeCompleter{reply: generation.Completion{Text: ""}}
	service := generation.NewService(fake, time.Second)

	res := service.Generate(context.Background(), "hi", generation.Chat)

	assert.False(t, res.OK())
	assert.True(t, strings.HasPrefix(res.Message(), "Error: "))
}

func TestGenerateTimeout(t *testing.T) {
	fake := &fakeCompleter{wait: true}
	service := generation.NewService(fake, 20*time.Millisecond)

	res := service.Generate(context.Background(), "hi", generation.ImagePrompt)

	assert.False(t, res.OK())
	assert.Equal(t, "Error: "+context.DeadlineExceeded.Error(), res.Message())
}

func TestParseKind(t *testing.T) {
	for _, kind := range generation.Kinds {
		parsed, err := generation.ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := generation.ParseKind("CHAT")
	assert.ErrorIs(t, err, generation.ErrUnknownKind)
}
