package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"creative-studio/internal/generation"
	"creative-studio/internal/history"
	"creative-studio/internal/llm"

	"github.com/google/uuid"
)

var (
	ErrNoCredential    = errors.New("provider api key has not been configured for this session")
	ErrEmptyCredential = errors.New("provider api key must not be empty")
	ErrEmptyInput      = errors.New("input must not be empty")
	ErrBusy            = errors.New("a generation is already in progress for this session")
	ErrNotFound        = errors.New("session not found")
)

// Observer is told about every provider call a session makes. It runs after
// the session is free for its next generation.
type Observer interface {
	Observe(ctx context.Context, sessionId uuid.UUID, kind generation.Kind, result generation.Result, latency time.Duration)
}

type Options struct {
	Factory         llm.Factory
	ProviderTimeout time.Duration
	Observer        Observer
	Clock           func() time.Time
}

// Session owns one user's credential and history. At most one generation
// runs per session; a second one is rejected with ErrBusy.
type Session struct {
	Id uuid.UUID

	inflight sync.Mutex

	credLock sync.RWMutex
	service  *generation.Service

	history *history.Store
	opts    Options
}

func New(id uuid.UUID, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Session{
		Id:      id,
		history: history.NewStore(),
		opts:    opts,
	}
}

// SetCredential binds a provider client for apiKey. The key lives only in
// this session's memory.
func (s *Session) SetCredential(apiKey string) error {
	if apiKey == "" {
		return ErrEmptyCredential
	}

	completer, err := s.opts.Factory(apiKey)
	if err != nil {
		return fmt.Errorf("error creating provider client: %w", err)
	}

	s.credLock.Lock()
	s.service = generation.NewService(completer, s.opts.ProviderTimeout)
	s.credLock.Unlock()

	slog.Info("provider credential configured", "session_id", s.Id)
	return nil
}

func (s *Session) HasCredential() bool {
	s.credLock.RLock()
	defer s.credLock.RUnlock()
	return s.service != nil
}

// Generate runs one provider call and records successful results in the
// matching history sequence. Provider failures are returned as a Failure
// result, not an error; errors are reserved for requests that never reach
// the provider.
func (s *Session) Generate(ctx context.Context, input string, kind generation.Kind) (generation.Result, error) {
	if _, err := generation.TemplateFor(kind); err != nil {
		return generation.Result{}, err
	}
	if input == "" {
		return generation.Result{}, ErrEmptyInput
	}

	s.credLock.RLock()
	service := s.service
	s.credLock.RUnlock()
	if service == nil {
		return generation.Result{}, ErrNoCredential
	}

	if !s.inflight.TryLock() {
		return generation.Result{}, ErrBusy
	}
	result, latency, err := s.run(ctx, service, input, kind)

	if s.opts.Observer != nil {
		s.opts.Observer.Observe(ctx, s.Id, kind, result, latency)
	}
	if err != nil {
		return generation.Result{}, err
	}
	return result, nil
}

// run makes the provider call and appends a successful result to history.
// It releases the in-flight guard the caller acquired.
func (s *Session) run(ctx context.Context, service *generation.Service, input string, kind generation.Kind) (generation.Result, time.Duration, error) {
	defer s.inflight.Unlock()

	start := s.opts.Clock()
	result := service.Generate(ctx, input, kind)
	latency := s.opts.Clock().Sub(start)

	if !result.OK() {
		return result, latency, nil
	}

	now := s.opts.Clock()
	var err error
	if kind == generation.Chat {
		err = s.history.Append(kind,
			history.NewEntry(now, history.RoleUser, input),
			history.NewEntry(now, history.RoleAI, result.Text()),
		)
	} else {
		err = s.history.Append(kind, history.NewEntry(now, input, result.Text()))
	}
	if err != nil {
		return result, latency, fmt.Errorf("error recording history: %w", err)
	}
	return result, latency, nil
}

// History returns the last n entries for kind, oldest first; n <= 0 returns all.
func (s *Session) History(kind generation.Kind, n int) ([]history.Entry, error) {
	return s.history.Recent(kind, n)
}
