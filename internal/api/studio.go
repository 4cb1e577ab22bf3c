package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"creative-studio/internal/database"
	"creative-studio/internal/generation"
	"creative-studio/internal/history"
	"creative-studio/internal/session"
	"creative-studio/pkg/api"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type StudioService struct {
	db       *gorm.DB
	sessions *session.Cache
}

func NewStudioService(db *gorm.DB, sessions *session.Cache) *StudioService {
	return &StudioService{db: db, sessions: sessions}
}

func (s *StudioService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Get("/tools", RestHandler(s.ListTools))
	r.Get("/usage", RestHandler(s.GetUsage))
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", RestHandler(s.StartSession))
		r.Delete("/{session_id}", RestHandler(s.EndSession))
		r.Put("/{session_id}/api-key", RestHandler(s.SetApiKey))
		r.Get("/{session_id}/api-key", RestHandler(s.GetApiKeyStatus))
		r.Post("/{session_id}/generate", RestHandler(s.Generate))
		r.Get("/{session_id}/history/{kind}", RestHandler(s.GetHistory))
	})
}

func (s *StudioService) ListTools(r *http.Request) (any, error) {
	tools := make([]api.Tool, 0, len(generation.Kinds))
	for _, kind := range generation.Kinds {
		tools = append(tools, api.Tool{Name: kind.Title(), Kind: kind.String()})
	}
	return tools, nil
}

func (s *StudioService) StartSession(r *http.Request) (any, error) {
	sess := s.sessions.Create()
	return api.StartSessionResponse{SessionID: sess.Id.String()}, nil
}

func (s *StudioService) EndSession(r *http.Request) (any, error) {
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	if err := s.sessions.End(sessionID); err != nil {
		return nil, sessionError(err)
	}
	return nil, nil
}

func (s *StudioService) getSession(r *http.Request) (*session.Session, error) {
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, sessionError(err)
	}
	return sess, nil
}

func (s *StudioService) SetApiKey(r *http.Request) (any, error) {
	sess, err := s.getSession(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.ApiKey](r)
	if err != nil {
		return nil, err
	}

	if err := sess.SetCredential(req.ApiKey); err != nil {
		return nil, sessionError(err)
	}
	return nil, nil
}

func (s *StudioService) GetApiKeyStatus(r *http.Request) (any, error) {
	sess, err := s.getSession(r)
	if err != nil {
		return nil, err
	}
	return api.ApiKeyStatus{Configured: sess.HasCredential()}, nil
}

func (s *StudioService) Generate(r *http.Request) (any, error) {
	sess, err := s.getSession(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.GenerateRequest](r)
	if err != nil {
		return nil, err
	}

	kind, err := generation.ParseKind(req.Kind)
	if err != nil {
		return nil, CodedError(http.StatusBadRequest, err)
	}

	// A provider call runs to completion even if the client goes away; the
	// session's provider timeout still bounds it.
	result, err := sess.Generate(context.WithoutCancel(r.Context()), req.Input, kind)
	if err != nil {
		return nil, sessionError(err)
	}

	if result.OK() {
		return api.GenerateResponse{Kind: kind.String(), Ok: true, Text: result.Text()}, nil
	}
	return api.GenerateResponse{Kind: kind.String(), Ok: false, Error: result.Message()}, nil
}

func (s *StudioService) GetHistory(r *http.Request) (any, error) {
	sess, err := s.getSession(r)
	if err != nil {
		return nil, err
	}

	kind, err := generation.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return nil, CodedError(http.StatusBadRequest, err)
	}

	params, err := ParseRequestQueryParams[api.HistoryParams](r)
	if err != nil {
		return nil, err
	}

	limit := history.DefaultWindow
	if params.Limit != nil {
		if *params.Limit < 0 {
			return nil, CodedErrorf(http.StatusBadRequest, "limit must not be negative")
		}
		limit = *params.Limit
	}

	entries, err := sess.History(kind, limit)
	if err != nil {
		return nil, err
	}

	items := make([]api.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, api.HistoryItem{
			Timestamp: e.Timestamp,
			Label:     e.Label,
			Payload:   e.Payload,
			Title:     e.Title(),
		})
	}
	return items, nil
}

func (s *StudioService) GetUsage(r *http.Request) (any, error) {
	usage, err := database.UsageByKind(r.Context(), s.db)
	if err != nil {
		slog.Error("error getting usage", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving usage")
	}

	resp := make([]api.KindUsage, 0, len(usage))
	for _, u := range usage {
		resp = append(resp, api.KindUsage{
			Kind:             u.Kind,
			Generations:      u.Generations,
			Failures:         u.Failures,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
		})
	}
	return resp, nil
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return CodedError(http.StatusNotFound, err)
	case errors.Is(err, session.ErrNoCredential):
		return CodedError(http.StatusPreconditionFailed, err)
	case errors.Is(err, session.ErrBusy):
		return CodedError(http.StatusConflict, err)
	case errors.Is(err, session.ErrEmptyInput), errors.Is(err, session.ErrEmptyCredential), errors.Is(err, generation.ErrUnknownKind):
		return CodedError(http.StatusBadRequest, err)
	}
	return err
}
