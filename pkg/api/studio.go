package api

type Tool struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

type ApiKey struct {
	ApiKey string `json:"api_key"`
}

type ApiKeyStatus struct {
	Configured bool `json:"configured"`
}

type GenerateRequest struct {
	Kind  string `json:"kind"`
	Input string `json:"input"`
}

// GenerateResponse carries either Text (Ok) or Error, which always starts with "Error: ".
type GenerateResponse struct {
	Kind  string `json:"kind"`
	Ok    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

type HistoryParams struct {
	Limit *int `schema:"limit"`
}

type HistoryItem struct {
	Timestamp string `json:"timestamp"`
	Label     string `json:"label"`
	Payload   string `json:"payload"`
	Title     string `json:"title"`
}

type KindUsage struct {
	Kind             string `json:"kind"`
	Generations      int64  `json:"generations"`
	Failures         int64  `json:"failures"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
}
