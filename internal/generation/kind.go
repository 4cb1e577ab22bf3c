package generation

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Chat        Kind = "chat"
	Story       Kind = "story"
	ImagePrompt Kind = "image_prompt"
)

var ErrUnknownKind = errors.New("unknown content kind")

// Kinds lists every kind in selector order.
var Kinds = []Kind{Story, ImagePrompt, Chat}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Chat, Story, ImagePrompt:
		return k, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}

// Title is the name of the tool that produces this kind.
func (k Kind) Title() string {
	switch k {
	case Story:
		return "Story Generator"
	case ImagePrompt:
		return "Image Prompt Generator"
	case Chat:
		return "AI Chat"
	}
	return string(k)
}
