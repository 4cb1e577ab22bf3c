package generation

const (
	Model       = "gpt-3.5-turbo"
	Temperature = 0.7
)

type Template struct {
	Prefix          string
	MaxOutputTokens int64
	Temperature     float64
}

var templates = map[Kind]Template{
	Chat: {
		Prefix:          "",
		MaxOutputTokens: 150,
		Temperature:     Temperature,
	},
	Story: {
		Prefix:          "Write a creative short story about: ",
		MaxOutputTokens: 500,
		Temperature:     Temperature,
	},
	ImagePrompt: {
		Prefix:          "Generate a detailed, creative image prompt about: ",
		MaxOutputTokens: 100,
		Temperature:     Temperature,
	},
}

func TemplateFor(kind Kind) (Template, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return Template{}, ErrUnknownKind
	}
	return tmpl, nil
}

// EffectivePrompt is the text sent verbatim to the provider for the given kind.
func EffectivePrompt(input string, kind Kind) (string, error) {
	tmpl, err := TemplateFor(kind)
	if err != nil {
		return "", err
	}
	return tmpl.Prefix + input, nil
}
