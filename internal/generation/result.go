package generation

const failurePrefix = "Error: "

// Result is either a successful completion or a displayable failure message.
// The zero value is not a valid result.
type Result struct {
	text    string
	failure string
	ok      bool

	Usage Usage
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

func Success(text string) Result {
	return Result{text: text, ok: true}
}

func Failure(err error) Result {
	return Result{failure: failurePrefix + err.Error()}
}

func (r Result) OK() bool {
	return r.ok
}

func (r Result) Text() string {
	return r.text
}

// Message is the failure message, always prefixed with "Error: ".
func (r Result) Message() string {
	return r.failure
}

// Display is whatever the shell should render in the result area.
func (r Result) Display() string {
	if r.ok {
		return r.text
	}
	return r.failure
}
