package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"creative-studio/pkg/api"
	"creative-studio/pkg/client"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const recentEntries = 5

var errQuit = errors.New("quit")

type shell struct {
	client    *client.Client
	sessionID string
	in        *bufio.Reader
	out       io.Writer
}

// terminalKey reads the api key from OPENAI_API_KEY, or masked from the
// terminal, falling back to a plain line when stdin is not a terminal.
func terminalKey(in *bufio.Reader, out io.Writer) (string, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}

	fmt.Fprint(out, "OpenAI API key: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *shell) chooseTool(tools []api.Tool) (api.Tool, error) {
	for {
		fmt.Fprintln(s.out)
		for i, tool := range tools {
			fmt.Fprintf(s.out, "  %d) %s\n", i+1, tool.Name)
		}
		fmt.Fprint(s.out, "Choose a tool (q to quit): ")

		line, err := s.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return api.Tool{}, errQuit
		}
		line = strings.TrimSpace(line)
		if line == "q" {
			return api.Tool{}, errQuit
		}

		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(tools) {
			return tools[n-1], nil
		}
		fmt.Fprintln(s.out, "invalid choice")
	}
}

func prompt(kind string) string {
	switch kind {
	case "story":
		return "Enter a story topic: "
	case "image_prompt":
		return "Describe the image you want a prompt for: "
	}
	return "You: "
}

// historyLimit is how many entries to show after a generation. Chat shows the
// whole transcript.
func historyLimit(kind string) int {
	if kind == "chat" {
		return 0
	}
	return recentEntries
}

// generate shows a spinner until the studio answers.
func (s *shell) generate(ctx context.Context, kind, input string) (api.GenerateResponse, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	res, err := s.client.Generate(ctx, s.sessionID, kind, input)
	close(done)
	_ = bar.Finish()
	return res, err
}

func (s *shell) printHistory(items []api.HistoryItem, kind string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(s.out, "\nHistory:")
	for _, item := range items {
		if kind == "chat" {
			fmt.Fprintf(s.out, "  [%s] %s: %s\n", item.Timestamp, item.Label, item.Payload)
		} else {
			fmt.Fprintf(s.out, "  %s\n", item.Title)
		}
	}
}

func (s *shell) loop(ctx context.Context, tools []api.Tool) error {
	for {
		tool, err := s.chooseTool(tools)
		if err != nil {
			return nil
		}

		fmt.Fprint(s.out, prompt(tool.Kind))
		input, err := s.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("error reading input: %w", err)
		}
		input = strings.TrimRight(input, "\r\n")
		if input == "" {
			fmt.Fprintln(s.out, "please enter some text")
			continue
		}

		res, err := s.generate(ctx, tool.Kind, input)
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		if res.Ok {
			fmt.Fprintf(s.out, "\n%s\n", res.Text)
		} else {
			fmt.Fprintf(s.out, "\n%s\n", res.Error)
		}

		items, err := s.client.History(ctx, s.sessionID, tool.Kind, historyLimit(tool.Kind))
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		s.printHistory(items, tool.Kind)
	}
}

// run drives one session. The session is always ended before run returns so
// the key does not outlive the shell on the server.
func run(ctx context.Context, c *client.Client, in *bufio.Reader, out io.Writer, readKey func() (string, error)) error {
	tools, err := c.Tools(ctx)
	if err != nil {
		return fmt.Errorf("error listing tools: %w", err)
	}

	sessionID, err := c.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("error starting session: %w", err)
	}
	defer func() {
		if err := c.EndSession(context.WithoutCancel(ctx), sessionID); err != nil {
			log.Printf("error ending session: %v", err)
		}
	}()

	apiKey, err := readKey()
	if err != nil {
		return fmt.Errorf("error reading api key: %w", err)
	}
	if err := c.SetApiKey(ctx, sessionID, apiKey); err != nil {
		return fmt.Errorf("error setting api key: %w", err)
	}

	s := &shell{client: c, sessionID: sessionID, in: in, out: out}
	return s.loop(ctx, tools)
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base url of the studio server")
	flag.Parse()

	in := bufio.NewReader(os.Stdin)
	readKey := func() (string, error) { return terminalKey(in, os.Stdout) }

	if err := run(context.Background(), client.New(*addr), in, os.Stdout, readKey); err != nil {
		log.Fatalf("%v", err)
	}
}
