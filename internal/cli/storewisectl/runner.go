// Package storewisectl implements the command-line client for the storewise
// API: ask a question (optionally streaming progress), dump the schema
// catalog, and poke health/readiness.
package storewisectl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("storewisectl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "storewise API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 60*time.Second), "HTTP timeout (e.g. 60s)")
	stream := fs.Bool("stream", false, "stream workflow progress while asking")
	export := fs.Bool("export", false, "export the result table to the object store")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	switch command {
	case "health":
		return getJSON(ctx, client, *baseURL, "/v1/health", *apiKey, stdout, stderr)
	case "ready":
		return getJSON(ctx, client, *baseURL, "/v1/ready", *apiKey, stdout, stderr)
	case "schema":
		return getJSON(ctx, client, *baseURL, "/v1/schema", *apiKey, stdout, stderr)
	case "ask":
		question := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
		if question == "" {
			_, _ = fmt.Fprintln(stderr, "ask requires a question")
			return 2
		}
		return ask(ctx, client, *baseURL, *apiKey, question, *stream, *export, stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}
}

func ask(ctx context.Context, client *http.Client, baseURL, apiKey, question string, stream, export bool, stdout, stderr io.Writer) int {
	payload, err := json.Marshal(map[string]any{
		"question": question,
		"stream":   stream,
		"export":   export,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "encode request failed: %v\n", err)
		return 1
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/v1/ask"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, apiKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
		return 1
	}

	if stream {
		return printEventStream(resp.Body, stdout, stderr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "read response failed: %v\n", err)
		return 1
	}
	printBody(stdout, body)
	return 0
}

// printEventStream renders progress frames as single lines and the final
// result frame as indented JSON.
func printEventStream(body io.Reader, stdout, stderr io.Writer) int {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			switch event {
			case "progress":
				printProgress(stdout, data)
			case "result":
				printBody(stdout, []byte(data))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		_, _ = fmt.Fprintf(stderr, "stream read failed: %v\n", err)
		return 1
	}
	return 0
}

func printProgress(stdout io.Writer, data string) {
	var event struct {
		Node  string `json:"node"`
		State struct {
			Status   string `json:"status"`
			Attempts int    `json:"attempts"`
			RowCount int    `json:"row_count"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		_, _ = fmt.Fprintln(stdout, data)
		return
	}
	_, _ = fmt.Fprintf(stdout, "[%s] status=%s attempts=%d rows=%d\n",
		event.Node, event.State.Status, event.State.Attempts, event.State.RowCount)
}

func getJSON(ctx context.Context, client *http.Client, baseURL, path, apiKey string, stdout, stderr io.Writer) int {
	endpoint := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	req.Header.Set("Accept", "application/json")
	setAuth(req, apiKey)

	resp, err := client.Do(req)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "read response failed: %v\n", err)
		return 1
	}
	if resp.StatusCode >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
		return 1
	}
	printBody(stdout, body)
	return 0
}

func printBody(stdout io.Writer, body []byte) {
	if pretty, ok := prettyJSON(body); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return
	}
	if len(body) > 0 {
		_, _ = fmt.Fprintln(stdout, string(body))
	}
}

func setAuth(req *http.Request, apiKey string) {
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: storewisectl [flags] <command> [question]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  ask <question>   POST /v1/ask (use -stream to watch progress, -export to keep the result)")
	_, _ = fmt.Fprintln(w, "  schema           GET /v1/schema")
	_, _ = fmt.Fprintln(w, "  health           GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready            GET /v1/ready")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
