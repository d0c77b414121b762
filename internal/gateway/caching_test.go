package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/storewise/storewise/internal/cache"
)

type countingClient struct {
	calls    map[Task]int
	response string
	err      error
}

func newCountingClient(response string) *countingClient {
	return &countingClient{calls: map[Task]int{}, response: response}
}

func (c *countingClient) Complete(_ context.Context, task Task, _ Prompt) (string, error) {
	c.calls[task]++
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("cache down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return fmt.Errorf("cache down")
}

func TestCachingClientReusesDeterministicResponses(t *testing.T) {
	inner := newCountingClient("SELECT 1")
	client := NewCachingClient(inner, cache.NewMemory(), time.Minute)
	prompt := Prompt{System: "s", User: "count users"}

	for i := 0; i < 3; i++ {
		content, err := client.Complete(context.Background(), TaskGenerateSQL, prompt)
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if content != "SELECT 1" {
			t.Fatalf("content = %q", content)
		}
	}
	if inner.calls[TaskGenerateSQL] != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls[TaskGenerateSQL])
	}
}

func TestCachingClientSkipsAttemptSpecificTasks(t *testing.T) {
	inner := newCountingClient("answer")
	client := NewCachingClient(inner, cache.NewMemory(), time.Minute)
	prompt := Prompt{User: "same prompt"}

	for _, task := range []Task{TaskAnalyze, TaskCorrectSQL} {
		for i := 0; i < 2; i++ {
			if _, err := client.Complete(context.Background(), task, prompt); err != nil {
				t.Fatalf("Complete(%s) error = %v", task, err)
			}
		}
		if inner.calls[task] != 2 {
			t.Fatalf("task %s inner calls = %d, want 2", task, inner.calls[task])
		}
	}
}

func TestCachingClientKeysOnPromptContent(t *testing.T) {
	inner := newCountingClient("ok")
	client := NewCachingClient(inner, cache.NewMemory(), time.Minute)

	if _, err := client.Complete(context.Background(), TaskGuardrail, Prompt{User: "question one"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if _, err := client.Complete(context.Background(), TaskGuardrail, Prompt{User: "question two"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if inner.calls[TaskGuardrail] != 2 {
		t.Fatalf("inner calls = %d, want 2 for distinct prompts", inner.calls[TaskGuardrail])
	}
}

func TestCachingClientDegradesWhenCacheFails(t *testing.T) {
	inner := newCountingClient("still works")
	client := NewCachingClient(inner, failingCache{}, time.Minute)

	content, err := client.Complete(context.Background(), TaskGuardrail, Prompt{User: "q"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "still works" {
		t.Fatalf("content = %q", content)
	}
	if inner.calls[TaskGuardrail] != 1 {
		t.Fatalf("inner calls = %d", inner.calls[TaskGuardrail])
	}
}

func TestCachingClientDoesNotCacheFailures(t *testing.T) {
	inner := newCountingClient("")
	inner.err = fmt.Errorf("provider down")
	store := cache.NewMemory()
	client := NewCachingClient(inner, store, time.Minute)
	prompt := Prompt{User: "q"}

	if _, err := client.Complete(context.Background(), TaskGuardrail, prompt); err == nil {
		t.Fatal("expected inner error")
	}
	inner.err = nil
	inner.response = "recovered"
	content, err := client.Complete(context.Background(), TaskGuardrail, prompt)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "recovered" {
		t.Fatalf("content = %q, failure must not be cached", content)
	}
	if inner.calls[TaskGuardrail] != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls[TaskGuardrail])
	}
}

func TestCachingClientWithRedisBackend(t *testing.T) {
	server := miniredis.RunT(t)
	store, err := cache.NewRedis(cache.RedisConfig{Addr: server.Addr(), KeyPrefix: "storewise"})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	inner := newCountingClient(`{"relevant": true, "greeting": false}`)
	client := NewCachingClient(inner, store, time.Minute)
	prompt := Prompt{System: "gate", User: "how many orders?"}

	for i := 0; i < 2; i++ {
		if _, err := client.Complete(context.Background(), TaskGuardrail, prompt); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}
	if inner.calls[TaskGuardrail] != 1 {
		t.Fatalf("inner calls = %d, want 1 with shared redis cache", inner.calls[TaskGuardrail])
	}
}
