package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadClient(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Client
	}{
		{
			name: "Defaults",
			want: Client{
				BaseURL: "http://localhost:8000",
				LogFile: "conversation.log",
			},
		},
		{
			name: "Override",
			env: map[string]string{
				"CONVERSATION_API_URL":  "https://chat.example.com/api",
				"CONVERSATION_LOG_FILE": "/tmp/chat.log",
			},
			want: Client{
				BaseURL: "https://chat.example.com/api",
				LogFile: "/tmp/chat.log",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetenv(t, "CONVERSATION_API_URL", "CONVERSATION_LOG_FILE")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := LoadClient()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("Diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestLoadServer(t *testing.T) {
	unsetenv(t, "LLM_MODEL")
	t.Setenv("ADDR", ":9000")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,https://chat.example.com")
	t.Setenv("GROQ_API_KEY", "secret")
	t.Setenv("LLM_HISTORY_LIMIT", "8")
	t.Setenv("LLM_TIMEOUT", "10s")

	got, err := LoadServer()
	if err != nil {
		t.Fatal(err)
	}
	if got.Addr != ":9000" {
		t.Errorf("Got Addr %q, want :9000", got.Addr)
	}
	if diff := cmp.Diff(got.CORSOrigins, []string{"http://localhost:5173", "https://chat.example.com"}); diff != "" {
		t.Errorf("CORSOrigins diff (-got +want)\n%s", diff)
	}
	if got.LLMAPIKey != "secret" {
		t.Errorf("Got LLMAPIKey %q, want secret", got.LLMAPIKey)
	}
	if got.LLMHistoryLimit != 8 {
		t.Errorf("Got LLMHistoryLimit %d, want 8", got.LLMHistoryLimit)
	}
	if got.LLMTimeout != 10*time.Second {
		t.Errorf("Got LLMTimeout %s, want 10s", got.LLMTimeout)
	}
	if got.LLMModel != "llama-3.3-70b-versatile" {
		t.Errorf("Got LLMModel %q, want default", got.LLMModel)
	}
}

func TestLoadServer_InvalidHistoryLimit(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{
			name:    "AssistantEnabled",
			apiKey:  "secret",
			wantErr: true,
		},
		{
			name: "AssistantDisabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetenv(t, "GROQ_API_KEY")
			if tt.apiKey != "" {
				t.Setenv("GROQ_API_KEY", tt.apiKey)
			}
			t.Setenv("LLM_HISTORY_LIMIT", "0")

			_, err := LoadServer()
			if (err != nil) != tt.wantErr {
				t.Errorf("Got error %v, want error %t", err, tt.wantErr)
			}
		})
	}
}

// unsetenv removes keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}
