package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
)

func TestDisabledWithoutKey(t *testing.T) {
	gen := llm.NewChatClient(llm.ChatOptions{Model: "m"})
	_, err := gen.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	narrator, err := llm.NewGemini(context.Background(), llm.GeminiOptions{Model: "m"})
	require.NoError(t, err)
	_, err = narrator.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestChatClientGenerate(t *testing.T) {
	var gotAuth, gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel = body.Model
		if len(body.Messages) > 0 {
			gotPrompt = body.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[{\"input\":\"1\",\"expected\":\"1\"}]"}}]}`))
	}))
	defer srv.Close()

	gen := llm.NewChatClient(llm.ChatOptions{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "secret",
		Model:   "llama-test",
		Timeout: 5 * time.Second,
	})
	out, err := gen.Generate(context.Background(), "make tests")
	require.NoError(t, err)
	assert.Equal(t, `[{"input":"1","expected":"1"}]`, out)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "llama-test", gotModel)
	assert.Equal(t, "make tests", gotPrompt)
}

func TestChatClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen := llm.NewChatClient(llm.ChatOptions{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	_, err := gen.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gen := llm.NewChatClient(llm.ChatOptions{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	_, err := gen.Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Solid submission."}]}}]}`))
	}))
	defer srv.Close()

	gen, err := llm.NewGemini(context.Background(), llm.GeminiOptions{
		APIKey:  "k",
		Model:   "gemini-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	out, err := gen.Generate(context.Background(), "summarise")
	require.NoError(t, err)
	assert.Equal(t, "Solid submission.", out)
}

func TestPromptsEmbedInputs(t *testing.T) {
	assert.Contains(t, llm.TestCasesPrompt("Sum of two numbers"), "Sum of two numbers")
	assert.Contains(t, llm.TestCasesPrompt("x"), "EXACTLY 5")
	assert.Contains(t, llm.NarrativePrompt(`{"total_score":90}`), `{"total_score":90}`)
	assert.Contains(t, llm.CompileErrorPrompt("main.c:1: error: x"), "main.c:1: error: x")
}
