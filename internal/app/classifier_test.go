package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// geminiStub serves a canned text reply in the generateContent response
// shape and records request bodies.
func geminiStub(t *testing.T, reply string, requests *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			body, _ := io.ReadAll(r.Body)
			*requests = append(*requests, string(body))
		}
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": reply}},
				}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// geminiStubError always answers with a 500 in the API error shape.
func geminiStubError(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
}

func testLogger() *Logger {
	return NewLogger(io.Discard)
}

func TestClassify_EmptyInputSkipsBackend(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClassifier(NewGeminiClient("key", "", server.URL, 0), testLogger())
	result := c.Classify(context.Background(), nil)
	if len(result.Labels) != 0 {
		t.Fatalf("expected no labels, got %+v", result.Labels)
	}
	if calls != 0 {
		t.Fatalf("expected zero backend calls, got %d", calls)
	}
}

func TestClassify_MissingCredentialDegrades(t *testing.T) {
	c := NewClassifier(NewGeminiClient("", "", "", 0), testLogger())
	result := c.Classify(context.Background(), []string{"Portal 2"})
	if len(result.Labels) != 0 {
		t.Fatalf("expected no labels without a key, got %+v", result.Labels)
	}
}

func TestClassify_ValidResponse(t *testing.T) {
	reply := `{"games":[
		{"game_name":"Portal 2","genre":"Puzzle","play_style":"Co-op","vibe":"Clever"},
		{"game_name":"Hades","genre":"Roguelike","play_style":"Singleplayer","vibe":"Intense"}
	]}`
	var requests []string
	server := geminiStub(t, reply, &requests)
	defer server.Close()

	c := NewClassifier(NewGeminiClient("key", "", server.URL, 0), testLogger())
	result := c.Classify(context.Background(), []string{"Portal 2", "Hades"})
	if len(result.Labels) != 2 {
		t.Fatalf("len = %d, want 2", len(result.Labels))
	}
	if result.Labels[0].Genre != "Puzzle" || result.Labels[1].Vibe != "Intense" {
		t.Fatalf("unexpected labels: %+v", result.Labels)
	}
	if len(requests) != 1 {
		t.Fatalf("expected one backend call, got %d", len(requests))
	}

	// The call must ask for strict JSON output.
	var req struct {
		GenerationConfig struct {
			ResponseMimeType string `json:"responseMimeType"`
		} `json:"generationConfig"`
	}
	if err := json.Unmarshal([]byte(requests[0]), &req); err != nil {
		t.Fatal(err)
	}
	if req.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("responseMimeType = %q, want application/json", req.GenerationConfig.ResponseMimeType)
	}
}

func TestClassify_CodeFencedResponseStillParses(t *testing.T) {
	reply := "```json\n{\"games\":[{\"game_name\":\"Hades\",\"genre\":\"Roguelike\",\"play_style\":\"Singleplayer\",\"vibe\":\"Intense\"}]}\n```"
	server := geminiStub(t, reply, nil)
	defer server.Close()

	c := NewClassifier(NewGeminiClient("key", "", server.URL, 0), testLogger())
	result := c.Classify(context.Background(), []string{"Hades"})
	if len(result.Labels) != 1 {
		t.Fatalf("len = %d, want 1", len(result.Labels))
	}
}

func TestClassify_FailClosed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "malformed json", reply: `{"games": [not json`},
		{name: "empty games list", reply: `{"games":[]}`},
		{name: "missing field", reply: `{"games":[
			{"game_name":"Portal 2","genre":"Puzzle","play_style":"Co-op","vibe":"Clever"},
			{"game_name":"Hades","genre":"","play_style":"Singleplayer","vibe":"Intense"}
		]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := geminiStub(t, tc.reply, nil)
			defer server.Close()

			c := NewClassifier(NewGeminiClient("key", "", server.URL, 0), testLogger())
			result := c.Classify(context.Background(), []string{"Portal 2", "Hades"})
			if len(result.Labels) != 0 {
				t.Fatalf("expected fail-closed empty result, got %+v", result.Labels)
			}
		})
	}
}

func TestClassify_BackendErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
	defer server.Close()

	c := NewClassifier(NewGeminiClient("key", "", server.URL, 0), testLogger())
	result := c.Classify(context.Background(), []string{"Portal 2"})
	if len(result.Labels) != 0 {
		t.Fatalf("expected empty result on backend error, got %+v", result.Labels)
	}
}
