package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSpeech(t *testing.T) {
	var got SpeechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)

	audio, err := client.CreateSpeech(context.Background(), SpeechRequest{Input: "Tomorrow's forecast"})
	require.NoError(t, err)
	require.Equal(t, "ID3audio", string(audio))
	require.Equal(t, "tts-1", got.Model)
	require.Equal(t, "alloy", got.Voice)
	require.Equal(t, "mp3", got.ResponseFormat)
}

func TestCreateSpeechErrors(t *testing.T) {
	_, err := NewClient(" ", "")
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)
	_, err = client.CreateSpeech(context.Background(), SpeechRequest{Input: "hi"})
	require.ErrorContains(t, err, "status=429")

	_, err = client.CreateSpeech(context.Background(), SpeechRequest{})
	require.Error(t, err)
}
