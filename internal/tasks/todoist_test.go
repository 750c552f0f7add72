package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	var received createTaskRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("test-token", "12345")
	client.baseURL = server.URL

	err := client.CreateTask(context.Background(), "купить молоко")
	require.NoError(t, err)
	assert.Equal(t, "купить молоко", received.Content)
	assert.Equal(t, "12345", received.ProjectID)
}

func TestCreateTaskProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid argument value"))
	}))
	defer server.Close()

	client := NewClient("test-token", "")
	client.baseURL = server.URL

	err := client.CreateTask(context.Background(), "задача")
	require.Error(t, err)
	// текст ошибки провайдера передается пользователю как есть
	assert.Contains(t, err.Error(), "Invalid argument value")
}

func TestCreateTaskNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient("test-token", "")
	client.baseURL = server.URL

	assert.NoError(t, client.CreateTask(context.Background(), "задача"))
}
