package taskclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/config"
)

// clientFor points a Client at a test server.
func clientFor(t *testing.T, server *httptest.Server, auth config.APIConfig) *Client {
	t.Helper()

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	auth.Host = parsed.Hostname()
	auth.Port = port
	return NewClient(auth)
}

func TestCreateTaskSuccess(t *testing.T) {
	var received CreateTaskRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "task-42"})
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{TimeoutSeconds: 5})
	taskID, err := client.CreateTask(7, "factory/line-1/robot-1", "100001", "normal")

	require.NoError(t, err)
	assert.Equal(t, "task-42", taskID)
	assert.Equal(t, "7", received.OdooProductionID)
	assert.Equal(t, "factory/line-1/robot-1", received.MQTTTopic)
	assert.Equal(t, "100001", received.BinaryPayload)
	assert.Equal(t, "normal", received.Priority)
}

func TestCreateTaskServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broker unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{TimeoutSeconds: 5})
	taskID, err := client.CreateTask(7, "factory/line-1/robot-1", "100001", "normal")

	assert.Error(t, err)
	assert.Empty(t, taskID)
}

func TestCreateTaskConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := clientFor(t, server, config.APIConfig{TimeoutSeconds: 1})
	_, err := client.CreateTask(7, "factory/line-1/robot-1", "100001", "normal")
	assert.Error(t, err)
}

func TestCreateTaskSendsBearerToken(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"id": "task-1"})
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{
		TimeoutSeconds: 5,
		AuthEnabled:    true,
		AuthToken:      "s3cret",
	})
	_, err := client.CreateTask(1, "t/r", "000000", "normal")

	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", header)
}

func TestCreateTaskOmitsAuthWhenDisabled(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"id": "task-1"})
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{
		TimeoutSeconds: 5,
		AuthEnabled:    false,
		AuthToken:      "ignored",
	})
	_, err := client.CreateTask(1, "t/r", "000000", "normal")

	require.NoError(t, err)
	assert.Empty(t, header)
}

func TestDeleteTaskSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/tasks/task-42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{TimeoutSeconds: 5})
	assert.NoError(t, client.DeleteTask("task-42"))
}

func TestDeleteTaskNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{TimeoutSeconds: 5})
	err := client.DeleteTask("task-42")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTaskServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := clientFor(t, server, config.APIConfig{TimeoutSeconds: 5})
	err := client.DeleteTask("task-42")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
}
