// Package taskclient is the HTTP boundary to the external MQTT task API.
// It knows how to create and delete remote robot tasks and nothing else;
// retries and queueing are the caller's concern.
package taskclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/config"
)

// ErrTaskNotFound is returned by DeleteTask when the remote side reports
// the task id as unknown. Callers treat it as an already-deleted task.
var ErrTaskNotFound = fmt.Errorf("remote task not found")

// Client talks to the MQTT task API
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

// CreateTaskRequest is the payload sent when registering a new robot task
type CreateTaskRequest struct {
	OdooProductionID string `json:"odooProductionId"`
	MQTTTopic        string `json:"mqttTopic"`
	BinaryPayload    string `json:"binaryPayload"`
	Priority         string `json:"priority"`
}

// CreateTaskResponse carries the remote task identifier assigned by the API
type CreateTaskResponse struct {
	ID string `json:"id"`
}

// NewClient builds a task API client from the injected configuration.
// The HTTP timeout bounds every call; the bearer token is attached only
// when authentication is enabled and a token is configured.
func NewClient(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	token := ""
	if cfg.AuthEnabled && cfg.AuthToken != "" {
		token = cfg.AuthToken
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		authToken:  token,
	}
}

// CreateTask registers a new robot task and returns the remote task id.
// Any transport error or non-2xx response fails the call; the order is
// left for the caller to keep unchanged.
func (c *Client) CreateTask(orderID uint, mqttTopic, binaryPayload, priority string) (string, error) {
	reqBody := CreateTaskRequest{
		OdooProductionID: fmt.Sprintf("%d", orderID),
		MQTTTopic:        mqttTopic,
		BinaryPayload:    binaryPayload,
		Priority:         priority,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode task request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/tasks", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build task request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("task API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("task API returned status %d: %s", resp.StatusCode, string(body))
	}

	var taskResp CreateTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&taskResp); err != nil {
		return "", fmt.Errorf("failed to decode task response: %w", err)
	}
	if taskResp.ID == "" {
		return "", fmt.Errorf("task API response contained no task id")
	}

	return taskResp.ID, nil
}

// DeleteTask removes a remote task. A 404 from the API means the task is
// already gone and is reported as ErrTaskNotFound so callers can treat
// the delete as idempotent; every other failure is surfaced as-is.
func (c *Client) DeleteTask(taskID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/tasks/"+taskID, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("task API delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("Task %s not found in API (may have been already processed or deleted)", taskID)
		return ErrTaskNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("task API delete returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}
