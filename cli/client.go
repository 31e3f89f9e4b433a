package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles requests to the MQTT integration server.
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("MQTT_INTEGRATION_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
	}
}

// Health mirrors the health endpoint response
type Health struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	ProductionRecords  int    `json:"production_records"`
	DatabaseAccessible bool   `json:"database_accessible"`
}

// Order represents a manufacturing order as returned by the server
type Order struct {
	ID            uint        `json:"ID"`
	Name          string      `json:"Name"`
	State         string      `json:"State"`
	Quantity      float64     `json:"Quantity"`
	RemoteTaskID  string      `json:"RemoteTaskID"`
	BinaryPayload string      `json:"BinaryPayload"`
	Product       Product     `json:"Product"`
	WorkOrders    []WorkOrder `json:"WorkOrders"`
}

// Product represents a product attached to an order
type Product struct {
	ID       uint   `json:"ID"`
	Name     string `json:"Name"`
	MQTTType string `json:"MQTTType"`
}

// WorkOrder represents a single operation of an order
type WorkOrder struct {
	ID    uint   `json:"ID"`
	Name  string `json:"Name"`
	State string `json:"State"`
}

// Robot represents a registered work-center robot
type Robot struct {
	ID         uint   `json:"ID"`
	Identifier string `json:"Identifier"`
	Name       string `json:"Name"`
}

// apiError mirrors the error payload of the action endpoints
type apiError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CheckHealth checks if the integration server is up and running
func (c *ApiClient) CheckHealth() (*Health, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/mqtt-integration/health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetOrders retrieves all manufacturing orders
func (c *ApiClient) GetOrders() ([]Order, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/orders")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get orders with status code: %d", resp.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder retrieves a specific order by ID
func (c *ApiClient) GetOrder(id uint) (*Order, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/api/v1/orders/%d", c.BaseURL, id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get order with status code: %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetRobots retrieves all registered robots
func (c *ApiClient) GetRobots() ([]Robot, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/robots")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get robots with status code: %d", resp.StatusCode)
	}

	var robots []Robot
	if err := json.NewDecoder(resp.Body).Decode(&robots); err != nil {
		return nil, err
	}
	return robots, nil
}

// StartProcessing dispatches the order's robot task
func (c *ApiClient) StartProcessing(id uint) error {
	return c.post(fmt.Sprintf("/api/v1/orders/%d/start", id))
}

// StopProcessing aborts the order's robot task
func (c *ApiClient) StopProcessing(id uint) error {
	return c.post(fmt.Sprintf("/api/v1/orders/%d/stop", id))
}

// PerformAction runs a manual order action such as confirm or cancel
func (c *ApiClient) PerformAction(id uint, action string) error {
	return c.post(fmt.Sprintf("/api/v1/orders/%d/actions/%s", id, action))
}

func (c *ApiClient) post(path string) error {
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil {
			if apiErr.Message != "" {
				return fmt.Errorf("%s", apiErr.Message)
			}
			if apiErr.Error != "" {
				return fmt.Errorf("%s", apiErr.Error)
			}
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
