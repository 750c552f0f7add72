package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// Client — клиент Todoist REST API v2.
type Client struct {
	httpClient *http.Client
	token      string
	projectID  string
	baseURL    string
}

func NewClient(token, projectID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		projectID:  projectID,
		baseURL:    defaultBaseURL,
	}
}

type createTaskRequest struct {
	Content   string `json:"content"`
	ProjectID string `json:"project_id,omitempty"`
}

// CreateTask создает задачу с распознанным текстом. Одна попытка,
// без повторов; текст ошибки провайдера возвращается как есть.
func (c *Client) CreateTask(ctx context.Context, content string) error {
	body, err := json.Marshal(createTaskRequest{
		Content:   content,
		ProjectID: c.projectID,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации задачи: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка формирования запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса к Todoist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ошибка добавления задачи: %s", string(detail))
	}

	return nil
}
