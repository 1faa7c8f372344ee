// Package client talks to the interview service over HTTP and hands the
// session controller validated, tagged results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"saylo/internal/models"
	"saylo/internal/session"
)

const maxErrorBody = 64 << 10

// Client implements session.QuestionService.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ session.QuestionService = (*Client)(nil)

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) StartInterview(ctx context.Context, role, difficulty, topic string) (*session.StartResult, error) {
	var resp models.StartInterviewResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/interview/start", models.StartInterviewRequest{
		Role:       role,
		Difficulty: difficulty,
		Topic:      topic,
	}, &resp)
	if err != nil {
		return nil, err
	}

	res := &session.StartResult{
		SessionID:  resp.SessionID,
		QuestionID: resp.QuestionID,
		Question:   strings.TrimSpace(resp.Message),
		Stage:      resp.Stage,
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID, answer string, metrics *models.NonVerbalMetrics) (*session.AnswerResult, error) {
	var resp models.ChatResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/interview/chat", models.ChatRequest{
		SessionID:        sessionID,
		Answer:           answer,
		NonVerbalMetrics: metrics,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toAnswerResult(&resp)
}

func (c *Client) SubmitAudioAnswer(ctx context.Context, sessionID string, audio []byte, mimeType string, metrics *models.NonVerbalMetrics) (*session.AnswerResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("session_id", sessionID); err != nil {
		return nil, err
	}
	if metrics != nil {
		raw, err := json.Marshal(metrics)
		if err != nil {
			return nil, err
		}
		if err := mw.WriteField("non_verbal_metrics", string(raw)); err != nil {
			return nil, err
		}
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="answer%s"`, extensionFor(mimeType)))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/interview/audio", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp models.ChatResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return toAnswerResult(&resp)
}

func (c *Client) EndInterview(ctx context.Context, sessionID string) (*models.Feedback, error) {
	var resp models.EndInterviewResponse
	path := "/api/v1/interview/" + url.PathEscape(sessionID) + "/end"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Feedback != nil {
		if err := resp.Feedback.Validate(); err != nil {
			return nil, err
		}
	}
	return resp.Feedback, nil
}

func (c *Client) GetHistory(ctx context.Context) ([]models.HistoryItem, error) {
	var items []models.HistoryItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/interview/history", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// toAnswerResult admits a chat response only in one of its two valid shapes.
func toAnswerResult(resp *models.ChatResponse) (*session.AnswerResult, error) {
	res := &session.AnswerResult{Transcript: resp.Transcript}
	if resp.IsCompleted {
		res.Completed = &session.Completion{Feedback: resp.Feedback}
	} else {
		res.Next = &session.NextQuestion{
			ID:         resp.QuestionID,
			Text:       strings.TrimSpace(resp.NextQuestion),
			Stage:      resp.Stage,
			Evaluation: resp.Evaluation,
		}
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chat response: %w", err)
	}
	return res, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("interview service call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr models.ErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Code == "" {
		return &models.ErrorResponse{
			Code:    fmt.Sprintf("http_%d", resp.StatusCode),
			Message: http.StatusText(resp.StatusCode),
		}
	}
	return &apiErr
}

func extensionFor(mimeType string) string {
	switch strings.SplitN(mimeType, ";", 2)[0] {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".webm"
	}
}
