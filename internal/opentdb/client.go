// Package opentdb is a client for the Open Trivia Database (https://opentdb.com).
package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// DefaultBaseURL is the public question endpoint.
const DefaultBaseURL = "https://opentdb.com/api.php"

// Categories maps the category names accepted in requests to provider ids.
var Categories = map[string]int{
	"general":     9,
	"science":     17,
	"computers":   18,
	"mathematics": 19,
	"sports":      21,
	"geography":   22,
	"history":     23,
	"politics":    24,
	"art":         25,
	"celebrities": 26,
	"animals":     27,
}

// ErrResponseCode is returned when the provider answers with a non-zero response_code.
var ErrResponseCode = errors.New("trivia provider rejected request")

// Result is one question as served by the provider, HTML-entity escaped.
type Result struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type response struct {
	ResponseCode int      `json:"response_code"`
	Results      []Result `json:"results"`
}

// Client fetches and normalizes multiple-choice questions.
type Client struct {
	baseURL string
	http    *http.Client

	mu  sync.Mutex
	rnd *rand.Rand
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRand fixes the random source used to shuffle options.
func WithRand(rnd *rand.Rand) ClientOption {
	return func(c *Client) { c.rnd = rnd }
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuestions requests req.Count questions and returns them normalized.
func (c *Client) FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	endpoint, err := c.endpoint(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch questions: http status %d", resp.StatusCode)
	}
	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: response_code %d", ErrResponseCode, body.ResponseCode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return Normalize(body.Results, c.rnd), nil
}

func (c *Client) endpoint(req domain.QuestionRequest) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	amount := req.Count
	if amount <= 0 {
		amount = 10
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(amount))
	q.Set("type", "multiple")
	if id, ok := Categories[req.Category]; ok {
		q.Set("category", strconv.Itoa(id))
	}
	if req.Difficulty != "" && req.Difficulty != domain.DifficultyMixed {
		q.Set("difficulty", string(req.Difficulty))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
