package opentdb_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/opentdb"
)

func newClient(t *testing.T, handler http.HandlerFunc) *opentdb.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return opentdb.NewClient(srv.URL, time.Second, opentdb.WithRand(rand.New(rand.NewSource(1))))
}

func TestFetchQuestionsSendsQuery(t *testing.T) {
	var query url.Values
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response_code": 0,
			"results": []map[string]any{{
				"difficulty":        "medium",
				"question":          "2 &lt; 3?",
				"correct_answer":    "True",
				"incorrect_answers": []string{"False", "Maybe", "Never"},
			}},
		})
	})

	questions, err := client.FetchQuestions(context.Background(), domain.QuestionRequest{
		Count:      5,
		Difficulty: domain.DifficultyHard,
		Category:   "science",
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "2 < 3?", questions[0].Text)

	assert.Equal(t, "5", query.Get("amount"))
	assert.Equal(t, "multiple", query.Get("type"))
	assert.Equal(t, "hard", query.Get("difficulty"))
	assert.Equal(t, "17", query.Get("category"))
}

func TestFetchQuestionsMixedOmitsDifficulty(t *testing.T) {
	var query url.Values
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"response_code":0,"results":[]}`))
	})

	questions, err := client.FetchQuestions(context.Background(), domain.QuestionRequest{Difficulty: domain.DifficultyMixed, Category: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, questions)
	assert.Equal(t, "10", query.Get("amount"))
	assert.False(t, query.Has("difficulty"))
	assert.False(t, query.Has("category"))
}

func TestFetchQuestionsErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"http status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"response code": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"response_code":1,"results":[]}`))
		},
		"bad body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newClient(t, handler).FetchQuestions(context.Background(), domain.QuestionRequest{Count: 1})
			assert.Error(t, err)
		})
	}

	_, err := newClient(t, cases["response code"]).FetchQuestions(context.Background(), domain.QuestionRequest{})
	assert.ErrorIs(t, err, opentdb.ErrResponseCode)
}

func TestFetchQuestionsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err := opentdb.NewClient(srv.URL, time.Second).FetchQuestions(context.Background(), domain.QuestionRequest{})
	assert.Error(t, err)
}
