package budgetapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/mockapi"
	"github.com/theirongolddev/cbudget/internal/model"
)

func TestGenerate_AgainstMockBackend(t *testing.T) {
	srv := mockapi.New(mockapi.DefaultConfig(), zerolog.Nop())
	ts := httptest.NewServer(srv.Echo)
	defer ts.Close()

	token, _, err := srv.Tokens.Issue("tester")
	require.NoError(t, err)

	sel, err := model.NewSelection("Housing", "Food")
	require.NoError(t, err)
	req := NewGenerateRequest(model.BudgetInput{City: "Austin", TotalBudget: 3000}, sel)

	body, err := NewClient(ts.URL).Generate(context.Background(), req, token)
	require.NoError(t, err)
	assert.Contains(t, string(body), "budgetBreakdown")
}

func TestGenerate_SendsContract(t *testing.T) {
	var got GenerateRequest
	var auth, ctype, reqID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/budget/generate", r.URL.Path)
		auth = r.Header.Get("Authorization")
		ctype = r.Header.Get("Content-Type")
		reqID = r.Header.Get("X-Request-ID")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_, _ = w.Write([]byte(`{"budgetBreakdown":[]}`))
	}))
	defer ts.Close()

	req := GenerateRequest{City: "Austin", Budget: 3000, SelectedCategories: []string{"Housing"}}
	_, err := NewClient(ts.URL+"/").Generate(context.Background(), req, " abc ")
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", auth)
	assert.Equal(t, "application/json", ctype)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, req, got)
}

func TestGenerate_EmptySelectionEncodesArray(t *testing.T) {
	var raw map[string]json.RawMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &raw)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Generate(context.Background(), GenerateRequest{City: "X", Budget: 1}, "t")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw["selectedCategories"]))
}

func TestGenerate_NoTokenNoRequest(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Generate(context.Background(), GenerateRequest{Budget: 1}, "  ")
	require.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, model.KindAuth, model.KindOf(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestGenerate_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   model.FailureKind
		msg    string
	}{
		{http.StatusUnauthorized, model.KindAuth, model.MsgAuthRequired},
		{http.StatusForbidden, model.KindAuth, model.MsgAuthRequired},
		{http.StatusTooManyRequests, model.KindNetwork, model.MsgRateLimited},
		{http.StatusInternalServerError, model.KindNetwork, model.MsgRequestFailed},
		{http.StatusBadGateway, model.KindNetwork, model.MsgRequestFailed},
		{http.StatusBadRequest, model.KindNetwork, model.MsgRequestFailed},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			_, err := NewClient(ts.URL).Generate(context.Background(), GenerateRequest{Budget: 1}, "tok")
			require.Error(t, err)
			assert.Equal(t, tt.kind, model.KindOf(err))
			assert.Equal(t, tt.msg, model.UserMessage(err))
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := NewClient(ts.URL, WithTimeout(50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, c.Timeout())

	_, err := c.Generate(context.Background(), GenerateRequest{Budget: 1}, "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTimeout)
	assert.Equal(t, model.KindNetwork, model.KindOf(err))
	assert.Equal(t, model.MsgTimedOut, model.UserMessage(err))
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewClient(url).Generate(context.Background(), GenerateRequest{Budget: 1}, "tok")
	require.Error(t, err)
	assert.Equal(t, model.KindNetwork, model.KindOf(err))
	assert.Equal(t, model.MsgRequestFailed, model.UserMessage(err))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.Timeout())

	c = NewClient("http://x", WithTimeout(0))
	assert.Equal(t, DefaultTimeout, c.Timeout())
}
