package expense

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateHandlerValidation(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(HandlerConfig{Service: svc})

	cases := []string{
		`{"kind":"capex","name":"x","amount":10}`,
		`{"kind":"cogs","amount":10}`,
		`{"kind":"cogs","name":"米","amount":0}`,
		`{"kind":"cogs","name":"米","amount":10,"recordedAt":"10/03/2024"}`,
		`not-json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestCreateHandlerSuccess(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(HandlerConfig{Service: svc})

	body := `{"kind":"opex","name":"房租","amount":20000,"recordedAt":"2024-03-01T09:00:00+08:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data Expense `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	require.Equal(t, int64(20000), resp.Data.Amount)
}
