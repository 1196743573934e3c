package shared

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveServiceErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: quantity", service.ErrInvalidInput), response.CodeBadRequest},
		{service.ErrTokenRevoked, response.CodeUnauthorized},
		{service.ErrForbidden, response.CodeForbidden},
		{service.ErrCartItemNotFound, response.CodeNotFound},
		{service.ErrOrderNotFound, response.CodeNotFound},
		{service.ErrEmptyCart, response.CodeUnprocessableEntity},
		{fmt.Errorf("%w: SHIPPED -> CANCELLED", service.ErrInvalidTransition), response.CodeUnprocessableEntity},
		{fmt.Errorf("%w: stale", service.ErrConflict), response.CodeConflict},
		{fmt.Errorf("%w: timeout", service.ErrStoreUnavailable), response.CodeServiceUnavailable},
		{fmt.Errorf("boom"), response.CodeInternal},
	}
	for _, tc := range cases {
		if got := ResolveServiceErrorCode(tc.err); got != tc.want {
			t.Fatalf("error %v want %d got %d", tc.err, tc.want, got)
		}
	}
}

func TestRespondServiceErrorMarksRetryable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		err       error
		retryable bool
	}{
		{fmt.Errorf("%w: db down", service.ErrStoreUnavailable), true},
		{fmt.Errorf("%w: order no", service.ErrConflict), true},
		{service.ErrEmptyCart, false},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		RespondServiceError(c, tc.err)

		var body struct {
			StatusCode int                    `json:"status_code"`
			Data       map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		got, _ := body.Data["retryable"].(bool)
		if got != tc.retryable {
			t.Fatalf("error %v retryable want %v got %v (%s)", tc.err, tc.retryable, got, w.Body.String())
		}
	}
}
