package admin

import (
	"time"

	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/identity"

	"github.com/gin-gonic/gin"
)

func getOperator(c *gin.Context) (identity.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

// parseTimeNullable 支持 RFC3339 与 yyyy-MM-dd
func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
