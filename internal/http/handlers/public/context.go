package public

import (
	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/identity"

	"github.com/gin-gonic/gin"
)

func getPrincipal(c *gin.Context) (identity.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}
