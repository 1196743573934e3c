package response

// 业务状态码，HTTP 状态恒为 200
const (
	CodeOK                  = 0
	CodeBadRequest          = 400
	CodeUnauthorized        = 401
	CodeForbidden           = 403
	CodeNotFound            = 404
	CodeConflict            = 409
	CodeUnprocessableEntity = 422
	CodeTooManyRequests     = 429
	CodeInternal            = 500
	CodeServiceUnavailable  = 503
)

// IsRetryableCode 调用方可重试的业务码
func IsRetryableCode(code int) bool {
	return code == CodeConflict || code == CodeServiceUnavailable
}
