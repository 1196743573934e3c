package shared

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator 返回共享的请求校验器
// 字段名取 json tag，并注册 marketplace 校验规则
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("marketplace", func(fl validator.FieldLevel) bool {
			_, ok := service.ParseMarketplace(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// BindJSON 解析并校验请求体，失败时直接写入错误响应
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return false
	}
	if err := Validator().Struct(obj); err != nil {
		fields := ValidationFields(err)
		if len(fields) == 0 {
			RespondError(c, response.CodeBadRequest, "error.validation_failed", err)
			return false
		}
		RespondErrorWithData(c, response.CodeBadRequest, "error.validation_failed", gin.H{"fields": fields})
		return false
	}
	return true
}

// ValidationFields 提取字段级校验失败信息，键为 json 字段名
func ValidationFields(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	return fields
}
