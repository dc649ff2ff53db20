package common

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	"github.com/Jeomhps/formation-admin/internal/middleware"
)

// Fail writes err as {"error": msg} with the status of its kind. Internal
// errors are logged and replaced by a generic message.
func Fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err, "Internal server error")
	}
	status := ae.Kind.Status()
	if ae.Kind == apperr.KindInternal {
		middleware.Logger(c).Error("request failed", "path", c.Request.URL.Path, "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	body := gin.H{"error": ae.Msg}
	if len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// BindError turns a ShouldBindJSON failure into a validation error whose
// fields are keyed by JSON name.
func BindError(err error, msg string) error {
	fields := map[string]string{}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	case errors.As(err, &typeErr):
		fields[typeErr.Field] = "must be " + typeErr.Type.String()
	case errors.Is(err, io.EOF):
		fields["body"] = "is empty"
	default:
		fields["body"] = err.Error()
	}
	return apperr.Validation(msg, fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	default:
		return "is invalid"
	}
}

var tagOnce sync.Once

// UseJSONFieldNames makes validator report fields by their json tag.
func UseJSONFieldNames() {
	tagOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// ValidationField builds a validation error for a single field.
func ValidationField(msg, field, problem string) error {
	return apperr.Validation(msg, map[string]string{field: problem})
}
