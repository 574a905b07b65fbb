package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/bunchhieng/pins/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

// bindingError answers a request that failed to bind or validate.
func bindingError(c *gin.Context, target any, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		abortWithError(c, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := wireName(target, fe)
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Message: "validation failed",
		Errors:  messages,
	})
}

// wireName returns the json or form name of the failing field. Element
// errors from dive keep their index, as in "tag_names[1]".
func wireName(target any, fe validator.FieldError) string {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	field, index, _ := strings.Cut(fe.StructField(), "[")
	if index != "" {
		index = "[" + index
	}
	f, ok := t.FieldByName(field)
	if !ok {
		return fe.Field()
	}
	for _, key := range []string{"json", "form"} {
		if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
			return name + index
		}
	}
	return fe.Field()
}

// writeError maps a store error from a write path to a response.
func writeError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "bookmark not found")
	case errors.Is(err, model.ErrDuplicate):
		abortWithError(c, http.StatusBadRequest, "a bookmark with this URL already exists")
	case errors.Is(err, model.ErrInvalidURL):
		abortWithError(c, http.StatusBadRequest, "url must not be empty")
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg(action + " failed")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}
