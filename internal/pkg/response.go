package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/zhfeng1/OVH/internal/domain"
)

// Response is the envelope for success and error payloads.
// RequestID is only populated on error responses.
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

// requestIDKey matches the gin context key set by the RequestID middleware.
const requestIDKey = "request_id"

// ValidationErrorResponse carries per-field messages for 400 validation
// failures. RequestID is populated the same way as on Response.
type ValidationErrorResponse struct {
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors"`
	RequestID string            `json:"request_id,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{
		Code:    status,
		Message: "success",
		Data:    data,
	})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Code:      status,
		Message:   msg,
		RequestID: c.GetString(requestIDKey),
	})
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	respond(c, http.StatusOK, data)
}

// Created sends a 201 JSON response with the given data.
func Created(c *gin.Context, data any) {
	respond(c, http.StatusCreated, data)
}

// List sends a 200 JSON response wrapping a page of results.
func List[T any](c *gin.Context, result *domain.PageResult[T]) {
	respond(c, http.StatusOK, result)
}

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status; otherwise 500 is returned. The request
// id assigned by the RequestID middleware, when present, is echoed in the body.
func Error(c *gin.Context, err error) {
	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	fail(c, domain.HTTPStatusCode(err), msg)
}

// ValidationError renders err as a 400 response. validator.ValidationErrors
// expand into a per-field message map; any other error becomes a generic bad
// request.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body into obj and reports whether binding
// and validation succeeded. On failure the 400 response has already been
// written, so handlers bail out immediately:
//
//	if !pkg.BindAndValidate(c, &req) { return }
//
// Passing the bind target lets field errors surface under their JSON names.
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType sends a 400 validation error response. Field names
// prefer the JSON tag of obj's corresponding struct field when obj is non-nil.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// The raw error is not echoed back to avoid leaking parser internals.
		fail(c, http.StatusBadRequest, "bad request")
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		fieldErrors[fieldLabel(fe, jsonTags)] = validationMessage(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:      http.StatusBadRequest,
		Message:   "validation error",
		Errors:    fieldErrors,
		RequestID: c.GetString(requestIDKey),
	})
}

// fieldLabel resolves the name a failed field is reported under, preferring
// its JSON tag over the lowercased Go field name.
func fieldLabel(fe validator.FieldError, tags map[string]string) string {
	if tag, ok := tags[fe.StructField()]; ok {
		return tag
	}
	return strings.ToLower(fe.Field())
}

// validationMessage renders a field error as a human-readable message.
// Unknown tags fall back to the raw tag (with its parameter, if any).
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "oneof":
		return "Must be one of: " + fe.Param()
	default:
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return msg
	}
}

// jsonTagCache memoizes per-type tag maps. Bind targets are a small fixed
// set of request structs, so the cache never grows past them.
var jsonTagCache sync.Map

// buildJSONTagMap maps Go struct field names to their JSON tag names for obj,
// following pointers and embedded structs. Non-struct targets yield nil, which
// makes every lookup miss and fall back to lowercased field names.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := jsonTagCache.Load(t); ok {
		return cached.(map[string]string)
	}

	m := make(map[string]string, t.NumField())
	for _, f := range reflect.VisibleFields(t) {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			m[f.Name] = name
		}
	}
	jsonTagCache.Store(t, m)
	return m
}
