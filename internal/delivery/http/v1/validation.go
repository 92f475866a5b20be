package v1

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const validatedBodyKey = "validated_body"

type fieldKind int

const (
	kindString fieldKind = iota
	kindEmail
	kindNumber
	kindBool
)

// fieldRule is one row of a per-route validation table. Rules are evaluated
// uniformly over the decoded JSON body; string values are trimmed and emails
// lower-cased in place, so handlers see the normalized body. An explicit JSON
// null is a shape violation unless the rule is nullable, in which case it is
// applied downstream as the field's zero value.
type fieldRule struct {
	field    string
	required bool
	nullable bool
	kind     fieldKind
	minLen   int
	maxLen   int
}

var emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateBody(rules []fieldRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := make(map[string]any)
		err := c.ShouldBindJSON(&body)
		if err != nil && !errors.Is(err, io.EOF) {
			abort(c, newBadRequestError(errInvalidRequestBody.Error()))
			return
		}

		var errs []fieldError
		for _, r := range rules {
			value, present := body[r.field]
			if !present {
				if r.required {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " is required",
					})
				}
				continue
			}
			if value == nil {
				switch {
				case r.required:
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " is required",
					})
				case r.nullable:
					// Null clears the field downstream.
				case r.kind == kindEmail:
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: "invalid email",
					})
				case r.kind == kindNumber:
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " must be a number",
					})
				case r.kind == kindBool:
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " must be a boolean",
					})
				default:
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " must be a string",
					})
				}
				continue
			}

			switch r.kind {
			case kindString, kindEmail:
				s, ok := value.(string)
				if !ok {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " must be a string",
					})
					continue
				}
				s = strings.TrimSpace(s)
				if r.kind == kindEmail {
					s = strings.ToLower(s)
					if !emailRegexp.MatchString(s) {
						errs = append(errs, fieldError{
							Field:   r.field,
							Message: "invalid email",
						})
						continue
					}
				}
				if r.required && s == "" {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " is required",
					})
					continue
				}
				if r.minLen > 0 && utf8.RuneCountInString(s) < r.minLen {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: fmt.Sprintf("%s must be at least %d characters", r.field, r.minLen),
					})
					continue
				}
				if r.maxLen > 0 && utf8.RuneCountInString(s) > r.maxLen {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: fmt.Sprintf("%s must be at most %d characters", r.field, r.maxLen),
					})
					continue
				}
				body[r.field] = s
			case kindNumber:
				if _, ok := value.(float64); !ok {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " must be a number",
					})
				}
			case kindBool:
				if _, ok := value.(bool); !ok {
					errs = append(errs, fieldError{
						Field:   r.field,
						Message: r.field + " must be a boolean",
					})
				}
			}
		}

		if len(errs) > 0 {
			abortWithFieldErrors(c, errs)
			return
		}

		c.Set(validatedBodyKey, body)
		c.Next()
	}
}

func validatedBody(c *gin.Context) map[string]any {
	value, exists := c.Get(validatedBodyKey)
	if !exists {
		return map[string]any{}
	}
	body, ok := value.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return body
}

// The body helpers report presence of the key; an explicit null reads as
// present with the zero value.

func bodyString(body map[string]any, key string) (string, bool) {
	value, present := body[key]
	if !present {
		return "", false
	}
	s, _ := value.(string)
	return s, true
}

func bodyNumber(body map[string]any, key string) (float64, bool) {
	value, present := body[key]
	if !present {
		return 0, false
	}
	n, _ := value.(float64)
	return n, true
}

func bodyBool(body map[string]any, key string) (bool, bool) {
	value, present := body[key]
	if !present {
		return false, false
	}
	b, _ := value.(bool)
	return b, true
}
