package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

const deadlineMessage = "must be a UTC date-time such as 2030-01-02T15:04:05Z"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     *string `json:"name"`
}

func (in *RegisterInput) UnmarshalJSON(data []byte) error {
	type plain RegisterInput
	return decodeInput(data, (*plain)(in))
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) UnmarshalJSON(data []byte) error {
	type plain LoginInput
	return decodeInput(data, (*plain)(in))
}

type CreateNoteInput struct {
	Title   string  `json:"title" validate:"required"`
	Content *string `json:"content" validate:"required"`
	Type    string  `json:"type" validate:"omitempty,oneof=note task"`
	// Deadline is an RFC 3339 date-time; null or absent means no deadline.
	Deadline *string `json:"deadline"`
}

func (in *CreateNoteInput) UnmarshalJSON(data []byte) error {
	type plain CreateNoteInput
	return decodeInput(data, (*plain)(in), "deadline")
}

// NotePatch carries the fields of a partial update. A nil pointer means the
// field was not sent.
type NotePatch struct {
	Title     *string      `json:"title"`
	Content   *string      `json:"content"`
	Completed *bool        `json:"completed"`
	Deadline  NullableTime `json:"deadline"`
}

func (p *NotePatch) UnmarshalJSON(data []byte) error {
	type plain NotePatch
	return decodeInput(data, (*plain)(p), "deadline")
}

// decodeInput decodes a JSON object into v, rejecting unknown fields and a
// null value on any field not listed in nullable.
func decodeInput(data []byte, v interface{}, nullable ...string) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !bytes.Equal(bytes.TrimSpace(fields[key]), []byte("null")) || isNullable(key, nullable) {
			continue
		}
		return newValidationError(key, "must not be null")
	}
	return nil
}

func isNullable(key string, nullable []string) bool {
	for _, name := range nullable {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// NullableTime tells an absent JSON field apart from an explicit null.
type NullableTime struct {
	Set   bool
	Valid bool
	Value time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		n.Value = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return newValidationError("deadline", "must be a date-time string or null")
	}
	t, err := parseDeadline(raw)
	if err != nil {
		return err
	}
	n.Valid = true
	n.Value = t
	return nil
}

// parseDeadline accepts RFC 3339 date-times in UTC, written with a Z suffix.
func parseDeadline(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil || !strings.HasSuffix(raw, "Z") {
		return time.Time{}, newValidationError("deadline", deadlineMessage)
	}
	return t.UTC().Truncate(time.Microsecond), nil
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return newValidationError(fe.Field(), validationMessage(fe))
	}
	return fmt.Errorf("validate input: %w", err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func (in CreateNoteInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Deadline != nil {
		if _, err := parseDeadline(*in.Deadline); err != nil {
			return err
		}
	}
	return nil
}

func (p NotePatch) validate() error {
	if p.Title != nil && *p.Title == "" {
		return newValidationError("title", "must not be empty")
	}
	return nil
}
