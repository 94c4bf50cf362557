// Package schema provides declarative configuration schemas for platform
// modules. A schema is a plain list of field descriptors that both the
// runtime validator and any form-rendering layer consume identically;
// keeping it data rather than code avoids duck-typing on schema internals.
package schema

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

// FieldType declares the primitive constraint applied to a field value.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInt      FieldType = "int"
	TypeBool     FieldType = "bool"
	TypeURL      FieldType = "url"
	TypeEmail    FieldType = "email"
	TypeDuration FieldType = "duration"
	TypeEnum     FieldType = "enum"
)

// FieldSpec describes one configuration or credential field.
type FieldSpec struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`

	// Secret marks values that must be masked in any UI rendering.
	Secret bool `json:"secret,omitempty"`

	// Enum lists the allowed values for TypeEnum fields.
	Enum []string `json:"enum,omitempty"`

	// Min and Max bound TypeInt fields when non-nil.
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// ConfigSchema is the declarative schema for one platform's configuration.
type ConfigSchema struct {
	Fields []FieldSpec `json:"fields"`
}

// Result reports validation outcome with per-field messages so callers
// can highlight exactly which fields are wrong.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// MissingFields returns the names of required fields reported absent.
func (r *Result) MissingFields() []string {
	var missing []string
	for field, msg := range r.Errors {
		if msg == msgRequired {
			missing = append(missing, field)
		}
	}
	return missing
}

// ErrorDetails converts per-field errors into a structured details map
// for embedding in a failure response.
func (r *Result) ErrorDetails() map[string]any {
	details := make(map[string]any, len(r.Errors))
	for field, msg := range r.Errors {
		details[field] = msg
	}
	return details
}

const msgRequired = "field is required"

// Validate checks a configuration map against the schema. Required fields
// must be present and non-empty; present fields must satisfy their type
// constraint even when optional; unknown extra fields are ignored for
// forward compatibility. The input is not mutated.
func (s ConfigSchema) Validate(cfg map[string]any) *Result {
	result := &Result{Valid: true, Errors: make(map[string]string)}

	for _, field := range s.Fields {
		value, present := cfg[field.Name]

		if !present || isEmpty(value) {
			if field.Required {
				result.Valid = false
				result.Errors[field.Name] = msgRequired
			}
			continue
		}

		if err := validateValue(field, value); err != nil {
			result.Valid = false
			result.Errors[field.Name] = err.Error()
		}
	}

	return result
}

// FieldNames returns the declared field names in schema order.
func (s ConfigSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// RequiredFields returns the names of required fields in schema order.
func (s ConfigSchema) RequiredFields() []string {
	var required []string
	for _, f := range s.Fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str) == ""
	}
	return false
}

func validateValue(field FieldSpec, value any) error {
	switch field.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("must be a string")
		}
	case TypeInt, TypeDuration:
		n, ok := asInt(value)
		if !ok {
			return fmt.Errorf("must be an integer")
		}
		if field.Min != nil && n < *field.Min {
			return fmt.Errorf("must be at least %d", *field.Min)
		}
		if field.Max != nil && n > *field.Max {
			return fmt.Errorf("must be at most %d", *field.Max)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("must be a boolean")
		}
	case TypeURL:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be a URL string")
		}
		parsed, err := url.Parse(str)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("must be a valid URL with scheme and host")
		}
	case TypeEmail:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be an email string")
		}
		if _, err := mail.ParseAddress(str); err != nil {
			return fmt.Errorf("must be a valid email address")
		}
	case TypeEnum:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		for _, allowed := range field.Enum {
			if str == allowed {
				return nil
			}
		}
		return fmt.Errorf("must be one of: %s", strings.Join(field.Enum, ", "))
	}
	return nil
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case time.Duration:
		return int(v / time.Second), true
	}
	return 0, false
}
