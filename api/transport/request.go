package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/taskmanager/domain"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string               `json:"title" validate:"notblank,max=100"`
	Description string               `json:"description" validate:"max=500"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	DueDate     *DateTime            `json:"dueDate"`
	AssignedTo  string               `json:"assignedTo" validate:"max=100"`
}

// ToTask converts the request into a new entity. Defaults are left to the use case.
func (r CreateTaskRequest) ToTask() *domain.Task {
	task := &domain.Task{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
	}
	if r.Status != nil {
		task.Status = *r.Status
	}
	if r.Priority != nil {
		task.Priority = *r.Priority
	}
	if r.DueDate != nil && !r.DueDate.IsZero() {
		due := r.DueDate.Time
		task.DueDate = &due
	}
	return task
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Absent and null
// fields leave the stored value unchanged.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	DueDate     *DateTime            `json:"dueDate"`
	AssignedTo  *string              `json:"assignedTo"`
}

func (r UpdateTaskRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		AssignedTo:  r.AssignedTo,
	}
	if r.DueDate != nil && !r.DueDate.IsZero() {
		due := r.DueDate.Time
		patch.DueDate = &due
	}
	return patch
}

// FieldViolation describes one rejected field.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError lists every violation found in a request.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", v.Field, v.Rule, v.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Rule))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validator checks request DTOs before they reach the use case.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", notBlank)
	return &Validator{validate: v}
}

func (v *Validator) ValidateCreate(req CreateTaskRequest) error {
	return v.wrap(v.validate.Struct(req))
}

// ValidateUpdate applies the create rules to every field present in the patch.
func (v *Validator) ValidateUpdate(req UpdateTaskRequest) error {
	var violations []FieldViolation
	check := func(field string, value *string, tag string) {
		if value == nil {
			return
		}
		if err := v.validate.Var(*value, tag); err != nil {
			violations = append(violations, toViolations(field, err)...)
		}
	}
	check("title", req.Title, "notblank,max=100")
	check("description", req.Description, "max=500")
	check("assignedTo", req.AssignedTo, "max=100")

	if len(violations) > 0 {
		return domain.WrapError(domain.ErrCodeInvalid, "validation failed", &ValidationError{Violations: violations})
	}
	return nil
}

func (v *Validator) wrap(err error) error {
	if err == nil {
		return nil
	}
	violations := toViolations("", err)
	if len(violations) == 0 {
		return domain.WrapError(domain.ErrCodeInvalid, "validation failed", err)
	}
	return domain.WrapError(domain.ErrCodeInvalid, "validation failed", &ValidationError{Violations: violations})
}

func toViolations(field string, err error) []FieldViolation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	out := make([]FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		out = append(out, FieldViolation{Field: name, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// DecodeJSON unmarshals body into dst, reporting malformed input as an INVALID domain error.
func DecodeJSON(body []byte, dst interface{}) error {
	if len(body) == 0 {
		return domain.ErrInvalidPayload
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return nil
}
