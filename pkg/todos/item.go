package todos

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Item is the single domain entity. UserID always comes from the
// authenticated principal, never from a request payload.
type Item struct {
	UserID        string `json:"userId" dynamodbav:"userId" validate:"required"`
	TodoID        string `json:"todoId" dynamodbav:"todoId" validate:"required"`
	Name          string `json:"name" dynamodbav:"name" validate:"required"`
	DueDate       string `json:"dueDate" dynamodbav:"dueDate" validate:"required,dateonly"`
	CreatedAt     string `json:"createdAt" dynamodbav:"createdAt" validate:"required"`
	Done          bool   `json:"done" dynamodbav:"done"`
	AttachmentURL string `json:"attachmentUrl,omitempty" dynamodbav:"attachmentUrl,omitempty"`
}

// Patch carries the updatable fields; nil means "leave untouched".
type Patch struct {
	Name    *string `json:"name"`
	DueDate *string `json:"dueDate"`
	Done    *bool   `json:"done"`
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.DueDate == nil && p.Done == nil
}

// newValidator builds the item validator with the dateonly rule for
// YYYY-MM-DD due dates.
func newValidator() *validator.Validate {
	valid := validator.New()
	_ = valid.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	return valid
}
