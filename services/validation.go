package services

import (
	"fmt"
	"regexp"
	"strings"

	"tasklist/backend/models"

	"github.com/go-playground/validator/v10"
)

const (
	maxTitleLength    = 255
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72

	msgRequired  = "This field is required."
	msgBlank     = "This field may not be blank."
	msgNull      = "This field may not be null."
	msgNotString = "Not a valid string."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// TaskInput is the writable part of a task as submitted by a client.
type TaskInput struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	Status      OptionalString `json:"status"`
}

// taskChanges is a TaskInput that passed validation, normalized.
type taskChanges struct {
	Title *string
	// Description is applied when DescriptionSet, a nil value clears it.
	Description    *string
	DescriptionSet bool
	Status         *models.TaskStatus
}

func (c taskChanges) apply(task *models.Task) {
	if c.Title != nil {
		task.Title = *c.Title
	}
	if c.DescriptionSet {
		task.Description = c.Description
	}
	if c.Status != nil {
		task.Status = *c.Status
	}
}

// validateNewTask checks input for task creation: title is required. Status
// is not accepted on creation and is ignored.
func validateNewTask(input TaskInput) (taskChanges, error) {
	verr := &ValidationError{}
	var changes taskChanges

	if !input.Title.Set {
		verr.Add("title", msgRequired)
	} else {
		changes.Title = validateTitle(verr, input.Title)
	}
	validateDescription(verr, input.Description, &changes)

	return changes, verr.errOrNil()
}

// validateTaskUpdate checks a partial update. Only supplied fields are
// validated and returned.
func validateTaskUpdate(input TaskInput) (taskChanges, error) {
	verr := &ValidationError{}
	var changes taskChanges

	if input.Title.Set {
		changes.Title = validateTitle(verr, input.Title)
	}
	validateDescription(verr, input.Description, &changes)
	if input.Status.Set {
		changes.Status = validateStatus(verr, input.Status)
	}

	return changes, verr.errOrNil()
}

// checkString reports the value of a supplied field that must not be null.
func checkString(verr *ValidationError, field string, value OptionalString) (string, bool) {
	switch {
	case value.Null:
		verr.Add(field, msgNull)
		return "", false
	case value.Invalid:
		verr.Add(field, msgNotString)
		return "", false
	}
	return value.Value, true
}

func validateTitle(verr *ValidationError, value OptionalString) *string {
	raw, ok := checkString(verr, "title", value)
	if !ok {
		return nil
	}
	title := strings.TrimSpace(raw)
	if title == "" {
		verr.Add("title", msgBlank)
		return nil
	}
	if err := validate.Var(title, fmt.Sprintf("max=%d", maxTitleLength)); err != nil {
		verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
		return nil
	}
	return &title
}

// validateDescription accepts null, which clears the description.
func validateDescription(verr *ValidationError, value OptionalString, changes *taskChanges) {
	switch {
	case !value.Set:
	case value.Null:
		changes.DescriptionSet = true
	case value.Invalid:
		verr.Add("description", msgNotString)
	default:
		description := strings.TrimSpace(value.Value)
		changes.Description = &description
		changes.DescriptionSet = true
	}
}

func validateStatus(verr *ValidationError, value OptionalString) *models.TaskStatus {
	raw, ok := checkString(verr, "status", value)
	if !ok {
		return nil
	}
	status, ok := models.ParseTaskStatus(raw)
	if !ok {
		verr.Add("status", fmt.Sprintf("%q is not a valid choice.", raw))
		return nil
	}
	return &status
}

// RegisterInput is a registration request.
type RegisterInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func validateRegistration(input *RegisterInput) error {
	verr := &ValidationError{}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	switch {
	case input.Username == "":
		verr.Add("username", msgRequired)
	case validate.Var(input.Username, fmt.Sprintf("max=%d", maxUsernameLength)) != nil:
		verr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case validate.Var(input.Username, "username") != nil:
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if err := validate.Var(input.Email, "omitempty,email"); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}

	switch {
	case input.Password == "":
		verr.Add("password", msgRequired)
	case validate.Var(input.Password, fmt.Sprintf("min=%d", minPasswordLength)) != nil:
		verr.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	case len(input.Password) > maxPasswordLength:
		verr.Add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", maxPasswordLength))
	}

	return verr.errOrNil()
}
