package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/gradary/pkg/model"
)

// ErrMissingField is returned when a required form field is blank.
var ErrMissingField = errors.New("required field is empty")

// Input is a task that has not been added yet.
type Input struct {
	Title     string
	Subject   string
	Type      model.TaskType
	DueDate   model.Date
	Completed bool
}

// ParseInput validates raw form values. Title, subject and date are required;
// an unknown or blank type becomes "other".
func ParseInput(title, subject, typ, date string) (Input, error) {
	in := Input{
		Title:   strings.TrimSpace(title),
		Subject: strings.TrimSpace(subject),
		Type:    model.ParseTaskType(typ),
	}

	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Subject == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return Input{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	due, err := model.ParseDate(date)
	if err != nil {
		return Input{}, err
	}
	in.DueDate = due
	return in, nil
}
