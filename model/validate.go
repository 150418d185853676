package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// FieldError is one schema problem, keyed by the path of the offending field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the invariants a survey must hold before it is stored.
// Every problem is reported, not just the first.
func Validate(s Survey) error {
	var result *multierror.Error
	fail := func(field, msg string, args ...any) {
		result = multierror.Append(result, &FieldError{field, fmt.Sprintf(msg, args...)})
	}

	if blank(s.Title) {
		fail("title", "Survey title is required")
	}
	if s.RequiresOrganization && s.OrganizationID == nil {
		fail("organization_id", "Please select an organization when organization access is required")
	}
	if len(s.Questions) == 0 {
		fail("questions", "At least one question is required")
	}

	for i, q := range s.Questions {
		path := fmt.Sprintf("questions[%d]", i)
		if blank(q.Text) {
			fail(path+".text", "Question %d text is required", i+1)
		}

		switch q.Type {
		case SingleChoice, MultipleChoice:
			if len(q.Choices) == 0 {
				fail(path+".choices", "Question %d requires at least one choice", i+1)
			}
			for j, c := range q.Choices {
				if blank(c.Text) {
					fail(fmt.Sprintf("%s.choices[%d].text", path, j), "Choice %d in Question %d is required", j+1, i+1)
				}
			}
		case Text:
			if len(q.Choices) > 0 {
				fail(path+".choices", "Question %d does not accept choices", i+1)
			}
		default:
			fail(path+".type", "Question %d has an unknown type %q", i+1, q.Type)
		}
	}

	return result.ErrorOrNil()
}

// FieldErrors flattens an error returned by Validate into field -> message.
// It returns nil if err carries no FieldError.
func FieldErrors(err error) map[string]string {
	var errs []error
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	} else if err != nil {
		errs = []error{err}
	}

	var fields map[string]string
	for _, e := range errs {
		var fe *FieldError
		if !errors.As(e, &fe) {
			continue
		}
		if fields == nil {
			fields = map[string]string{}
		}
		if _, seen := fields[fe.Field]; !seen {
			fields[fe.Field] = fe.Message
		}
	}
	return fields
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
