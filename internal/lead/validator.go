// Package lead implements the "request a call back" workflow: validating raw
// form input into a domain.LeadSubmission, mapping it to the email template
// payload, and dispatching it once through an email.Sender.
package lead

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/DukeRupert/cowork/internal/domain"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Field names used for raw input keys and field-level errors.
const (
	FieldName          = "name"
	FieldCompanyName   = "companyName"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldWorkspaceType = "workspaceType"
	FieldMessage       = "message"
)

// Values holds raw, untrusted form input. Every field is a string, and any
// of them may be empty.
type Values struct {
	Name          string `json:"name" validate:"required,single_line"`
	CompanyName   string `json:"companyName" validate:"single_line"`
	Email         string `json:"email" validate:"email,email_tld"`
	Phone         string `json:"phone" validate:"required,single_line"`
	WorkspaceType string `json:"workspaceType" validate:"required,workspace"`
	Message       string `json:"message"`
}

// ValuesFromMap builds Values from a field name -> raw value mapping.
// Unknown keys are ignored.
func ValuesFromMap(m map[string]string) Values {
	return Values{
		Name:          m[FieldName],
		CompanyName:   m[FieldCompanyName],
		Email:         m[FieldEmail],
		Phone:         m[FieldPhone],
		WorkspaceType: m[FieldWorkspaceType],
		Message:       m[FieldMessage],
	}
}

// Map returns the values keyed by field name.
func (v Values) Map() map[string]string {
	return map[string]string{
		FieldName:          v.Name,
		FieldCompanyName:   v.CompanyName,
		FieldEmail:         v.Email,
		FieldPhone:         v.Phone,
		FieldWorkspaceType: v.WorkspaceType,
		FieldMessage:       v.Message,
	}
}

// normalized trims surrounding whitespace and applies NFC normalization so
// visually identical input compares equal.
func (v Values) normalized() Values {
	clean := func(s string) string {
		return norm.NFC.String(strings.TrimSpace(s))
	}
	return Values{
		Name:          clean(v.Name),
		CompanyName:   clean(v.CompanyName),
		Email:         clean(v.Email),
		Phone:         clean(v.Phone),
		WorkspaceType: clean(v.WorkspaceType),
		Message:       clean(v.Message),
	}
}

// fieldMessages maps field -> validation kind -> user-facing message.
var fieldMessages = map[string]map[string]string{
	FieldName: {
		domain.EREQUIRED: "Name is required.",
		domain.EFORMAT:   "Name must be a single line of text.",
	},
	FieldCompanyName: {
		domain.EFORMAT: "Company name must be a single line of text.",
	},
	FieldEmail: {
		domain.EFORMAT: "Please enter a valid email.",
	},
	FieldPhone: {
		domain.EREQUIRED: "Phone number is required.",
		domain.EFORMAT:   "Phone number must be a single line of text.",
	},
	FieldWorkspaceType: {
		domain.EREQUIRED: "Please select a workspace.",
		domain.EENUM:     "Please select a valid workspace.",
	},
}

// Validator turns raw form input into a domain.LeadSubmission.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the lead-specific tags registered.
func NewValidator() *Validator {
	v := validator.New()

	// Report errors under the json field names so they line up with the
	// raw input keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("workspace", validWorkspace)
	_ = v.RegisterValidation("single_line", singleLine)
	_ = v.RegisterValidation("email_tld", emailTLD)

	return &Validator{validate: v}
}

// validWorkspace accepts only enumeration keys.
func validWorkspace(fl validator.FieldLevel) bool {
	_, ok := domain.ParseWorkspaceType(fl.Field().String())
	return ok
}

// singleLine rejects control characters. Names and phone numbers end up in
// mail headers, where a line break would start a new header.
func singleLine(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// emailTLD requires the domain to end in a top-level label of at least two
// letters. The email tag alone accepts "jane@localhost" and "jane@x.c".
func emailTLD(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return false
	}
	domainPart := addr[at+1:]
	dot := strings.LastIndexByte(domainPart, '.')
	if dot < 0 {
		return false
	}
	tld := domainPart[dot+1:]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Validate checks raw input and returns either a LeadSubmission or a
// *domain.ValidationError describing every failing field.
// It has no side effects.
func (v *Validator) Validate(raw Values) (domain.LeadSubmission, error) {
	const op = "lead.validate"

	in := raw.normalized()

	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.LeadSubmission{}, domain.Internal(err, op, "failed to validate lead")
		}

		ve := &domain.ValidationError{
			Op:     op,
			Fields: make(map[string]string, len(fieldErrs)),
			Kinds:  make(map[string]string, len(fieldErrs)),
		}
		for _, fe := range fieldErrs {
			kind := kindForTag(fe.Tag())
			domain.AddFieldError(ve, fe.Field(), kind, messageFor(fe.Field(), kind))
		}
		return domain.LeadSubmission{}, ve
	}

	// The workspace tag already guarantees membership.
	workspace, _ := domain.ParseWorkspaceType(in.WorkspaceType)

	return domain.LeadSubmission{
		Name:          in.Name,
		CompanyName:   in.CompanyName,
		Email:         in.Email,
		Phone:         in.Phone,
		WorkspaceType: workspace,
		Message:       in.Message,
	}, nil
}

// ValidateWorkspace checks a single workspace key the same way Validate does.
// An empty key is a required-field failure.
func (v *Validator) ValidateWorkspace(key string) (domain.WorkspaceType, error) {
	const op = "lead.validate_workspace"

	key = norm.NFC.String(strings.TrimSpace(key))
	if err := v.validate.Var(key, "required,workspace"); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return "", domain.Internal(err, op, "failed to validate workspace")
		}
		kind := kindForTag(fieldErrs[0].Tag())
		return "", domain.NewValidationError(op, FieldWorkspaceType, kind, messageFor(FieldWorkspaceType, kind))
	}

	workspace, _ := domain.ParseWorkspaceType(key)
	return workspace, nil
}

func kindForTag(tag string) string {
	switch tag {
	case "required":
		return domain.EREQUIRED
	case "workspace":
		return domain.EENUM
	default:
		return domain.EFORMAT
	}
}

func messageFor(field, kind string) string {
	if msg, ok := fieldMessages[field][kind]; ok {
		return msg
	}
	return "This field is invalid."
}

var defaultValidator = NewValidator()

// Validate validates raw input with the shared default Validator.
func Validate(raw Values) (domain.LeadSubmission, error) {
	return defaultValidator.Validate(raw)
}

// ValidateMap validates a field name -> raw value mapping.
func ValidateMap(m map[string]string) (domain.LeadSubmission, error) {
	return defaultValidator.Validate(ValuesFromMap(m))
}
