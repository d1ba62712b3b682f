// Package message holds the outbound SMS template catalog. Templates are
// keyed by (kind, locale); the neutral Indonesian locale is the required
// default and every kind must have it, checked once at startup.
package message

import (
	"fmt"
	"strings"
	"text/template"
)

// Kind identifies one outbound message template.
type Kind string

const (
	KindReminder             Kind = "reminder"
	KindOverdueAlert         Kind = "overdue_alert"
	KindRegistrationSuccess  Kind = "registration_success"
	KindAlreadyRegistered    Kind = "already_registered"
	KindReportSuccess        Kind = "report_success"
	KindInfoResponse         Kind = "info_response"
	KindHelp                 Kind = "help"
	KindInvalidFormat        Kind = "invalid_format"
	KindUnauthorizedReporter Kind = "unauthorized_reporter"
	KindScheduleNotFound     Kind = "schedule_not_found"
	KindBabyNotFound         Kind = "baby_not_found"
	KindUnauthorizedInfo     Kind = "unauthorized_info"
)

// DefaultLocale is the neutral Indonesian fallback every kind must carry.
const DefaultLocale = "id"

// LocaleSasak carries the Sasak-Indonesian cultural variants used in the
// Central Lombok deployment.
const LocaleSasak = "sasak"

var allKinds = []Kind{
	KindReminder, KindOverdueAlert, KindRegistrationSuccess,
	KindAlreadyRegistered, KindReportSuccess, KindInfoResponse, KindHelp,
	KindInvalidFormat, KindUnauthorizedReporter, KindScheduleNotFound,
	KindBabyNotFound, KindUnauthorizedInfo,
}

// Vars carries the substitution values for one composed message. Unused
// fields are simply ignored by the template.
type Vars struct {
	BabyName       string
	BabyID         string
	MotherName     string
	Village        string
	DoseLabel      string
	DoseCode       string
	DueDate        string
	WorkerName     string
	CompletedCount int
	ScheduleLines  []string
}

var ErrTemplateMissing = fmt.Errorf("no template registered for kind and locale")

type key struct {
	kind   Kind
	locale string
}

// Catalog is an immutable set of parsed templates.
type Catalog struct {
	templates map[key]*template.Template
}

// NewCatalog parses the built-in template sources and verifies that every
// kind has a default-locale entry. A missing default is a programming
// error and fails startup.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{templates: make(map[key]*template.Template)}
	for k, src := range builtinTemplates {
		tmpl, err := template.New(string(k.kind) + "/" + k.locale).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s/%s: %w", k.kind, k.locale, err)
		}
		c.templates[k] = tmpl
	}
	for _, kind := range allKinds {
		if _, ok := c.templates[key{kind, DefaultLocale}]; !ok {
			return nil, fmt.Errorf("kind %s has no %s default template", kind, DefaultLocale)
		}
	}
	return c, nil
}

// Compose renders the template for (kind, locale), falling back to the
// default locale when no localized variant exists. Identical inputs
// always produce identical text.
func (c *Catalog) Compose(kind Kind, locale string, vars Vars) (string, error) {
	tmpl, ok := c.templates[key{kind, strings.ToLower(locale)}]
	if !ok {
		tmpl, ok = c.templates[key{kind, DefaultLocale}]
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrTemplateMissing, kind, locale)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", kind, err)
	}
	return b.String(), nil
}

// KindForReminder maps a record's pre-send state to the reminder kind:
// past-due records get the firmer overdue wording.
func KindForReminder(overdue bool) Kind {
	if overdue {
		return KindOverdueAlert
	}
	return KindReminder
}
