package compliance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

// ErrInvalidRecord is returned when a record fails boundary validation
var ErrInvalidRecord = errors.New("invalid record")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	register := func(tag string, fn func(string) bool) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
		}
	}

	register("jurisdiction", func(s string) bool { return jurisdiction.Code(s).IsValid() })
	register("incident_type", func(s string) bool { return IncidentType(s).IsValid() })
	register("severity", func(s string) bool { return Severity(s).IsValid() })
	register("animal_status", func(s string) bool { return AnimalStatus(s).IsValid() })

	return v
}

// Validate checks a record's required fields and enumerations. The returned
// error wraps ErrInvalidRecord.
func Validate(record interface{}) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
}

// NewCoordinate builds a coordinate, rejecting non-finite or out-of-range values
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidRecord, lat, lng)
	}
	return c, nil
}

// NewIncidentReport validates and returns an incident report
func NewIncidentReport(r IncidentReport) (IncidentReport, error) {
	r.ReportedTo = strings.TrimSpace(r.ReportedTo)
	if err := Validate(r); err != nil {
		return IncidentReport{}, err
	}
	return r, nil
}

// NewCarerLicenceRecord validates and returns a carer licence record
func NewCarerLicenceRecord(r CarerLicenceRecord) (CarerLicenceRecord, error) {
	if r.Jurisdiction != "" {
		code, _ := jurisdiction.ParseCode(string(r.Jurisdiction))
		r.Jurisdiction = code
	}
	if err := Validate(r); err != nil {
		return CarerLicenceRecord{}, err
	}
	return r, nil
}

// NewReleaseChecklist validates and returns a release checklist. A missing
// status defaults to draft.
func NewReleaseChecklist(r ReleaseChecklist) (ReleaseChecklist, error) {
	if r.Status == "" {
		r.Status = ChecklistDraft
	}
	if err := Validate(r); err != nil {
		return ReleaseChecklist{}, err
	}
	return r, nil
}

// NewAnimal validates and returns an animal record. A missing status defaults to IN_CARE.
func NewAnimal(a Animal) (Animal, error) {
	if a.Status == "" {
		a.Status = AnimalInCare
	}
	if err := Validate(a); err != nil {
		return Animal{}, err
	}
	return a, nil
}
