package compliance

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid animal status transition")
	ErrAnimalNotEligible = errors.New("animal is not eligible for a release assessment")
	ErrChecklistLocked   = errors.New("release checklist is locked")
)

var animalTransitions = map[AnimalStatus][]AnimalStatus{
	AnimalInCare:          {AnimalReadyForRelease, AnimalDeceased, AnimalTransferred},
	AnimalReadyForRelease: {AnimalInCare, AnimalReleased, AnimalDeceased, AnimalTransferred},
}

// CanTransition reports whether an animal may move from one status to another
func CanTransition(from, to AnimalStatus) bool {
	for _, next := range animalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves an animal to a new status, stamping the outcome time when
// the animal leaves care.
func Transition(a Animal, to AnimalStatus, at time.Time) (Animal, error) {
	if !CanTransition(a.Status, to) {
		return a, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	a.Status = to
	if to.IsTerminal() {
		outcome := at
		a.OutcomeAt = &outcome
	}
	return a, nil
}

// CanStartReleaseAssessment reports whether a release checklist may be created for an animal
func CanStartReleaseAssessment(status AnimalStatus) bool {
	return status == AnimalInCare || status == AnimalReadyForRelease
}

// CheckReleaseChecklistEditable returns ErrChecklistLocked once the animal has been released
func CheckReleaseChecklistEditable(animal Animal) error {
	if animal.Status == AnimalReleased {
		return fmt.Errorf("%w: animal %s has been released", ErrChecklistLocked, animal.ID)
	}
	return nil
}

// DaysInCare returns the number of whole calendar days between rescue and end.
// The count never goes negative.
func DaysInCare(rescuedAt, end time.Time) int {
	start := truncateToDay(rescuedAt)
	stop := truncateToDay(end.In(rescuedAt.Location()))
	days := int(stop.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DaysInCareFor returns the days an animal has been in care, up to its outcome or now
func DaysInCareFor(a Animal, now time.Time) int {
	end := now
	if a.OutcomeAt != nil {
		end = *a.OutcomeAt
	}
	return DaysInCare(a.RescuedAt, end)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
