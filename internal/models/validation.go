package models

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrInvalidCandidateData = errors.New("INVALID_CANDIDATE_DATA")
	ErrInvalidCriteria      = errors.New("INVALID_CRITERIA")
)

var (
	experienceLevels  = []interface{}{ExperienceJunior, ExperiencePleno, ExperienceSenior, ExperienceEspecialista}
	availabilityTiers = []interface{}{AvailabilityImmediate, AvailabilityWeek, AvailabilityFlexible, AvailabilityUnspecified}
	urgencyTiers      = []interface{}{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent}
	complexityTiers   = []interface{}{ComplexitySimple, ComplexityModerate, ComplexityComplex}
)

// Validate rejects candidates that cannot be scored. Every field is required, including the availability tier.
func (c Candidate) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Experience, validation.Required, validation.In(experienceLevels...)),
		validation.Field(&c.Availability, validation.Required, validation.In(availabilityTiers...)),
		validation.Field(&c.QualityRating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&c.TotalJobs, validation.Min(0)),
		validation.Field(&c.CompletedJobs, validation.Min(0), validation.Max(c.TotalJobs)),
	)
	if err != nil {
		return fmt.Errorf("%w: candidate %q: %v", ErrInvalidCandidateData, c.ID, err)
	}
	return nil
}

func (cr Criteria) Validate() error {
	err := validation.ValidateStruct(&cr,
		validation.Field(&cr.LegalArea, validation.Required),
		validation.Field(&cr.Urgency, validation.Required, validation.In(urgencyTiers...)),
		validation.Field(&cr.RequiredExperience, validation.Required, validation.In(experienceLevels...)),
		validation.Field(&cr.EstimatedHours, validation.Min(0.0)),
		validation.Field(&cr.Complexity, validation.In(complexityTiers...)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return nil
}
