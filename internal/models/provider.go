package models

import "time"

type ExperienceLevel string

const (
	ExperienceJunior       ExperienceLevel = "junior"
	ExperiencePleno        ExperienceLevel = "pleno"
	ExperienceSenior       ExperienceLevel = "senior"
	ExperienceEspecialista ExperienceLevel = "especialista"
)

// Rank returns the ordinal position of the level (junior=1 .. especialista=4), or 0 if unknown.
func (e ExperienceLevel) Rank() int {
	switch e {
	case ExperienceJunior:
		return 1
	case ExperiencePleno:
		return 2
	case ExperienceSenior:
		return 3
	case ExperienceEspecialista:
		return 4
	default:
		return 0
	}
}

func (e ExperienceLevel) Valid() bool {
	return e.Rank() > 0
}

type AvailabilityTier string

const (
	AvailabilityImmediate   AvailabilityTier = "immediate"
	AvailabilityWeek        AvailabilityTier = "week"
	AvailabilityFlexible    AvailabilityTier = "flexible"
	AvailabilityUnspecified AvailabilityTier = "unspecified"
)

func (a AvailabilityTier) Valid() bool {
	switch a {
	case AvailabilityImmediate, AvailabilityWeek, AvailabilityFlexible, AvailabilityUnspecified:
		return true
	}
	return false
}

// Provider roster statuses. Only approved providers are offered for matching.
const (
	ProviderStatusPending  = "pending"
	ProviderStatusApproved = "approved"
	ProviderStatusRejected = "rejected"
)

// Candidate is a provider snapshot taken for one scoring pass.
type Candidate struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Experience    ExperienceLevel  `json:"experience" db:"experience_level"`
	Specialties   []string         `json:"specialties" db:"specialties"`
	QualityRating float64          `json:"qualityRating" db:"quality_rating"`
	TotalJobs     int              `json:"totalJobs" db:"total_jobs"`
	CompletedJobs int              `json:"completedJobs" db:"completed_jobs"`
	Availability  AvailabilityTier `json:"availability" db:"availability"`
	LastActive    *time.Time       `json:"lastActive,omitempty" db:"last_active_at"`
}

// ProviderContact is the subset of a provider record needed to reach them.
type ProviderContact struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`
}
