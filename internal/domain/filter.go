package domain

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

const GenderAll = "all"

const (
	DefaultMaxDistanceKm      = 50
	DefaultMinAge             = 18
	DefaultMaxAge             = 65
	DefaultMinCommonInterests = 1
)

type AgeRange struct {
	Min int `json:"min" validate:"gte=18,lte=120"`
	Max int `json:"max" validate:"gtefield=Min,lte=120"`
}

// Contains reports whether age lies inside the inclusive range.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// FilterConfig narrows the candidate pool of a discovery session. It is
// replaced as a whole, never patched.
type FilterConfig struct {
	MaxDistanceKm      float64  `json:"max_distance_km" validate:"gt=0"`
	AgeRange           AgeRange `json:"age_range"`
	Gender             string   `json:"gender" validate:"required"`
	MinCommonInterests int      `json:"min_common_interests" validate:"gte=0"`
	Expertise          []string `json:"expertise" validate:"dive,required"`
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxDistanceKm:      DefaultMaxDistanceKm,
		AgeRange:           AgeRange{Min: DefaultMinAge, Max: DefaultMaxAge},
		Gender:             GenderAll,
		MinCommonInterests: DefaultMinCommonInterests,
	}
}

var filterValidator = validator.New()

func (f FilterConfig) Validate() error {
	if err := filterValidator.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return nil
}

// AcceptsExpertise reports whether a declared level passes the expertise
// restriction. Undeclared levels always pass.
func (f FilterConfig) AcceptsExpertise(level *string) bool {
	if len(f.Expertise) == 0 || level == nil {
		return true
	}
	return slices.Contains(f.Expertise, *level)
}

func (f FilterConfig) AcceptsGender(gender string) bool {
	return f.Gender == GenderAll || f.Gender == gender
}
