package domain

import "time"

type Profile struct {
	ID          string     `json:"id" db:"id"`
	DisplayName string     `json:"display_name" db:"display_name"`
	PhotoURL    string     `json:"photo_url" db:"photo_url"`
	Bio         string     `json:"bio" db:"bio"`
	Location    string     `json:"location" db:"location"`
	Phone       string     `json:"-" db:"phone"`
	BirthDate   *time.Time `json:"birth_date" db:"birth_date"`
	Latitude    *float64   `json:"latitude" db:"latitude"`
	Longitude   *float64   `json:"longitude" db:"longitude"`
	Interests   []string   `json:"interests" db:"interests"`
	Expertise   *string    `json:"expertise" db:"expertise"`
	Gender      string     `json:"gender" db:"gender"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	IsVerified  bool       `json:"is_verified" db:"is_verified"`
	IsVisible   bool       `json:"is_visible" db:"is_visible"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsComplete reports whether every field needed to present the profile as a
// card is populated. Incomplete profiles never enter a candidate list.
func (p *Profile) IsComplete() bool {
	return p.PhotoURL != "" &&
		p.Bio != "" &&
		p.Location != "" &&
		p.Phone != "" &&
		p.IsActive &&
		p.IsVerified &&
		p.BirthDate != nil && !p.BirthDate.IsZero() &&
		len(p.Interests) > 0 &&
		p.IsVisible
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p *Profile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Age returns the age in whole years as of now, or 0 without a birth date.
func (p *Profile) Age(now time.Time) int {
	if p.BirthDate == nil {
		return 0
	}
	return AgeAt(*p.BirthDate, now)
}

// AgeAt counts the birthdays that have passed between birth and now. Birth
// dates are stored as UTC midnight, so the calendar date is read in UTC.
func AgeAt(birth, now time.Time) int {
	by, bm, bd := birth.UTC().Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
