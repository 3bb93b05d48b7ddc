package domain

import "time"

// Author is a person credited with one or more books.
type Author struct {
	Record
	FirstName   string     `json:"first_name"`
	FamilyName  string     `json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}

// FullName returns "family_name, first_name".
func (a *Author) FullName() string {
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan returns the formatted birth date, followed by " - " and the
// formatted death date when one is recorded.
func (a *Author) Lifespan() string {
	lifespan := a.DateOfBirthFormatted()
	if a.DateOfDeath != nil {
		lifespan += " - " + a.DateOfDeathFormatted()
	}
	return lifespan
}

// URL returns the author's canonical path.
func (a *Author) URL() string {
	return "/catalog/author/" + a.ID
}

// DateOfBirthFormatted returns the display form of the birth date.
func (a *Author) DateOfBirthFormatted() string {
	return displayDatePtr(a.DateOfBirth)
}

// DateOfDeathFormatted returns the display form of the death date.
func (a *Author) DateOfDeathFormatted() string {
	return displayDatePtr(a.DateOfDeath)
}

// DateOfBirthForm returns the birth date as YYYY-MM-DD for form controls.
func (a *Author) DateOfBirthForm() string {
	return formDatePtr(a.DateOfBirth)
}

// DateOfDeathForm returns the death date as YYYY-MM-DD for form controls.
func (a *Author) DateOfDeathForm() string {
	return formDatePtr(a.DateOfDeath)
}
