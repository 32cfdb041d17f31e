package models

import (
	"time"

	"github.com/google/uuid"
)

// Cat represents an agent account
type Cat struct {
	UUID              uuid.UUID `db:"uuid" json:"uuid"`
	Name              string    `db:"name" json:"name"`
	Password          string    `db:"password" json:"-"`
	RefreshToken      *string   `db:"refresh_token" json:"-"`
	ResetToken        *string   `db:"reset_token" json:"-"`
	YearsOfExperience int       `db:"years_of_experience" json:"years_of_experience"`
	Breed             string    `db:"breed" json:"breed"`
	Salary            int       `db:"salary" json:"salary"`
	IsStaff           bool      `db:"is_staff" json:"is_staff"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// CatProfile is what a cat sees about itself.
type CatProfile struct {
	Name              string    `json:"name"`
	YearsOfExperience int       `json:"years_of_experience"`
	Breed             string    `json:"breed"`
	Salary            int       `json:"salary"`
	CreatedAt         time.Time `json:"created_at"`
}

func (c *Cat) Profile() CatProfile {
	return CatProfile{
		Name:              c.Name,
		YearsOfExperience: c.YearsOfExperience,
		Breed:             c.Breed,
		Salary:            c.Salary,
		CreatedAt:         c.CreatedAt,
	}
}

// HasRefreshToken reports whether token is the one currently stored.
func (c *Cat) HasRefreshToken(token string) bool {
	return c.RefreshToken != nil && token != "" && *c.RefreshToken == token
}
