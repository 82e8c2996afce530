package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the app_user table. Patients, dentists, and staff all share
// this table; Role distinguishes them.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Role        string    `db:"role" json:"role"`
	PhoneMobile *string   `db:"phone_mobile" json:"phone_mobile,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns "First Last" for display and notification content.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Summary is the joined user shape embedded in appointment responses.
type Summary struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
}

// Branch maps to the clinic_branch table.
type Branch struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
