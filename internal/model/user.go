package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleCoach   Role = "coach"
	RoleAthlete Role = "athlete"
)

type User struct {
	ID        uuid.UUID `db:"id"`
	GymID     uuid.UUID `db:"gym_id"`
	Email     string    `db:"email"`
	Name      *string   `db:"name"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
