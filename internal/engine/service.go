// Package engine owns the occurrence lifecycle of gym events: generation,
// edit reconciliation, attendance and the reminder gate.
package engine

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/model"
	"github.com/aligeramy/somas/internal/recurrence"
)

type Service struct {
	store    db.Store
	validate *validator.Validate
}

func NewService(store db.Store) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := recurrence.ParseClock(fl.Field().String())
		return err == nil
	})
	return &Service{store: store, validate: v}
}

// Caller is the authenticated identity a request runs as.
type Caller struct {
	UserID uuid.UUID
	GymID  uuid.UUID
	Role   model.Role
}

// CanManage reports whether the caller may create, edit or cancel sessions.
func (c Caller) CanManage() bool {
	return c.Role == model.RoleCoach || c.Role == model.RoleOwner
}

func requireManager(c Caller) error {
	if !c.CanManage() {
		return fmt.Errorf("%w: coach or owner role required", ErrForbidden)
	}
	return nil
}

func (s *Service) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}

// CallerOf builds the Caller for an authenticated user.
func CallerOf(u *model.User) Caller {
	return Caller{UserID: u.ID, GymID: u.GymID, Role: u.Role}
}
