package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"workforce/internal/authz"
)

// StoreAPI is the persistence contract for check-in sessions. The production
// implementation is the pgx Store; tests use an in-memory fake.
type StoreAPI interface {
	OpenSession(ctx context.Context, employeeID string) (*Location, error)
	Create(ctx context.Context, loc *Location) error
	Get(ctx context.Context, locationID string) (*Location, error)
	UpdatePosition(ctx context.Context, locationID string, latitude, longitude float64, accuracy *float64, at time.Time) error
	Close(ctx context.Context, locationID string, at time.Time) error
	Delete(ctx context.Context, locationID string) error
	List(ctx context.Context, employeeID string, limit, offset int) ([]Location, error)
}

// Directory resolves employee ownership for the authorization guard.
type Directory interface {
	EmployeeIDByUser(ctx context.Context, userID string) (string, error)
	OwnerUserID(ctx context.Context, employeeID string) (string, error)
}

type Service struct {
	store     StoreAPI
	directory Directory
	now       func() time.Time
}

func NewService(store StoreAPI, directory Directory) *Service {
	return &Service{store: store, directory: directory, now: time.Now}
}

type CheckInParams struct {
	Latitude  float64
	Longitude float64
	Address   string
	Device    string
	Accuracy  *float64
	ClientIP  string
}

type PositionParams struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
}

func validateCoordinates(latitude, longitude float64, accuracy *float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) || latitude < -90 || latitude > 90 {
		return ErrInvalidCoordinates
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) || longitude < -180 || longitude > 180 {
		return ErrInvalidCoordinates
	}
	if accuracy != nil && (math.IsNaN(*accuracy) || math.IsInf(*accuracy, 0) || *accuracy < 0) {
		return ErrInvalidCoordinates
	}
	return nil
}

// CheckIn opens a session for the caller's own employee profile. Admins are
// barred; the employee is always resolved from the authenticated caller, never
// from the payload. The open-session pre-check is advisory, the partial unique
// index in storage closes the race.
func (s *Service) CheckIn(ctx context.Context, caller authz.Caller, params CheckInParams) (*Location, error) {
	if err := authz.RequireRole(caller, authz.RoleEmployee); err != nil {
		return nil, err
	}
	if err := validateCoordinates(params.Latitude, params.Longitude, params.Accuracy); err != nil {
		return nil, err
	}

	employeeID, err := s.directory.EmployeeIDByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.OpenSession(ctx, employeeID); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	address := params.Address
	if address == "" {
		address = fmt.Sprintf("%.6f, %.6f", params.Latitude, params.Longitude)
	}

	now := s.now()
	loc := &Location{
		EmployeeID:  employeeID,
		Latitude:    params.Latitude,
		Longitude:   params.Longitude,
		Address:     address,
		Device:      params.Device,
		ClientIP:    params.ClientIP,
		Accuracy:    params.Accuracy,
		CheckInTime: now,
		Status:      StatusCheckedIn,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// LiveUpdate overwrites the position of an open session owned by the caller.
// Closed sessions are immutable.
func (s *Service) LiveUpdate(ctx context.Context, caller authz.Caller, locationID string, params PositionParams) (*Location, error) {
	if err := validateCoordinates(params.Latitude, params.Longitude, params.Accuracy); err != nil {
		return nil, err
	}

	loc, err := s.authorized(ctx, caller, locationID)
	if err != nil {
		return nil, err
	}
	if loc.Status != StatusCheckedIn {
		return nil, ErrSessionClosed
	}

	now := s.now()
	if err := s.store.UpdatePosition(ctx, locationID, params.Latitude, params.Longitude, params.Accuracy, now); err != nil {
		return nil, err
	}
	loc.Latitude = params.Latitude
	loc.Longitude = params.Longitude
	loc.Accuracy = params.Accuracy
	loc.UpdatedAt = now
	return loc, nil
}

// CheckOut closes an open session. Checking out a session that is not
// checked-in is rejected rather than re-stamping the check-out time.
func (s *Service) CheckOut(ctx context.Context, caller authz.Caller, locationID string) (*Location, error) {
	loc, err := s.authorized(ctx, caller, locationID)
	if err != nil {
		return nil, err
	}
	if loc.Status != StatusCheckedIn {
		return nil, ErrSessionClosed
	}

	now := s.now()
	if err := s.store.Close(ctx, locationID, now); err != nil {
		return nil, err
	}
	loc.Status = StatusCheckedOut
	loc.CheckOutTime = &now
	loc.UpdatedAt = now
	return loc, nil
}

// Delete removes attendance history, admin only.
func (s *Service) Delete(ctx context.Context, caller authz.Caller, locationID string) error {
	if err := authz.RequireRole(caller, authz.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, locationID); err != nil {
		return err
	}
	return s.store.Delete(ctx, locationID)
}

func (s *Service) Get(ctx context.Context, caller authz.Caller, locationID string) (*Location, error) {
	return s.authorized(ctx, caller, locationID)
}

// Current returns the caller's open session; admins name the employee.
func (s *Service) Current(ctx context.Context, caller authz.Caller, employeeID string) (*Location, error) {
	resolved, err := s.scopeEmployee(ctx, caller, employeeID)
	if err != nil {
		return nil, err
	}
	if resolved == "" {
		return nil, ErrNotFound
	}
	return s.store.OpenSession(ctx, resolved)
}

// List returns attendance history. Admins see all rows, optionally filtered
// by employee; employees only ever see their own.
func (s *Service) List(ctx context.Context, caller authz.Caller, employeeID string, limit, offset int) ([]Location, error) {
	resolved, err := s.scopeEmployee(ctx, caller, employeeID)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, resolved, limit, offset)
}

func (s *Service) authorized(ctx context.Context, caller authz.Caller, locationID string) (*Location, error) {
	loc, err := s.store.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	owner, err := s.directory.OwnerUserID(ctx, loc.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, owner); err != nil {
		return nil, err
	}
	return loc, nil
}

// scopeEmployee applies row-level filtering: admins keep the requested
// filter, employees are pinned to their own profile.
func (s *Service) scopeEmployee(ctx context.Context, caller authz.Caller, requested string) (string, error) {
	if caller.IsAdmin() {
		return requested, nil
	}
	return s.directory.EmployeeIDByUser(ctx, caller.UserID)
}
