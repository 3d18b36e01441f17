package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"workforce/internal/authz"
	"workforce/internal/employees"
)

type fakeStore struct {
	locations map[string]*Location
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{locations: make(map[string]*Location)}
}

func (f *fakeStore) OpenSession(ctx context.Context, employeeID string) (*Location, error) {
	for _, loc := range f.locations {
		if loc.EmployeeID == employeeID && loc.Status == StatusCheckedIn {
			copied := *loc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, loc *Location) error {
	for _, existing := range f.locations {
		if existing.EmployeeID == loc.EmployeeID && existing.Status == StatusCheckedIn {
			return ErrAlreadyCheckedIn
		}
	}
	f.nextID++
	loc.ID = fmt.Sprintf("loc-%d", f.nextID)
	copied := *loc
	f.locations[loc.ID] = &copied
	return nil
}

func (f *fakeStore) Get(ctx context.Context, locationID string) (*Location, error) {
	loc, ok := f.locations[locationID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *loc
	return &copied, nil
}

func (f *fakeStore) UpdatePosition(ctx context.Context, locationID string, latitude, longitude float64, accuracy *float64, at time.Time) error {
	loc, ok := f.locations[locationID]
	if !ok {
		return ErrNotFound
	}
	if loc.Status != StatusCheckedIn {
		return ErrSessionClosed
	}
	loc.Latitude = latitude
	loc.Longitude = longitude
	loc.Accuracy = accuracy
	loc.UpdatedAt = at
	return nil
}

func (f *fakeStore) Close(ctx context.Context, locationID string, at time.Time) error {
	loc, ok := f.locations[locationID]
	if !ok {
		return ErrNotFound
	}
	if loc.Status != StatusCheckedIn {
		return ErrSessionClosed
	}
	loc.Status = StatusCheckedOut
	loc.CheckOutTime = &at
	loc.UpdatedAt = at
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, locationID string) error {
	if _, ok := f.locations[locationID]; !ok {
		return ErrNotFound
	}
	delete(f.locations, locationID)
	return nil
}

func (f *fakeStore) List(ctx context.Context, employeeID string, limit, offset int) ([]Location, error) {
	var out []Location
	for _, loc := range f.locations {
		if employeeID == "" || loc.EmployeeID == employeeID {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (f *fakeStore) openCount(employeeID string) int {
	count := 0
	for _, loc := range f.locations {
		if loc.EmployeeID == employeeID && loc.Status == StatusCheckedIn {
			count++
		}
	}
	return count
}

type fakeDirectory struct {
	// userID -> employeeID
	profiles map[string]string
}

func (f *fakeDirectory) EmployeeIDByUser(ctx context.Context, userID string) (string, error) {
	id, ok := f.profiles[userID]
	if !ok {
		return "", employees.ErrNotFound
	}
	return id, nil
}

func (f *fakeDirectory) OwnerUserID(ctx context.Context, employeeID string) (string, error) {
	for userID, empID := range f.profiles {
		if empID == employeeID {
			return userID, nil
		}
	}
	return "", employees.ErrNotFound
}

var (
	alice      = authz.Caller{UserID: "user-alice", Role: authz.RoleEmployee}
	bob        = authz.Caller{UserID: "user-bob", Role: authz.RoleEmployee}
	adminUser  = authz.Caller{UserID: "user-admin", Role: authz.RoleAdmin}
	checkInPos = CheckInParams{Latitude: 12.97, Longitude: 77.59, Device: "android", ClientIP: "10.0.0.1"}
)

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	dir := &fakeDirectory{profiles: map[string]string{
		"user-alice": "emp-alice",
		"user-bob":   "emp-bob",
	}}
	return NewService(store, dir), store
}

func TestCheckInCreatesOpenSession(t *testing.T) {
	svc, store := newTestService()

	loc, err := svc.CheckIn(context.Background(), alice, checkInPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Status != StatusCheckedIn {
		t.Fatalf("expected checked-in, got %q", loc.Status)
	}
	if loc.EmployeeID != "emp-alice" {
		t.Fatalf("expected employee resolved from caller, got %q", loc.EmployeeID)
	}
	if loc.Address == "" {
		t.Fatal("expected address defaulted to coordinate string")
	}
	if store.openCount("emp-alice") != 1 {
		t.Fatalf("expected exactly one open session, got %d", store.openCount("emp-alice"))
	}
}

func TestCheckInRejectsSecondOpenSession(t *testing.T) {
	svc, store := newTestService()

	if _, err := svc.CheckIn(context.Background(), alice, checkInPos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.CheckIn(context.Background(), alice, checkInPos)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if store.openCount("emp-alice") != 1 {
		t.Fatalf("expected the invariant to hold at one open session, got %d", store.openCount("emp-alice"))
	}
}

func TestCheckInAdminBarred(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CheckIn(context.Background(), adminUser, checkInPos)
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin check-in, got %v", err)
	}
}

func TestCheckInWithoutProfile(t *testing.T) {
	svc, _ := newTestService()

	nobody := authz.Caller{UserID: "user-ghost", Role: authz.RoleEmployee}
	_, err := svc.CheckIn(context.Background(), nobody, checkInPos)
	if !errors.Is(err, employees.ErrNotFound) {
		t.Fatalf("expected employees.ErrNotFound, got %v", err)
	}
}

func TestCheckInInvalidCoordinates(t *testing.T) {
	svc, _ := newTestService()

	tests := []CheckInParams{
		{Latitude: 91, Longitude: 0},
		{Latitude: 0, Longitude: 181},
		{Latitude: -92, Longitude: 77},
	}
	for _, params := range tests {
		if _, err := svc.CheckIn(context.Background(), alice, params); !errors.Is(err, ErrInvalidCoordinates) {
			t.Fatalf("expected ErrInvalidCoordinates for %+v, got %v", params, err)
		}
	}

	negAccuracy := -1.0
	params := checkInPos
	params.Accuracy = &negAccuracy
	if _, err := svc.CheckIn(context.Background(), alice, params); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates for negative accuracy, got %v", err)
	}
}

func TestRoundTripCheckInCheckOut(t *testing.T) {
	svc, _ := newTestService()

	loc, err := svc.CheckIn(context.Background(), alice, checkInPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	closed, err := svc.CheckOut(context.Background(), alice, loc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.Status != StatusCheckedOut {
		t.Fatalf("expected checked-out, got %q", closed.Status)
	}
	if closed.CheckOutTime == nil || closed.CheckOutTime.Before(closed.CheckInTime) {
		t.Fatalf("expected checkInTime <= checkOutTime, got in=%v out=%v", closed.CheckInTime, closed.CheckOutTime)
	}

	// A closed session is immutable.
	_, err = svc.LiveUpdate(context.Background(), alice, loc.ID, PositionParams{Latitude: 13, Longitude: 77})
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}

	// Re-checkout is rejected, never re-stamped.
	_, err = svc.CheckOut(context.Background(), alice, loc.ID)
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed on re-checkout, got %v", err)
	}
}

func TestLiveUpdateKeepsLastPosition(t *testing.T) {
	svc, store := newTestService()

	loc, err := svc.CheckIn(context.Background(), alice, CheckInParams{Latitude: 12.97, Longitude: 77.59})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.LiveUpdate(context.Background(), alice, loc.ID, PositionParams{Latitude: 12.975, Longitude: 77.595}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.LiveUpdate(context.Background(), alice, loc.ID, PositionParams{Latitude: 12.98, Longitude: 77.60}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	closed, err := svc.CheckOut(context.Background(), alice, loc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.Latitude != 12.98 || closed.Longitude != 77.60 {
		t.Fatalf("expected final row to keep last live-update position, got (%v, %v)", closed.Latitude, closed.Longitude)
	}

	stored, _ := store.Get(context.Background(), loc.ID)
	if stored.Latitude != 12.98 || stored.Longitude != 77.60 {
		t.Fatalf("expected stored row to keep last position, got (%v, %v)", stored.Latitude, stored.Longitude)
	}
}

func TestOwnershipBoundary(t *testing.T) {
	svc, _ := newTestService()

	loc, err := svc.CheckIn(context.Background(), bob, checkInPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Get(context.Background(), alice, loc.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden reading another employee's session, got %v", err)
	}
	if _, err := svc.LiveUpdate(context.Background(), alice, loc.ID, PositionParams{Latitude: 1, Longitude: 1}); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden updating another employee's session, got %v", err)
	}
	if _, err := svc.CheckOut(context.Background(), alice, loc.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden checking out another employee's session, got %v", err)
	}

	// Admin performing the same read succeeds.
	if _, err := svc.Get(context.Background(), adminUser, loc.ID); err != nil {
		t.Fatalf("unexpected error for admin read: %v", err)
	}
	if _, err := svc.CheckOut(context.Background(), adminUser, loc.ID); err != nil {
		t.Fatalf("unexpected error for admin check-out: %v", err)
	}
}

func TestDeleteAdminOnly(t *testing.T) {
	svc, store := newTestService()

	loc, err := svc.CheckIn(context.Background(), alice, checkInPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), alice, loc.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for employee delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminUser, loc.ID); err != nil {
		t.Fatalf("unexpected error for admin delete: %v", err)
	}
	if _, err := store.Get(context.Background(), loc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected row deleted")
	}
	if err := svc.Delete(context.Background(), adminUser, loc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListScoping(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.CheckIn(context.Background(), alice, checkInPos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CheckIn(context.Background(), bob, checkInPos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mine, err := svc.List(context.Background(), alice, "", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].EmployeeID != "emp-alice" {
		t.Fatalf("expected employee to see only own rows, got %+v", mine)
	}

	// An employee asking for another employee's rows is still pinned to
	// their own.
	pinned, err := svc.List(context.Background(), alice, "emp-bob", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pinned) != 1 || pinned[0].EmployeeID != "emp-alice" {
		t.Fatalf("expected row-level filtering to pin employee scope, got %+v", pinned)
	}

	all, err := svc.List(context.Background(), adminUser, "", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected admin to see all rows, got %d", len(all))
	}
}

func TestCurrentSession(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Current(context.Background(), alice, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no open session, got %v", err)
	}

	loc, err := svc.CheckIn(context.Background(), alice, checkInPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current, err := svc.Current(context.Background(), alice, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.ID != loc.ID {
		t.Fatalf("expected current session %q, got %q", loc.ID, current.ID)
	}

	// Admin must name the employee.
	if _, err := svc.Current(context.Background(), adminUser, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for admin without employee filter, got %v", err)
	}
	byAdmin, err := svc.Current(context.Background(), adminUser, "emp-alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byAdmin.ID != loc.ID {
		t.Fatalf("expected admin to see employee's open session, got %q", byAdmin.ID)
	}
}
