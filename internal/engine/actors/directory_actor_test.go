package actors

import (
	"testing"

	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnDirectoryActor(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewDirectoryActor(nil, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func TestRegisterAndVerifyCredentials(t *testing.T) {
	system, pid := spawnDirectoryActor(t)

	result := request(t, system, pid, &RegisterUserMsg{
		Name:     "Ada Resident",
		Email:    "ada@example.com",
		Password: "password123",
		Unit:     "4B",
	})
	user, ok := result.(*models.User)
	require.True(t, ok, "expected user, got %v", result)
	assert.Equal(t, models.RoleResident, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.NotEqual(t, "password123", user.HashedPassword)

	verified := request(t, system, pid, &VerifyCredentialsMsg{
		Email:    "ada@example.com",
		Password: "password123",
	})
	verifiedUser, ok := verified.(*models.User)
	require.True(t, ok)
	assert.Equal(t, user.ID, verifiedUser.ID)

	bad := request(t, system, pid, &VerifyCredentialsMsg{
		Email:    "ada@example.com",
		Password: "wrongpassword",
	})
	appErr, ok := bad.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidCredentials, appErr.Code)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	system, pid := spawnDirectoryActor(t)

	first := request(t, system, pid, &RegisterUserMsg{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.IsType(t, &models.User{}, first)

	second := request(t, system, pid, &RegisterUserMsg{
		Name:     "Impostor",
		Email:    "ada@example.com",
		Password: "different",
	})
	appErr, ok := second.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUserAlreadyExists, appErr.Code)
}

func TestResolveByPhoneIsIdempotent(t *testing.T) {
	system, pid := spawnDirectoryActor(t)

	first := request(t, system, pid, &ResolveByPhoneMsg{Phone: "+15551234567"})
	resident, ok := first.(*models.User)
	require.True(t, ok, "expected user, got %v", first)
	assert.True(t, resident.CallOriginated)
	assert.Equal(t, models.RoleResident, resident.Role)
	assert.Contains(t, resident.Name, "4567")

	// A retried webhook delivery must land on the same record.
	second := request(t, system, pid, &ResolveByPhoneMsg{Phone: "+15551234567"})
	again, ok := second.(*models.User)
	require.True(t, ok)
	assert.Equal(t, resident.ID, again.ID)

	count := request(t, system, pid, &GetCountsMsg{})
	assert.Equal(t, 1, count)

	// A different number creates a different resident.
	third := request(t, system, pid, &ResolveByPhoneMsg{Phone: "+15559876543"})
	other := third.(*models.User)
	assert.NotEqual(t, resident.ID, other.ID)
}

func TestResolveByPhoneFindsRegisteredUser(t *testing.T) {
	system, pid := spawnDirectoryActor(t)

	registered := request(t, system, pid, &RegisterUserMsg{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
		Phone:    "+15551230000",
	}).(*models.User)

	resolved := request(t, system, pid, &ResolveByPhoneMsg{Phone: "+15551230000"}).(*models.User)
	assert.Equal(t, registered.ID, resolved.ID)
	assert.False(t, resolved.CallOriginated)
}

func TestListRecipientsFiltersByRoleAndStatus(t *testing.T) {
	system, pid := spawnDirectoryActor(t)

	resident1 := request(t, system, pid, &RegisterUserMsg{
		Name: "R1", Email: "r1@example.com", Password: "pw123456",
	}).(*models.User)
	resident2 := request(t, system, pid, &RegisterUserMsg{
		Name: "R2", Email: "r2@example.com", Password: "pw123456",
	}).(*models.User)
	admin := request(t, system, pid, &RegisterUserMsg{
		Name: "Admin", Email: "admin@example.com", Password: "pw123456", Role: models.RoleAdmin,
	}).(*models.User)

	residents := request(t, system, pid, &ListRecipientsMsg{Selector: SelectResidents()}).([]uuid.UUID)
	assert.ElementsMatch(t, []uuid.UUID{resident1.ID, resident2.ID}, residents)

	everyone := request(t, system, pid, &ListRecipientsMsg{Selector: SelectAll()}).([]uuid.UUID)
	assert.Len(t, everyone, 3)

	admins := request(t, system, pid, &ListRecipientsMsg{Selector: SelectRole(models.RoleAdmin)}).([]uuid.UUID)
	assert.Equal(t, []uuid.UUID{admin.ID}, admins)

	// Suspended users drop out of every selector.
	request(t, system, pid, &UpdateUserStatusMsg{UserID: resident2.ID, Status: models.StatusSuspended})
	residents = request(t, system, pid, &ListRecipientsMsg{Selector: SelectResidents()}).([]uuid.UUID)
	assert.Equal(t, []uuid.UUID{resident1.ID}, residents)
}
