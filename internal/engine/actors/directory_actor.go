package actors

import (
	"fmt"
	"log"
	"time"

	stdctx "context"

	"commons-hub/internal/database"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GetCountsMsg asks an actor for the size of its primary collection.
type GetCountsMsg struct{}

// RecipientSelector picks the target set for a notification fan-out. The
// zero value selects nothing; use the Select* constructors.
type RecipientSelector struct {
	All  bool        `json:"all"`
	Role models.Role `json:"role,omitempty"`
}

func SelectAll() RecipientSelector { return RecipientSelector{All: true} }

func SelectRole(r models.Role) RecipientSelector { return RecipientSelector{Role: r} }

func SelectResidents() RecipientSelector { return RecipientSelector{Role: models.RoleResident} }

// SelectorForAudience maps an announcement audience to a recipient selector.
func SelectorForAudience(audience models.Audience) RecipientSelector {
	switch audience {
	case models.AudienceResidents:
		return SelectResidents()
	case models.AudienceAdmins:
		return SelectRole(models.RoleAdmin)
	default:
		return SelectAll()
	}
}

// Message types for DirectoryActor
type (
	RegisterUserMsg struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
		Phone    string      `json:"phone,omitempty"`
		Unit     string      `json:"unit,omitempty"`
	}

	VerifyCredentialsMsg struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	GetUserMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	// ResolveByPhoneMsg finds the resident owning a phone number, creating a
	// call-originated account if none exists. Because one actor owns the
	// phone index, retried webhook deliveries for the same number always
	// land on the same record.
	ResolveByPhoneMsg struct {
		Phone string `json:"phone"`
	}

	ListRecipientsMsg struct {
		Selector RecipientSelector `json:"selector"`
	}

	UpdateUserStatusMsg struct {
		UserID uuid.UUID         `json:"userId"`
		Status models.UserStatus `json:"status"`
	}
)

// DirectoryActor owns the user directory: accounts, the email index used for
// login and the phone index used by webhook ingestion.
type DirectoryActor struct {
	users   map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
	byPhone map[string]uuid.UUID
	db      *database.MongoDB
	metrics *utils.MetricsCollector
}

func NewDirectoryActor(db *database.MongoDB, metrics *utils.MetricsCollector) actor.Actor {
	return &DirectoryActor{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
		byPhone: make(map[string]uuid.UUID),
		db:      db,
		metrics: metrics,
	}
}

func (a *DirectoryActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		a.handleRegister(context, msg)
	case *VerifyCredentialsMsg:
		a.handleVerifyCredentials(context, msg)
	case *GetUserMsg:
		a.handleGetUser(context, msg)
	case *ResolveByPhoneMsg:
		a.handleResolveByPhone(context, msg)
	case *ListRecipientsMsg:
		a.handleListRecipients(context, msg)
	case *UpdateUserStatusMsg:
		a.handleUpdateStatus(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.users))
	}
}

func (a *DirectoryActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()

	if msg.Name == "" || msg.Email == "" || msg.Password == "" {
		context.Respond(utils.NewValidationError("name, email and password are required"))
		return
	}
	role := msg.Role
	if role == "" {
		role = models.RoleResident
	}

	if _, exists := a.byEmail[msg.Email]; exists {
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}
	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		existing, _ := a.db.GetUserByEmail(ctx, msg.Email)
		cancel()
		if existing != nil {
			a.cache(existing)
			context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
			return
		}
	}
	if msg.Phone != "" {
		if _, exists := a.byPhone[msg.Phone]; exists {
			context.Respond(utils.NewAppError(utils.ErrDuplicate, "Phone number already registered", nil))
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
		return
	}

	user := &models.User{
		ID:             uuid.New(),
		Name:           msg.Name,
		Email:          msg.Email,
		HashedPassword: string(hashed),
		Role:           role,
		Status:         models.StatusActive,
		Phone:          msg.Phone,
		Unit:           msg.Unit,
		CreatedAt:      time.Now(),
		LastActive:     time.Now(),
	}

	a.cache(user)
	a.persistUser(user)

	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	log.Printf("Registered %s user %s (%s)", user.Role, user.ID, user.Email)
	context.Respond(user)
}

func (a *DirectoryActor) handleVerifyCredentials(context actor.Context, msg *VerifyCredentialsMsg) {
	user := a.lookupByEmail(msg.Email)
	if user == nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Invalid credentials", nil))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Invalid credentials", nil))
		return
	}

	user.LastActive = time.Now()
	a.persistUser(user)
	context.Respond(user)
}

func (a *DirectoryActor) handleGetUser(context actor.Context, msg *GetUserMsg) {
	if user, exists := a.users[msg.UserID]; exists {
		context.Respond(user)
		return
	}
	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		user, err := a.db.GetUser(ctx, msg.UserID)
		cancel()
		if err == nil {
			a.cache(user)
			context.Respond(user)
			return
		}
	}
	context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
}

func (a *DirectoryActor) handleResolveByPhone(context actor.Context, msg *ResolveByPhoneMsg) {
	startTime := time.Now()

	if msg.Phone == "" {
		context.Respond(utils.NewValidationError("phone number is required"))
		return
	}

	if id, exists := a.byPhone[msg.Phone]; exists {
		context.Respond(a.users[id])
		return
	}
	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		user, err := a.db.GetUserByPhone(ctx, msg.Phone)
		cancel()
		if err == nil {
			a.cache(user)
			context.Respond(user)
			return
		}
	}

	last := msg.Phone
	if len(last) > 4 {
		last = last[len(last)-4:]
	}
	user := &models.User{
		ID:             uuid.New(),
		Name:           fmt.Sprintf("Resident (ends %s)", last),
		Role:           models.RoleResident,
		Status:         models.StatusActive,
		Phone:          msg.Phone,
		CallOriginated: true,
		CreatedAt:      time.Now(),
		LastActive:     time.Now(),
	}

	a.cache(user)
	a.persistUser(user)

	a.metrics.AddOperationLatency("resolve_by_phone", time.Since(startTime))
	log.Printf("Created call-originated resident %s for phone ending %s", user.ID, last)
	context.Respond(user)
}

func (a *DirectoryActor) handleListRecipients(context actor.Context, msg *ListRecipientsMsg) {
	var recipients []uuid.UUID
	for id, user := range a.users {
		if user.Status != models.StatusActive {
			continue
		}
		if msg.Selector.All || (msg.Selector.Role != "" && user.Role == msg.Selector.Role) {
			recipients = append(recipients, id)
		}
	}
	context.Respond(recipients)
}

func (a *DirectoryActor) handleUpdateStatus(context actor.Context, msg *UpdateUserStatusMsg) {
	user, exists := a.users[msg.UserID]
	if !exists {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	user.Status = msg.Status
	a.persistUser(user)
	context.Respond(user)
}

func (a *DirectoryActor) lookupByEmail(email string) *models.User {
	if id, exists := a.byEmail[email]; exists {
		return a.users[id]
	}
	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		user, err := a.db.GetUserByEmail(ctx, email)
		if err == nil {
			a.cache(user)
			return user
		}
	}
	return nil
}

func (a *DirectoryActor) cache(user *models.User) {
	a.users[user.ID] = user
	if user.Email != "" {
		a.byEmail[user.Email] = user.ID
	}
	if user.Phone != "" {
		a.byPhone[user.Phone] = user.ID
	}
}

func (a *DirectoryActor) persistUser(user *models.User) {
	if a.db == nil {
		return
	}
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.SaveUser(ctx, user); err != nil {
		log.Printf("Failed to persist user %s: %v", user.ID, err)
	}
}
