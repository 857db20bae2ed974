package database

import (
	"context"
	"fmt"
	"time"

	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB document structure for users
type UserDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email,omitempty"`
	HashedPassword string    `bson:"passwordHash,omitempty"`
	Role           string    `bson:"role"`
	Status         string    `bson:"status"`
	Phone          string    `bson:"phone,omitempty"`
	Unit           string    `bson:"unit,omitempty"`
	CallOriginated bool      `bson:"callOriginated"`
	CreatedAt      time.Time `bson:"createdAt"`
	LastActive     time.Time `bson:"lastActive"`
}

func userFromDocument(doc *UserDocument) *models.User {
	id, _ := uuid.Parse(doc.ID)
	return &models.User{
		ID:             id,
		Name:           doc.Name,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Role:           models.Role(doc.Role),
		Status:         models.UserStatus(doc.Status),
		Phone:          doc.Phone,
		Unit:           doc.Unit,
		CallOriginated: doc.CallOriginated,
		CreatedAt:      doc.CreatedAt,
		LastActive:     doc.LastActive,
	}
}

// SaveUser upserts a user record
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Role:           string(user.Role),
		Status:         string(user.Status),
		Phone:          user.Phone,
		Unit:           user.Unit,
		CallOriginated: user.CallOriginated,
		CreatedAt:      user.CreatedAt,
		LastActive:     user.LastActive,
	}

	opts := options.Replace().SetUpsert(true)
	_, err := m.Users.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save user: %v", err)
	}
	return nil
}

func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return userFromDocument(&doc), nil
}

func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %v", err)
	}
	return userFromDocument(&doc), nil
}

func (m *MongoDB) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"phone": phone}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(phone)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by phone: %v", err)
	}
	return userFromDocument(&doc), nil
}

// GetAllUsers returns every user record, regardless of status.
func (m *MongoDB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, userFromDocument(&doc))
	}
	return users, nil
}

// UpdateUserStatus sets the account standing for a user.
func (m *MongoDB) UpdateUserStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	result, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(id.String())
	}
	return nil
}
