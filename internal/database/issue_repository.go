package database

import (
	"context"
	"fmt"
	"time"

	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueDocument represents the MongoDB document structure for issues
type IssueDocument struct {
	ID          string                `bson:"_id"`
	ResidentID  string                `bson:"residentId,omitempty"`
	Category    string                `bson:"category"`
	Priority    string                `bson:"priority"`
	Description string                `bson:"description"`
	Location    string                `bson:"location"`
	Status      string                `bson:"status"`
	Source      string                `bson:"source"`
	CallMeta    *models.CallMetadata  `bson:"callMeta,omitempty"`
	CreatedAt   time.Time             `bson:"createdAt"`
	UpdatedAt   time.Time             `bson:"updatedAt"`
}

func issueFromDocument(doc *IssueDocument) *models.Issue {
	id, _ := uuid.Parse(doc.ID)
	issue := &models.Issue{
		ID:          id,
		Category:    doc.Category,
		Priority:    models.Priority(doc.Priority),
		Description: doc.Description,
		Location:    doc.Location,
		Status:      models.IssueStatus(doc.Status),
		Source:      doc.Source,
		CallMeta:    doc.CallMeta,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.ResidentID != "" {
		residentID, err := uuid.Parse(doc.ResidentID)
		if err == nil {
			issue.ResidentID = &residentID
		}
	}
	return issue
}

// SaveIssue upserts an issue record.
func (m *MongoDB) SaveIssue(ctx context.Context, issue *models.Issue) error {
	doc := IssueDocument{
		ID:          issue.ID.String(),
		Category:    issue.Category,
		Priority:    string(issue.Priority),
		Description: issue.Description,
		Location:    issue.Location,
		Status:      string(issue.Status),
		Source:      issue.Source,
		CallMeta:    issue.CallMeta,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
	if issue.ResidentID != nil {
		doc.ResidentID = issue.ResidentID.String()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := m.Issues.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save issue: %v", err)
	}
	return nil
}

func (m *MongoDB) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	var doc IssueDocument
	err := m.Issues.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrIssueNotFound, "Issue not found: "+id.String(), err)
	}
	return issueFromDocument(&doc), nil
}

// GetIssues lists issues newest first, optionally filtered by resident.
func (m *MongoDB) GetIssues(ctx context.Context, residentID *uuid.UUID) ([]*models.Issue, error) {
	filter := bson.M{}
	if residentID != nil {
		filter["residentId"] = residentID.String()
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.Issues.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %v", err)
	}
	defer cursor.Close(ctx)

	var issues []*models.Issue
	for cursor.Next(ctx) {
		var doc IssueDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode issue: %v", err)
		}
		issues = append(issues, issueFromDocument(&doc))
	}
	return issues, nil
}

// UpdateIssueStatus sets a new status and refreshes the updated timestamp.
func (m *MongoDB) UpdateIssueStatus(ctx context.Context, id uuid.UUID, status models.IssueStatus, updatedAt time.Time) error {
	result, err := m.Issues.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": updatedAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to update issue status: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrIssueNotFound, "Issue not found: "+id.String(), nil)
	}
	return nil
}
