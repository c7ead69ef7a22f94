package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adanyl0v/go-tasks/internal/models"
)

type attachmentDocument struct {
	Name string `bson:"name"`
	URL  string `bson:"url"`
}

type taskDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	OwnerID     string               `bson:"owner_id"`
	Title       string               `bson:"title"`
	Description string               `bson:"description,omitempty"`
	Status      string               `bson:"status"`
	DueDate     *time.Time           `bson:"due_date,omitempty"`
	SharedWith  []string             `bson:"shared_with"`
	Attachments []attachmentDocument `bson:"attachments,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newTaskDocument(task *models.Task) taskDocument {
	doc := taskDocument{
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		DueDate:     task.DueDate,
		SharedWith:  task.SharedWith,
		Attachments: newAttachmentDocuments(task.Attachments),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if doc.SharedWith == nil {
		doc.SharedWith = []string{}
	}
	return doc
}

func newAttachmentDocuments(attachments []models.Attachment) []attachmentDocument {
	if len(attachments) == 0 {
		return nil
	}
	docs := make([]attachmentDocument, len(attachments))
	for i, a := range attachments {
		docs[i] = attachmentDocument{Name: a.Name, URL: a.URL}
	}
	return docs
}

func (d *taskDocument) toModel() *models.Task {
	task := &models.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		// Documents are only written through this package, so the
		// status is one of the known values.
		Status:     models.TaskStatus(d.Status),
		DueDate:    d.DueDate,
		SharedWith: d.SharedWith,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
	if task.SharedWith == nil {
		task.SharedWith = []string{}
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		task.DueDate = &due
	}
	for _, a := range d.Attachments {
		task.Attachments = append(task.Attachments, models.Attachment{Name: a.Name, URL: a.URL})
	}
	return task
}
