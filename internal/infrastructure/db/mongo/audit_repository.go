package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deliverly/marketplace-api/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository appends security events to a capped-style audit
// collection. Events are never updated or deleted by the application.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) Insert(ctx context.Context, event ports.SecurityEvent) error {
	doc := bson.M{
		"subject":     event.Subject,
		"action":      event.Action,
		"outcome":     event.Outcome,
		"occurred_at": event.OccurredAt.Unix(),
	}
	if event.Method != "" {
		doc["method"] = event.Method
		doc["path"] = event.Path
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
