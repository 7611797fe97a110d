package events

import (
	"time"

	"github.com/google/uuid"
)

// Every approval-workflow transition publishes one of these event types.
const (
	EventTypeDisposalInitiated   = "asset.disposal.initiated"
	EventTypeDisposalSubmitted   = "asset.disposal.submitted"
	EventTypeDisposalRecommended = "asset.disposal.recommended"
	EventTypeDisposalApproved    = "asset.disposal.approved"
	EventTypeDisposalRejected    = "asset.disposal.rejected"
	EventTypeDisposalRemoved     = "asset.disposal.removed"

	EventTypeTransferInitiated = "asset.transfer.initiated"
	EventTypeTransferApproved  = "asset.transfer.approved"
	EventTypeTransferRejected  = "asset.transfer.rejected"

	EventTypeGatePassCreated = "asset.gatepass.created"

	EventTypeAssetCreated = "asset.created"
	EventTypeAssetUpdated = "asset.updated"

	EventTypeBillCreated       = "bill.created"
	EventTypeBillApproved      = "bill.approved"
	EventTypeBillRejected      = "bill.rejected"
	EventTypeBillPaid          = "bill.paid"
	EventTypeBillStatusUpdated = "bill.status_updated"
)

// WorkflowEventTypes lists every transition event, for subscribers that
// mirror all of them (notification emitter, audit trail, metrics).
var WorkflowEventTypes = []string{
	EventTypeDisposalInitiated,
	EventTypeDisposalSubmitted,
	EventTypeDisposalRecommended,
	EventTypeDisposalApproved,
	EventTypeDisposalRejected,
	EventTypeDisposalRemoved,
	EventTypeTransferInitiated,
	EventTypeTransferApproved,
	EventTypeTransferRejected,
	EventTypeGatePassCreated,
	EventTypeBillCreated,
	EventTypeBillApproved,
	EventTypeBillRejected,
	EventTypeBillPaid,
	EventTypeBillStatusUpdated,
}

// AssetWriteEventTypes lists every event that changes an asset row. The
// dashboard aggregator invalidates its cache on any of them.
var AssetWriteEventTypes = []string{
	EventTypeAssetCreated,
	EventTypeAssetUpdated,
	EventTypeDisposalInitiated,
	EventTypeDisposalSubmitted,
	EventTypeDisposalRecommended,
	EventTypeDisposalApproved,
	EventTypeDisposalRejected,
	EventTypeDisposalRemoved,
	EventTypeTransferInitiated,
	EventTypeTransferApproved,
	EventTypeTransferRejected,
	EventTypeGatePassCreated,
}

// WorkflowEvent describes a single state transition of an asset or bill.
// Target fields say who should be notified; any combination may be set.
type WorkflowEvent struct {
	BaseEvent
	Entity         string `json:"entity"` // "asset" or "bill"
	EntityID       int64  `json:"entity_id"`
	Action         string `json:"action"`
	Actor          string `json:"actor"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	TargetRole     string `json:"target_role,omitempty"`
	TargetBranch   string `json:"target_branch,omitempty"`
	TargetUsername string `json:"target_username,omitempty"`
}

type WorkflowTarget struct {
	Role     string
	Branch   string
	Username string
}

func NewWorkflowEvent(eventType, entity string, entityID int64, actor, title, message string, target WorkflowTarget) *WorkflowEvent {
	return &WorkflowEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity":    entity,
				"entity_id": entityID,
				"actor":     actor,
				"message":   message,
			},
		},
		Entity:         entity,
		EntityID:       entityID,
		Action:         eventType,
		Actor:          actor,
		Title:          title,
		Message:        message,
		TargetRole:     target.Role,
		TargetBranch:   target.Branch,
		TargetUsername: target.Username,
	}
}
