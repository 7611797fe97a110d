package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/obs"
	"github.com/frahmantamala/asset-management/internal/scope"
)

type ServiceAPI interface {
	CreateAsset(ctx context.Context, actor *auth.User, dto CreateAssetDTO) (*Asset, error)
	UpdateAsset(ctx context.Context, actor *auth.User, id int64, dto UpdateAssetDTO) (*Asset, error)
	GetAsset(ctx context.Context, id int64) (*Asset, error)
	ListAssets(ctx context.Context, actor *auth.User, q string) ([]*Asset, error)
	ListDisposalCart(ctx context.Context, actor *auth.User) ([]*Asset, error)
	ListTransferredFrom(ctx context.Context, actor *auth.User, branchCode string) ([]*Asset, error)

	InitiateDisposal(ctx context.Context, actor *auth.User, id int64, dto InitiateDisposalDTO) (*Asset, error)
	SubmitForApproval(ctx context.Context, actor *auth.User, id int64) (*Asset, error)
	RecommendDisposal(ctx context.Context, actor *auth.User, id int64) (*Asset, error)
	ApproveDisposal(ctx context.Context, actor *auth.User, id int64) (*Asset, error)
	RejectDisposal(ctx context.Context, actor *auth.User, id int64, dto RejectDTO) (*Asset, error)
	RemoveFromCart(ctx context.Context, actor *auth.User, id int64) (*Asset, error)

	InitiateTransfer(ctx context.Context, actor *auth.User, id int64, dto InitiateTransferDTO) (*Asset, error)
	ApproveTransfer(ctx context.Context, actor *auth.User, id int64) (*Asset, error)
	RejectTransfer(ctx context.Context, actor *auth.User, id int64, dto RejectDTO) (*Asset, error)

	CreateGatePass(ctx context.Context, actor *auth.User, id int64, dto CreateGatePassDTO) (*GatePass, error)
	ListGatePasses(ctx context.Context, actor *auth.User) ([]*GatePass, error)
}

type Service struct {
	repo     RepositoryAPI
	resolver *scope.Resolver
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, resolver *scope.Resolver, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) CreateAsset(ctx context.Context, actor *auth.User, dto CreateAssetDTO) (*Asset, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	a := &Asset{
		Name:               dto.Name,
		TagNumber:          dto.TagNumber,
		Type:               dto.Type,
		BranchCode:         dto.BranchCode,
		BranchName:         dto.BranchName,
		Status:             StatusActive,
		PurchaseDate:       dto.PurchaseDate,
		WarrantyEnd:        dto.WarrantyEnd,
		AmcStart:           dto.AmcStart,
		AmcEnd:             dto.AmcEnd,
		ExpiryDate:         dto.ExpiryDate,
		AmcWarranty:        dto.AmcWarranty,
		DepreciationMethod: dto.DepreciationMethod,
		DepreciationRate:   dto.DepreciationRate,
		ClosingValue:       dto.ClosingValue,
		BranchUser:         dto.BranchUser,
		MappedEmployee:     dto.MappedEmployee,
		Custodian:          dto.Custodian,
		ImageURL:           dto.ImageURL,
		CreatedBy:          actor.Username,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error("create asset failed", "tag_number", dto.TagNumber, "error", err)
		return nil, internal.NewInternalError("failed to create asset", err)
	}

	s.logger.Info("asset created", "asset_id", a.ID, "tag_number", a.TagNumber, "branch_code", a.BranchCode)
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeAssetCreated, "asset", a.ID,
		actor.Username, "Asset Created",
		fmt.Sprintf("Asset %s (%s) registered at %s", a.Name, a.TagNumber, a.BranchCode),
		events.WorkflowTarget{Branch: a.BranchCode}))

	out := *a
	out.ApplyAMCFlag(now)
	return &out, nil
}

func (s *Service) UpdateAsset(ctx context.Context, actor *auth.User, id int64, dto UpdateAssetDTO) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	dto.ApplyTo(a)
	a.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to update asset", err)
	}

	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeAssetUpdated, "asset", a.ID,
		actor.Username, "Asset Updated",
		fmt.Sprintf("Asset %s (%s) updated", a.Name, a.TagNumber),
		events.WorkflowTarget{Branch: a.BranchCode}))

	out := *a
	out.ApplyAMCFlag(time.Now())
	return &out, nil
}

func (s *Service) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ApplyAMCFlag(time.Now())
	return a, nil
}

// ListAssets returns the assets visible to the actor, optionally narrowed by
// a free-text search over name and tag number.
func (s *Service) ListAssets(ctx context.Context, actor *auth.User, q string) ([]*Asset, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}

	assets, err := s.repo.List(ctx, sc, q)
	if err != nil {
		return nil, internal.NewInternalError("failed to list assets", err)
	}

	now := time.Now()
	for _, a := range assets {
		a.ApplyAMCFlag(now)
	}
	return assets, nil
}

// ListDisposalCart lists the assets under disposal review in the actor's
// scope: carted, pending and recommended.
func (s *Service) ListDisposalCart(ctx context.Context, actor *auth.User) ([]*Asset, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}

	assets, err := s.repo.ListByStatus(ctx, sc, []string{StatusInCart, StatusPendingDisposal, StatusRecommended})
	if err != nil {
		return nil, internal.NewInternalError("failed to list disposal cart", err)
	}
	return assets, nil
}

// ListTransferredFrom is the origin branch's transfer history view: assets
// whose breadcrumb says they left the given branch. The requested branch has
// to sit inside the actor's scope.
func (s *Service) ListTransferredFrom(ctx context.Context, actor *auth.User, branchCode string) ([]*Asset, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}
	if !sc.ContainsBranch(branchCode) {
		s.logger.Warn("transfer history denied: branch outside actor scope",
			"branch_code", branchCode, "actor", actor.Username, "role", actor.Role)
		return nil, internal.ErrUnauthorizedAccess
	}

	assets, err := s.repo.ListTransferredFrom(ctx, branchCode)
	if err != nil {
		return nil, internal.NewInternalError("failed to list transferred assets", err)
	}
	return assets, nil
}

// --- disposal sub-flow ---

func (s *Service) InitiateDisposal(ctx context.Context, actor *auth.User, id int64, dto InitiateDisposalDTO) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.WorkflowIdle() {
		obs.RecordRejectedTransition("asset", "disposal_initiate")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("disposal can only start on an Active asset, current status is %q", a.Status))
	}

	now := time.Now()
	a.Status = StatusInCart
	a.Reason = dto.Reason
	a.InitiatedBy = actor.Username
	a.InitiatedAt = &now
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to initiate disposal", err)
	}

	s.logger.Info("disposal initiated", "asset_id", a.ID, "initiated_by", actor.Username)
	obs.RecordTransition("asset", "disposal_initiate")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeDisposalInitiated, "asset", a.ID,
		actor.Username, "Disposal Initiated",
		fmt.Sprintf("Asset %s (%s) added to the disposal cart", a.Name, a.TagNumber),
		events.WorkflowTarget{Branch: a.BranchCode}))
	return a, nil
}

func (s *Service) SubmitForApproval(ctx context.Context, actor *auth.User, id int64) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInCart {
		obs.RecordRejectedTransition("asset", "disposal_submit")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("only carted assets can be submitted, current status is %q", a.Status))
	}

	a.Status = StatusPendingDisposal
	a.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to submit disposal", err)
	}

	obs.RecordTransition("asset", "disposal_submit")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeDisposalSubmitted, "asset", a.ID,
		actor.Username, "Disposal Awaiting Approval",
		fmt.Sprintf("Asset %s (%s) submitted for disposal approval", a.Name, a.TagNumber),
		events.WorkflowTarget{Role: "Admin"}))
	return a, nil
}

func (s *Service) RecommendDisposal(ctx context.Context, actor *auth.User, id int64) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPendingDisposal {
		obs.RecordRejectedTransition("asset", "disposal_recommend")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("only pending disposals can be recommended, current status is %q", a.Status))
	}

	a.Status = StatusRecommended
	a.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to recommend disposal", err)
	}

	obs.RecordTransition("asset", "disposal_recommend")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeDisposalRecommended, "asset", a.ID,
		actor.Username, "Disposal Recommended",
		fmt.Sprintf("Disposal of %s (%s) recommended by %s", a.Name, a.TagNumber, actor.Username),
		events.WorkflowTarget{Username: a.InitiatedBy}))
	return a, nil
}

func (s *Service) ApproveDisposal(ctx context.Context, actor *auth.User, id int64) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.InDisposalReview() {
		obs.RecordRejectedTransition("asset", "disposal_approve")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("disposal approval requires a pending or recommended asset, current status is %q", a.Status))
	}

	now := time.Now()
	a.Status = StatusDisposed
	a.ApprovedBy = actor.Username
	a.ApprovedAt = &now
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to approve disposal", err)
	}

	s.logger.Info("disposal approved", "asset_id", a.ID, "approved_by", actor.Username)
	obs.RecordTransition("asset", "disposal_approve")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeDisposalApproved, "asset", a.ID,
		actor.Username, "Disposal Approved",
		fmt.Sprintf("Asset %s (%s) has been disposed", a.Name, a.TagNumber),
		events.WorkflowTarget{Username: a.InitiatedBy}))
	return a, nil
}

// RejectDisposal returns the asset to the cart for resubmission; it is a
// return-for-review, not a terminal rejection.
func (s *Service) RejectDisposal(ctx context.Context, actor *auth.User, id int64, dto RejectDTO) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.InDisposalReview() {
		obs.RecordRejectedTransition("asset", "disposal_reject")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("disposal rejection requires a pending or recommended asset, current status is %q", a.Status))
	}

	now := time.Now()
	a.Status = StatusInCart
	a.RejectedBy = actor.Username
	a.RejectedAt = &now
	a.RejectionReason = dto.Reason
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to reject disposal", err)
	}

	obs.RecordTransition("asset", "disposal_reject")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeDisposalRejected, "asset", a.ID,
		actor.Username, "Disposal Returned",
		fmt.Sprintf("Disposal of %s (%s) returned to the cart for review", a.Name, a.TagNumber),
		events.WorkflowTarget{Username: a.InitiatedBy}))
	return a, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, actor *auth.User, id int64) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInCart {
		obs.RecordRejectedTransition("asset", "disposal_remove")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("only carted assets can be removed, current status is %q", a.Status))
	}

	a.Status = StatusActive
	a.Reason = ""
	a.InitiatedBy = ""
	a.InitiatedAt = nil
	a.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to remove asset from cart", err)
	}

	obs.RecordTransition("asset", "disposal_remove")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeDisposalRemoved, "asset", a.ID,
		actor.Username, "Disposal Withdrawn",
		fmt.Sprintf("Asset %s (%s) removed from the disposal cart", a.Name, a.TagNumber),
		events.WorkflowTarget{Branch: a.BranchCode}))
	return a, nil
}

// --- transfer sub-flow ---

// InitiateTransfer marks the asset pending approval. The asset stays in its
// current branch scope until approval; the destination must not see it yet.
func (s *Service) InitiateTransfer(ctx context.Context, actor *auth.User, id int64, dto InitiateTransferDTO) (*Asset, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.WorkflowIdle() {
		obs.RecordRejectedTransition("asset", "transfer_initiate")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("transfer can only start on an Active asset, current status is %q", a.Status))
	}
	if dto.ToBranchCode == a.BranchCode {
		return nil, internal.NewValidationError("destination branch is the asset's current branch", internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	a.Status = StatusTransferApprovalPending
	a.ToBranchCode = dto.ToBranchCode
	a.ToLocation = dto.ToBranchName
	a.Reason = dto.Reason
	a.InitiatedBy = actor.Username
	a.InitiatedAt = &now
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to initiate transfer", err)
	}

	s.logger.Info("transfer initiated", "asset_id", a.ID, "to_branch", dto.ToBranchCode, "initiated_by", actor.Username)
	obs.RecordTransition("asset", "transfer_initiate")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeTransferInitiated, "asset", a.ID,
		actor.Username, "Transfer Awaiting Approval",
		fmt.Sprintf("Transfer of %s (%s) to %s awaiting approval", a.Name, a.TagNumber, dto.ToBranchCode),
		events.WorkflowTarget{Role: "Admin"}))
	return a, nil
}

// ApproveTransfer mutates the single asset row in place: branch fields become
// the destination and from_branch* keep the origin. The row's identity (id,
// tag number) is preserved across the move.
func (s *Service) ApproveTransfer(ctx context.Context, actor *auth.User, id int64) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusTransferApprovalPending {
		obs.RecordRejectedTransition("asset", "transfer_approve")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("transfer approval requires a pending transfer, current status is %q", a.Status))
	}

	now := time.Now()
	origin := a.BranchCode
	a.FromBranch = a.BranchName
	a.FromBranchCode = a.BranchCode
	a.BranchCode = a.ToBranchCode
	a.BranchName = a.ToLocation
	a.Status = StatusActive
	a.TransferStatus = TransferStatusTransferred
	a.ApprovedBy = actor.Username
	a.ApprovedAt = &now
	a.ToBranchCode = ""
	a.ToLocation = ""
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to approve transfer", err)
	}

	s.logger.Info("transfer approved",
		"asset_id", a.ID, "from_branch", origin, "to_branch", a.BranchCode, "approved_by", actor.Username)
	obs.RecordTransition("asset", "transfer_approve")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeTransferApproved, "asset", a.ID,
		actor.Username, "Transfer Approved",
		fmt.Sprintf("Asset %s (%s) moved from %s to %s", a.Name, a.TagNumber, origin, a.BranchCode),
		events.WorkflowTarget{Username: a.InitiatedBy, Branch: a.BranchCode}))
	return a, nil
}

func (s *Service) RejectTransfer(ctx context.Context, actor *auth.User, id int64, dto RejectDTO) (*Asset, error) {
	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusTransferApprovalPending {
		obs.RecordRejectedTransition("asset", "transfer_reject")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("transfer rejection requires a pending transfer, current status is %q", a.Status))
	}

	now := time.Now()
	a.Status = StatusActive
	a.RejectedBy = actor.Username
	a.RejectedAt = &now
	a.RejectionReason = dto.Reason
	a.ToBranchCode = ""
	a.ToLocation = ""
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to reject transfer", err)
	}

	obs.RecordTransition("asset", "transfer_reject")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeTransferRejected, "asset", a.ID,
		actor.Username, "Transfer Rejected",
		fmt.Sprintf("Transfer of %s (%s) rejected: %s", a.Name, a.TagNumber, dto.Reason),
		events.WorkflowTarget{Username: a.InitiatedBy}))
	return a, nil
}

// --- gate pass ---

// CreateGatePass records a temporary movement. Ownership does not change and
// there is no automatic return transition; the asset is manually reactivated.
func (s *Service) CreateGatePass(ctx context.Context, actor *auth.User, id int64, dto CreateGatePassDTO) (*GatePass, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.WorkflowIdle() {
		obs.RecordRejectedTransition("asset", "gatepass_create")
		return nil, internal.NewStateConflictError(
			fmt.Sprintf("gate pass requires an Active asset, current status is %q", a.Status))
	}

	now := time.Now()
	gp := &GatePass{
		PassID:      "GP-" + ulid.Make().String(),
		AssetID:     a.ID,
		FromBranch:  a.BranchCode,
		ToBranch:    dto.ToBranch,
		Type:        dto.Type,
		Reason:      dto.Reason,
		GeneratedBy: actor.Username,
		GeneratedAt: now,
		Status:      "Open",
	}
	if err := s.repo.CreateGatePass(ctx, gp); err != nil {
		return nil, internal.NewInternalError("failed to create gate pass", err)
	}

	a.Status = StatusGatePass
	a.GatePassType = dto.Type
	a.ToLocation = dto.ToBranch
	a.Purpose = dto.Reason
	a.GeneratedBy = actor.Username
	a.GeneratedAt = &now
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to mark asset on gate pass", err)
	}

	obs.RecordTransition("asset", "gatepass_create")
	s.bus.Publish(ctx, events.NewWorkflowEvent(events.EventTypeGatePassCreated, "asset", a.ID,
		actor.Username, "Gate Pass Generated",
		fmt.Sprintf("Gate pass %s generated for %s (%s) to %s", gp.PassID, a.Name, a.TagNumber, dto.ToBranch),
		events.WorkflowTarget{Branch: a.BranchCode}))
	return gp, nil
}

func (s *Service) ListGatePasses(ctx context.Context, actor *auth.User) ([]*GatePass, error) {
	sc, err := s.resolver.Resolve(ctx, actor.Role, actor.BranchCode, actor.ID)
	if err != nil {
		return nil, err
	}
	passes, err := s.repo.ListGatePasses(ctx, sc)
	if err != nil {
		return nil, internal.NewInternalError("failed to list gate passes", err)
	}
	return passes, nil
}

func (s *Service) getAsset(ctx context.Context, id int64) (*Asset, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAssetNotFound
		}
		return nil, internal.NewInternalError("failed to read asset", err)
	}
	return a, nil
}
