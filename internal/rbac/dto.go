package rbac

// UpdateRoleDTO carries flag changes for one bundle. Nil pointers leave the
// corresponding flag untouched.
type UpdateRoleDTO struct {
	Name        string `json:"name"`
	Description *string `json:"description,omitempty"`

	ManageRoles       *bool `json:"manage_roles,omitempty"`
	AssetCreation     *bool `json:"asset_creation,omitempty"`
	AssetModification *bool `json:"asset_modification,omitempty"`
	AssetDeletion     *bool `json:"asset_deletion,omitempty"`
	AssetConfirmation *bool `json:"asset_confirmation,omitempty"`
	InitiateDisposal  *bool `json:"initiate_disposal,omitempty"`
	ApproveDisposal   *bool `json:"approve_disposal,omitempty"`
	InitiateTransfer  *bool `json:"initiate_transfer,omitempty"`
	ApproveTransfer   *bool `json:"approve_transfer,omitempty"`
	CreateAgreement   *bool `json:"create_agreement,omitempty"`
	ApproveAgreement  *bool `json:"approve_agreement,omitempty"`
	CreateBill        *bool `json:"create_bill,omitempty"`
	ApproveBill       *bool `json:"approve_bill,omitempty"`
}

func (dto UpdateRoleDTO) ApplyTo(role *Role) {
	if dto.Description != nil {
		role.Description = *dto.Description
	}
	setIf := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setIf(&role.ManageRoles, dto.ManageRoles)
	setIf(&role.AssetCreation, dto.AssetCreation)
	setIf(&role.AssetModification, dto.AssetModification)
	setIf(&role.AssetDeletion, dto.AssetDeletion)
	setIf(&role.AssetConfirmation, dto.AssetConfirmation)
	setIf(&role.InitiateDisposal, dto.InitiateDisposal)
	setIf(&role.ApproveDisposal, dto.ApproveDisposal)
	setIf(&role.InitiateTransfer, dto.InitiateTransfer)
	setIf(&role.ApproveTransfer, dto.ApproveTransfer)
	setIf(&role.CreateAgreement, dto.CreateAgreement)
	setIf(&role.ApproveAgreement, dto.ApproveAgreement)
	setIf(&role.CreateBill, dto.CreateBill)
	setIf(&role.ApproveBill, dto.ApproveBill)
}
