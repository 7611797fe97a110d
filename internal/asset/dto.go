package asset

import (
	"strings"
	"time"

	"github.com/frahmantamala/asset-management/internal"
)

type CreateAssetDTO struct {
	Name       string `json:"name"`
	TagNumber  string `json:"tagNumber"`
	Type       string `json:"type"`
	BranchCode string `json:"branchCode"`
	BranchName string `json:"branchName"`

	PurchaseDate string `json:"purchaseDate,omitempty"`
	WarrantyEnd  string `json:"warrantyEnd,omitempty"`
	AmcStart     string `json:"amcStart,omitempty"`
	AmcEnd       string `json:"amcEnd,omitempty"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	AmcWarranty  string `json:"amcWarranty,omitempty"`

	DepreciationMethod string  `json:"depreciationMethod,omitempty"`
	DepreciationRate   float64 `json:"depreciationRate,omitempty"`
	ClosingValue       int64   `json:"closingValue,omitempty"`

	BranchUser     string `json:"branchUser,omitempty"`
	MappedEmployee string `json:"mappedEmployee,omitempty"`
	Custodian      string `json:"custodian,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

func (dto CreateAssetDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.TagNumber) == "" {
		return internal.NewValidationFieldError("tagNumber", "tag number is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.BranchCode) == "" {
		return internal.NewValidationFieldError("branchCode", "branch code is required", internal.ErrCodeValidationFailed)
	}
	for field, v := range map[string]string{
		"purchaseDate": dto.PurchaseDate,
		"warrantyEnd":  dto.WarrantyEnd,
		"amcStart":     dto.AmcStart,
		"amcEnd":       dto.AmcEnd,
		"expiryDate":   dto.ExpiryDate,
	} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return internal.NewValidationFieldError(field, "must be a YYYY-MM-DD date", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}

// UpdateAssetDTO carries descriptive-field changes. Workflow fields (status,
// branch, transfer breadcrumbs) are owned by the engine transitions and are
// not updatable here.
type UpdateAssetDTO struct {
	Name       *string `json:"name,omitempty"`
	Type       *string `json:"type,omitempty"`
	BranchName *string `json:"branchName,omitempty"`

	PurchaseDate *string `json:"purchaseDate,omitempty"`
	WarrantyEnd  *string `json:"warrantyEnd,omitempty"`
	AmcStart     *string `json:"amcStart,omitempty"`
	AmcEnd       *string `json:"amcEnd,omitempty"`
	ExpiryDate   *string `json:"expiryDate,omitempty"`
	AmcWarranty  *string `json:"amcWarranty,omitempty"`

	DepreciationMethod *string  `json:"depreciationMethod,omitempty"`
	DepreciationRate   *float64 `json:"depreciationRate,omitempty"`
	ClosingValue       *int64   `json:"closingValue,omitempty"`

	BranchUser     *string `json:"branchUser,omitempty"`
	MappedEmployee *string `json:"mappedEmployee,omitempty"`
	Custodian      *string `json:"custodian,omitempty"`
	ImageURL       *string `json:"imageUrl,omitempty"`
}

func (dto UpdateAssetDTO) ApplyTo(a *Asset) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&a.Name, dto.Name)
	setStr(&a.Type, dto.Type)
	setStr(&a.BranchName, dto.BranchName)
	setStr(&a.PurchaseDate, dto.PurchaseDate)
	setStr(&a.WarrantyEnd, dto.WarrantyEnd)
	setStr(&a.AmcStart, dto.AmcStart)
	setStr(&a.AmcEnd, dto.AmcEnd)
	setStr(&a.ExpiryDate, dto.ExpiryDate)
	setStr(&a.AmcWarranty, dto.AmcWarranty)
	setStr(&a.DepreciationMethod, dto.DepreciationMethod)
	setStr(&a.BranchUser, dto.BranchUser)
	setStr(&a.MappedEmployee, dto.MappedEmployee)
	setStr(&a.Custodian, dto.Custodian)
	setStr(&a.ImageURL, dto.ImageURL)
	if dto.DepreciationRate != nil {
		a.DepreciationRate = *dto.DepreciationRate
	}
	if dto.ClosingValue != nil {
		a.ClosingValue = *dto.ClosingValue
	}
}

type InitiateDisposalDTO struct {
	Reason string `json:"reason"`
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

type InitiateTransferDTO struct {
	ToBranchCode string `json:"toBranchCode"`
	ToBranchName string `json:"toBranchName"`
	Reason       string `json:"reason,omitempty"`
}

func (dto InitiateTransferDTO) Validate() error {
	if strings.TrimSpace(dto.ToBranchCode) == "" {
		return internal.NewValidationFieldError("toBranchCode", "destination branch code is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateGatePassDTO struct {
	ToBranch string `json:"toBranch"`
	Type     string `json:"type"`
	Reason   string `json:"reason,omitempty"`
}

func (dto CreateGatePassDTO) Validate() error {
	if strings.TrimSpace(dto.ToBranch) == "" {
		return internal.NewValidationFieldError("toBranch", "destination is required", internal.ErrCodeValidationFailed)
	}
	switch dto.Type {
	case GatePassTypeTemporary, GatePassTypeTransfer:
		return nil
	default:
		return internal.NewValidationFieldError("type", "type must be Temporary or Transfer", internal.ErrCodeValidationFailed)
	}
}
