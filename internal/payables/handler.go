package payables

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/transport"
	"github.com/frahmantamala/asset-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return actor, true
}

func (h *Handler) billID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid bill id")
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateAgreementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agreement, err := h.Service.CreateAgreement(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateAgreement: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, agreement)
}

func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "contractId")
	if contractID == "" {
		h.WriteError(w, http.StatusBadRequest, "contract id is required")
		return
	}

	agreement, err := h.Service.GetAgreement(r.Context(), contractID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, agreement)
}

func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	agreements, err := h.Service.ListAgreements(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, agreements)
}

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.Service.CreateBill(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateBill: service error", "error", err, "contract_id", dto.ContractID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, bill)
}

func (h *Handler) ValidateBill(w http.ResponseWriter, r *http.Request) {
	var dto ValidateBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.ValidateBill(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, ok := h.billID(w, r)
	if !ok {
		return
	}

	bill, err := h.Service.GetBill(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	bills, err := h.Service.ListBills(r.Context(), actor, r.URL.Query().Get("contractId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bills)
}

func (h *Handler) ApproveBill(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.billID(w, r)
	if !ok {
		return
	}

	bill, err := h.Service.ApproveBill(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) RejectBill(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.billID(w, r)
	if !ok {
		return
	}

	var dto RejectBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.Service.RejectBill(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.billID(w, r)
	if !ok {
		return
	}

	var dto PayBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.Service.PayBill(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) UpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.billID(w, r)
	if !ok {
		return
	}

	var dto UpdateBillStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.Service.UpdateBillStatus(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) GetMonthlyBillTotal(w http.ResponseWriter, r *http.Request) {
	contractID := r.URL.Query().Get("contractId")
	monthYear := r.URL.Query().Get("monthYear")
	if contractID == "" || monthYear == "" {
		h.WriteError(w, http.StatusBadRequest, "contractId and monthYear are required")
		return
	}

	total, err := h.Service.GetMonthlyBillTotal(r.Context(), contractID, monthYear)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"contractId": contractID,
		"monthYear":  monthYear,
		"total":      total,
	})
}

func (h *Handler) GetUnpaidBills(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	bills, err := h.Service.GetUnpaidBills(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, bills)
}
