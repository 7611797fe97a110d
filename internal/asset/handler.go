package asset

import (
	"context"
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

func (h *Handler) assetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid asset id")
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateAssetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.CreateAsset(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateAsset: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var dto UpdateAssetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.UpdateAsset(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	a, err := h.Service.GetAsset(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	assets, err := h.Service.ListAssets(r.Context(), actor, r.URL.Query().Get("q"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assets)
}

func (h *Handler) ListDisposalCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	assets, err := h.Service.ListDisposalCart(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assets)
}

// TransferHistory lists assets transferred out of a branch, the origin-side
// view that the scoped active listing no longer shows.
func (h *Handler) TransferHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	branchCode := chi.URLParam(r, "branchCode")
	if branchCode == "" {
		h.WriteError(w, http.StatusBadRequest, "branch code is required")
		return
	}

	assets, err := h.Service.ListTransferredFrom(r.Context(), actor, branchCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assets)
}

func (h *Handler) InitiateDisposal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var dto InitiateDisposalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.InitiateDisposal(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) SubmitForApproval(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.SubmitForApproval)
}

func (h *Handler) RecommendDisposal(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.RecommendDisposal)
}

func (h *Handler) ApproveDisposal(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ApproveDisposal)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.RemoveFromCart)
}

func (h *Handler) RejectDisposal(w http.ResponseWriter, r *http.Request) {
	h.rejection(w, r, h.Service.RejectDisposal)
}

func (h *Handler) InitiateTransfer(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var dto InitiateTransferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.InitiateTransfer(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ApproveTransfer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ApproveTransfer)
}

func (h *Handler) RejectTransfer(w http.ResponseWriter, r *http.Request) {
	h.rejection(w, r, h.Service.RejectTransfer)
}

func (h *Handler) CreateGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var dto CreateGatePassDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gp, err := h.Service.CreateGatePass(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, gp)
}

func (h *Handler) ListGatePasses(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	passes, err := h.Service.ListGatePasses(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, passes)
}

// transition handles the body-less lifecycle endpoints (submit, recommend,
// approve, remove).
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *auth.User, id int64) (*Asset, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	a, err := fn(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

// rejection handles the lifecycle endpoints that carry a reason payload.
func (h *Handler) rejection(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *auth.User, id int64, dto RejectDTO) (*Asset, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}

	var dto RejectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := fn(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}
