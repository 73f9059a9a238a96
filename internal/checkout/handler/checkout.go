package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"wayfare/internal/checkout/service"
	apperrors "wayfare/pkg/errors"
	httputil "wayfare/pkg/http"
	"wayfare/pkg/logger"
	"wayfare/pkg/model"
)

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

type confirmRequest struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

type cancelRequest struct {
	OrderID string `json:"order_id"`
}

type cancelResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	result, err := h.service.Begin(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if result.Status == service.StatusCompleted {
		httputil.WriteJSON(w, http.StatusCreated, result)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	result, err := h.service.Confirm(r.Context(), req.OrderID, req.PaymentRef)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Cancel(r.Context(), req.OrderID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cancelResponse{
		Status: "cancelled",
		Reason: apperrors.CodePaymentCancelled,
	})
}

func (h *CheckoutHandler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	detail, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, detail)
}

func (h *CheckoutHandler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.service.ListBookings(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *CheckoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/checkout", h.Begin)
	router.POST("/api/v1/checkout/confirm", h.Confirm)
	router.POST("/api/v1/checkout/cancel", h.Cancel)
	router.GET("/api/v1/bookings", h.ListBookings)
	router.GET("/api/v1/bookings/id/:id", h.GetBooking)
}
