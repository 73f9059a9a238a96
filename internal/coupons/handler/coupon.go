package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"wayfare/internal/coupons/service"
	apperrors "wayfare/pkg/errors"
	httputil "wayfare/pkg/http"
	"wayfare/pkg/logger"
	"wayfare/pkg/model"
)

type CouponHandler struct {
	service service.CouponService
	log     *logger.Logger
}

func NewCouponHandler(service service.CouponService, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		log:     log,
	}
}

type validateRequest struct {
	Code         string   `json:"coupon_code"`
	ExperienceID string   `json:"experience_id"`
	Amount       *float64 `json:"booking_amount,omitempty"`
}

type validateResponse struct {
	Valid       bool                       `json:"valid"`
	Coupon      *model.Coupon              `json:"coupon,omitempty"`
	Experience  *model.ExperienceSummary   `json:"experience,omitempty"`
	Calculation *model.DiscountCalculation `json:"discount_calculation"`
	Message     string                     `json:"message,omitempty"`
	Error       string                     `json:"error,omitempty"`
}

type createResponse struct {
	Success    bool          `json:"success"`
	Coupon     *model.Coupon `json:"coupon"`
	Experience struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"experience"`
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var create model.CouponCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	coupon, experience, err := h.service.Create(r.Context(), &create)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := createResponse{Success: true, Coupon: coupon}
	resp.Experience.ID = experience.ID
	resp.Experience.Title = experience.Title
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, validateResponse{
			Valid:   false,
			Error:   apperrors.CodeInvalidInput,
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.service.Validate(r.Context(), req.Code, req.ExperienceID, req.Amount)
	if err != nil {
		appErr := apperrors.AsAppError(err)
		httputil.WriteJSON(w, appErr.StatusCode(), validateResponse{
			Valid:   false,
			Error:   appErr.Code,
			Message: appErr.Message,
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, validateResponse{
		Valid:       true,
		Coupon:      result.Coupon,
		Experience:  result.Experience,
		Calculation: result.Calculation,
		Message:     result.Message,
	})
}

func (h *CouponHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CouponHandler) GetByExperience(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	experienceID := r.URL.Query().Get("experience_id")
	if experienceID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("experience_id query parameter is required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	coupons, total, err := h.service.GetByExperience(r.Context(), experienceID, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, coupons, total, limit, offset)
}

func (h *CouponHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/coupons", h.Create)
	router.POST("/api/v1/coupons/validate", h.Validate)
	router.GET("/api/v1/coupons", h.GetByExperience)
	router.DELETE("/api/v1/coupons/:id", h.Deactivate)
}
