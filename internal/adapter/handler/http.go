package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
	"github.com/dk2904/aircraft-factory/internal/core/service"
)

type manufacturingAPI interface {
	ManufacturePlane(ctx context.Context, user *domain.User, planeID int64) (*service.ManufacturePlaneResult, error)
	RecyclePlane(ctx context.Context, user *domain.User, planeID int64) (*service.RecyclePlaneResult, error)
	ManufacturePart(ctx context.Context, user *domain.User, planeID, partID int64) (*service.PartInventoryResult, error)
	RecyclePart(ctx context.Context, user *domain.User, planeID, partID int64) (*service.PartInventoryResult, error)
	ListPlaneInventory(ctx context.Context, user *domain.User) ([]domain.PlaneStock, error)
	PartSummary(ctx context.Context, user *domain.User) (*service.PartSummary, error)
	AssemblyHistory(ctx context.Context, user *domain.User) ([]service.HistoryEntry, error)
}

type departmentAPI interface {
	Directory(ctx context.Context, user *domain.User) (*service.DepartmentDirectory, error)
}

type authAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type HTTPHandler struct {
	manufacturing manufacturingAPI
	departments   departmentAPI
	auth          authAPI
	log           *logrus.Logger
}

func NewHTTPHandler(manufacturing manufacturingAPI, departments departmentAPI, auth authAPI, log *logrus.Logger) *HTTPHandler {
	return &HTTPHandler{manufacturing: manufacturing, departments: departments, auth: auth, log: log}
}

type planeRequest struct {
	PlaneID int64 `json:"plane_id"`
}

type partRequest struct {
	PlaneID int64 `json:"plane_id"`
	PartID  int64 `json:"part_id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: false, Error: "invalid request body"})
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Credential failures report 401, not 403: the caller needs a
		// different identity, not different permissions.
		if errors.Is(err, service.ErrForbidden) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: err.Error()})
			return
		}
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": true,
		"token":  token,
	})
}

func (h *HTTPHandler) ManufacturePlane(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	var req planeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: false, Error: "invalid request body"})
		return
	}

	result, err := h.manufacturing.ManufacturePlane(r.Context(), user, req.PlaneID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        true,
		"message":       "Successfully manufactured a '" + result.PlaneName + "'",
		"plane_id":      result.PlaneID,
		"new_inventory": result.NewInventory,
		"used_parts":    result.UsedParts,
	})
}

func (h *HTTPHandler) ListPlaneInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	stocks, err := h.manufacturing.ListPlaneInventory(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := make([]map[string]interface{}, 0, len(stocks))
	for _, s := range stocks {
		data = append(data, map[string]interface{}{
			"plane_id":        s.PlaneID,
			"plane_name":      s.PlaneName,
			"plane_inventory": s.Count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          true,
		"department_name": user.DepartmentName,
		"data":            data,
	})
}

func (h *HTTPHandler) RecyclePlane(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	var req planeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: false, Error: "invalid request body"})
		return
	}

	result, err := h.manufacturing.RecyclePlane(r.Context(), user, req.PlaneID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        true,
		"message":       "Successfully recycled one " + result.PlaneName + ".",
		"new_inventory": result.NewInventory,
	})
}

func (h *HTTPHandler) ManufacturePart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	var req partRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: false, Error: "invalid request body"})
		return
	}

	result, err := h.manufacturing.ManufacturePart(r.Context(), user, req.PlaneID, req.PartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        true,
		"message":       "Successfully manufactured a '" + result.PartName + "' for '" + result.PlaneName + "'",
		"plane_id":      result.PlaneID,
		"part_id":       result.PartID,
		"new_inventory": result.NewInventory,
	})
}

func (h *HTTPHandler) PartSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	summary, err := h.manufacturing.PartSummary(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := make([]map[string]interface{}, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		data = append(data, map[string]interface{}{
			"plane_id":   row.PlaneID,
			"plane_name": row.PlaneName,
			"part_count": row.PartCount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          true,
		"department_name": summary.DepartmentName,
		"part_id":         summary.PartID,
		"data":            data,
	})
}

func (h *HTTPHandler) RecyclePart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	var req partRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: false, Error: "invalid request body"})
		return
	}

	result, err := h.manufacturing.RecyclePart(r.Context(), user, req.PlaneID, req.PartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        true,
		"message":       "Successfully recycled one " + result.PartName + " for " + result.PlaneName + ".",
		"plane_id":      result.PlaneID,
		"part_id":       result.PartID,
		"new_inventory": result.NewInventory,
	})
}

func (h *HTTPHandler) AssemblyHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	entries, err := h.manufacturing.AssemblyHistory(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		data = append(data, map[string]interface{}{
			"plane_name": e.PlaneName,
			"used_parts": e.UsedParts,
			"date":       e.Date.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": true,
		"data":   data,
	})
}

func (h *HTTPHandler) DepartmentList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
		return
	}

	directory, err := h.departments.Directory(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	departments := make([]map[string]interface{}, 0, len(directory.Departments))
	for _, d := range directory.Departments {
		departments = append(departments, map[string]interface{}{
			"department_id":   d.DepartmentID,
			"department_name": d.DepartmentName,
			"isAccess":        d.IsAccess,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"isAssemblyTeam": directory.IsAssemblyTeam,
		"username":       directory.Username,
		"departments":    departments,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError classifies a service error into an HTTP status. Anything
// outside the taxonomy is an internal failure: logged, never leaked.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrInsufficientStock):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidState):
		message = err.Error()
		h.log.WithField("request_id", requestIDFromContext(r.Context())).Errorf("invalid stored state: %v", err)
	default:
		h.log.WithField("request_id", requestIDFromContext(r.Context())).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, errorResponse{Status: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
