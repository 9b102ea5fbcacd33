/*
handlers.go - HTTP API handlers for the fleet payroll system

PURPOSE:
  Exposes the shift lifecycle, leave workflow and payroll engine via
  REST. Handlers parse and validate input, delegate to domain logic,
  and serialize responses; no business rules live here.

ENDPOINTS:
  Drivers:
    GET    /api/drivers                      List roster
    POST   /api/drivers                      Register driver
    GET    /api/drivers/{id}                 Driver details

  Shifts:
    POST   /api/drivers/{id}/clock-in        Open a shift
    POST   /api/drivers/{id}/clock-out       Complete the active shift
    GET    /api/drivers/{id}/shifts/active   Active shift, if any
    GET    /api/drivers/{id}/shifts          Shifts for ?year=&month=

  Leave:
    POST   /api/drivers/{id}/leaves          Submit a leave day
    GET    /api/drivers/{id}/leaves          Driver's requests
    GET    /api/leaves/pending               All pending requests
    POST   /api/leaves/{id}/approve          Approve (terminal)
    POST   /api/leaves/{id}/reject           Reject (terminal)

  Payroll:
    GET    /api/drivers/{id}/payroll         Monthly breakdown ?year=&month=
    GET    /api/drivers/{id}/payroll/ytd     Year-to-date ?year=
    GET    /api/payroll/summary              All active drivers ?year=&month=
    GET    /api/payroll/ytd                  All active drivers ?year=

ERROR HANDLING:
  Domain errors map to HTTP status by taxonomy:
  - 400: validation (bad odometer, bad month, bad leave type)
  - 404: unknown driver/shift/leave
  - 409: conflict (shift already active, regression, no active shift,
         duplicate leave date, already decided)
  - 500: everything else

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/driver"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/payroll"
	"github.com/warp/fleet-payroll/shift"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Drivers    driver.Store
	Shifts     shift.Store
	Lifecycle  *shift.Lifecycle
	Leaves     *leave.Service
	LeaveStore leave.Store
	Engine     *payroll.Engine
	Aggregator *payroll.Aggregator
	Metrics    *Metrics
}

// =============================================================================
// DRIVER HANDLERS
// =============================================================================

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Drivers.ListDrivers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drivers", err)
		return
	}
	dtos := make([]DriverDTO, len(ds))
	for i, d := range ds {
		dtos[i] = toDriverDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	hireDate, err := civil.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	d := driver.Driver{
		ID:       req.ID,
		Name:     req.Name,
		Phone:    req.Phone,
		HireDate: hireDate,
		Active:   true,
	}
	id, err := h.Drivers.SaveDriver(r.Context(), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create driver", err)
		return
	}
	d.ID = id
	writeJSON(w, http.StatusCreated, toDriverDTO(d))
}

func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drivers.GetDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get driver", err)
		return
	}
	writeJSON(w, http.StatusOK, toDriverDTO(d))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	var req ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.requireDriver(w, r, driverID); err != nil {
		return
	}

	s, err := h.Lifecycle.ClockIn(r.Context(), driverID, req.StartOdometer)
	if err != nil {
		writeDomainError(w, "Clock-in failed", err)
		return
	}
	h.Metrics.ClockIns.Inc()
	writeJSON(w, http.StatusCreated, toShiftDTO(s))
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	var req ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := h.Lifecycle.ClockOut(r.Context(), driverID, req.EndOdometer)
	if err != nil {
		writeDomainError(w, "Clock-out failed", err)
		return
	}
	h.Metrics.ClockOuts.Inc()
	writeJSON(w, http.StatusOK, toShiftDTO(s))
}

func (h *Handler) GetActiveShift(w http.ResponseWriter, r *http.Request) {
	s, err := h.Shifts.ActiveShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shift.ErrNoActiveShift) {
			writeError(w, http.StatusNotFound, "No active shift", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get active shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(s))
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}
	from, to := civil.MonthInterval(year, month)

	shifts, err := h.Shifts.ShiftsInRange(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.requireDriver(w, r, driverID); err != nil {
		return
	}

	lv, err := h.Leaves.Submit(r.Context(), driverID, date, leave.Type(req.Type))
	if err != nil {
		writeDomainError(w, "Failed to submit leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(lv))
}

func (h *Handler) ListDriverLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.LeaveStore.LeavesForDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

func (h *Handler) ListPendingLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.LeaveStore.PendingLeaves(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	lv, err := h.Leaves.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to approve leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(lv))
}

func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	lv, err := h.Leaves.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to reject leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(lv))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

func (h *Handler) GetDriverPayroll(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	if err := h.requireDriver(w, r, driverID); err != nil {
		return
	}

	res, err := h.Engine.ComputeMonth(r.Context(), driverID, year, month)
	if err != nil {
		writeDomainError(w, "Payroll computation failed", err)
		return
	}
	h.Metrics.PayrollRuns.Inc()
	writeJSON(w, http.StatusOK, toPayrollDTO(res))
}

func (h *Handler) GetDriverYearToDate(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	if err := h.requireDriver(w, r, driverID); err != nil {
		return
	}

	res, err := h.Aggregator.DriverYearToDate(r.Context(), driverID, year)
	if err != nil {
		writeDomainError(w, "Year-to-date computation failed", err)
		return
	}
	h.Metrics.PayrollRuns.Inc()
	writeJSON(w, http.StatusOK, toPayrollDTO(res))
}

func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	entries, err := h.Aggregator.MonthlySummary(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, "Summary computation failed", err)
		return
	}
	h.Metrics.PayrollRuns.Inc()
	writeJSON(w, http.StatusOK, toSummaryDTO(entries))
}

func (h *Handler) GetYearToDateSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	entries, err := h.Aggregator.YearToDate(r.Context(), year)
	if err != nil {
		writeDomainError(w, "Year-to-date computation failed", err)
		return
	}
	h.Metrics.PayrollRuns.Inc()
	writeJSON(w, http.StatusOK, toSummaryDTO(entries))
}

// =============================================================================
// HELPERS
// =============================================================================

// requireDriver writes a 404 and returns an error when the driver is
// unknown, so shift and payroll endpoints fail fast with a clear status.
func (h *Handler) requireDriver(w http.ResponseWriter, r *http.Request, id string) error {
	_, err := h.Drivers.GetDriver(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Unknown driver", err)
	}
	return err
}

func yearMonthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing year", err)
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing month", err)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing year", err)
		return 0, false
	}
	return year, true
}

func toLeaveDTOs(leaves []leave.Request) []LeaveDTO {
	dtos := make([]LeaveDTO, len(leaves))
	for i, lv := range leaves {
		dtos[i] = toLeaveDTO(lv)
	}
	return dtos
}

// writeDomainError maps a domain error onto an HTTP status by taxonomy.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case shift.IsValidation(err) || leave.IsValidation(err) || payroll.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case shift.IsConflict(err) || leave.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case shift.IsNotFound(err) || leave.IsNotFound(err) || errors.Is(err, driver.ErrDriverNotFound):
		writeError(w, http.StatusNotFound, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
