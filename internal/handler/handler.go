// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sharedsmiles/ticketdesk/internal/mailer"
	"github.com/sharedsmiles/ticketdesk/internal/model"
	"github.com/sharedsmiles/ticketdesk/internal/repository"
	"github.com/sharedsmiles/ticketdesk/internal/service"
)

// SettingsStore is the slice of the settings repository the handlers need.
type SettingsStore interface {
	SMTPSettings(ctx context.Context) (*model.SMTPSettings, error)
	SaveSMTPSettings(ctx context.Context, s *model.SMTPSettings) error
}

// Handler holds all HTTP handlers for the registration API.
type Handler struct {
	registrations *service.RegistrationService
	catalog       *service.CatalogService
	mailer        *mailer.Dispatcher
	settings      SettingsStore
}

// New constructs a Handler.
func New(
	registrations *service.RegistrationService,
	catalog *service.CatalogService,
	dispatcher *mailer.Dispatcher,
	settings SettingsStore,
) *Handler {
	return &Handler{
		registrations: registrations,
		catalog:       catalog,
		mailer:        dispatcher,
		settings:      settings,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Success: false, Message: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// writeDomainError maps domain errors onto HTTP status codes with the
// standard failure envelope.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrSeatsUnavailable):
		writeError(w, http.StatusConflict, "Sorry, not enough seats available for this pass.")
	case errors.Is(err, repository.ErrUpdateRestricted):
		writeError(w, http.StatusInternalServerError, "Database update restricted. Check the service's write permissions.")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ─── Public handlers ──────────────────────────────────────────────────────────

// ListPasses handles GET /api/passes
// Returns buyer-visible passes in display order.
func (h *Handler) ListPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.catalog.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list passes")
		return
	}
	if passes == nil {
		passes = []model.Pass{}
	}
	writeJSON(w, http.StatusOK, passes)
}

// Register handles POST /api/register
// Accepts multipart form data (with an optional paymentReceipt file) or JSON.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, receipt, err := decodeRegistration(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.registrations.Create(r.Context(), req, receipt)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"registration": reg,
	})
}

// decodeRegistration parses either encoding of the registration form.
func decodeRegistration(r *http.Request) (model.CreateRegistrationRequest, *service.ReceiptUpload, error) {
	var req model.CreateRegistrationRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return req, nil, err
		}
		req.FullName = r.FormValue("fullName")
		req.Email = r.FormValue("email")
		req.Phone = r.FormValue("phone")
		req.WantsUpdates = r.FormValue("wantsUpdates") == "true"

		if v := r.FormValue("ticketId"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return req, nil, err
			}
			req.PassID = id
		}
		if v := r.FormValue("additionalNames"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.AdditionalNames); err != nil {
				return req, nil, err
			}
		}

		file, header, err := r.FormFile("paymentReceipt")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return req, nil, nil
			}
			return req, nil, err
		}
		receipt := &service.ReceiptUpload{
			Data:        file,
			ContentType: header.Header.Get("Content-Type"),
			Filename:    header.Filename,
		}
		return req, receipt, nil
	}

	if err := decodeJSON(r, &req); err != nil {
		return req, nil, err
	}
	return req, nil, nil
}

// ─── Admin: registrations ─────────────────────────────────────────────────────

// ListRegistrations handles GET /api/admin/registrations
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListRegistrations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

type registrationIDRequest struct {
	RegistrationID int64 `json:"registrationId"`
}

// ConfirmRegistration handles POST /api/admin/confirm-registration
func (h *Handler) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationIDRequest
	if err := decodeJSON(r, &req); err != nil || req.RegistrationID == 0 {
		writeError(w, http.StatusBadRequest, "Registration ID is required")
		return
	}

	if err := h.registrations.Confirm(r.Context(), req.RegistrationID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registration confirmed and email sent.",
	})
}

// RejectRegistration handles POST /api/admin/reject-registration
func (h *Handler) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationIDRequest
	if err := decodeJSON(r, &req); err != nil || req.RegistrationID == 0 {
		writeError(w, http.StatusBadRequest, "Registration ID is required")
		return
	}

	result, err := h.registrations.Reject(r.Context(), req.RegistrationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Registration rejected and seats restored.",
		"seatsRestored": result.SeatsRestored,
		"seatPool":      result.SeatPool,
	})
}

// DeleteRegistration handles DELETE /api/admin/registrations?id=
func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "Registration ID is required")
		return
	}

	if err := h.registrations.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registration deleted successfully",
	})
}

// SyncSeats handles GET /api/admin/sync-seats
// Recomputes both pool counters from the registration set.
func (h *Handler) SyncSeats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.registrations.Resync(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"counts":  counts,
	})
}

// ListSeatPools handles GET /api/admin/seats
func (h *Handler) ListSeatPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.registrations.SeatPools(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list seat pools")
		return
	}
	writeJSON(w, http.StatusOK, pools)
}

// ─── Admin: passes ────────────────────────────────────────────────────────────

// ListPassesAdmin handles GET /api/admin/passes
func (h *Handler) ListPassesAdmin(w http.ResponseWriter, r *http.Request) {
	passes, err := h.catalog.ListAdmin(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list passes")
		return
	}
	if passes == nil {
		passes = []model.PassSummary{}
	}
	writeJSON(w, http.StatusOK, passes)
}

// CreatePass handles POST /api/admin/passes
func (h *Handler) CreatePass(w http.ResponseWriter, r *http.Request) {
	var in model.PassInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	pass, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pass)
}

// UpdatePass handles PUT /api/admin/passes/{id}
func (h *Handler) UpdatePass(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pass id")
		return
	}
	var in model.PassInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.catalog.Update(r.Context(), id, in); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Pass updated"})
}

// DeletePass handles DELETE /api/admin/passes/{id}
func (h *Handler) DeletePass(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pass id")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Pass deleted"})
}

// ─── Admin: settings & SMTP ───────────────────────────────────────────────────

// GetSMTPSettings handles GET /api/admin/settings/smtp
func (h *Handler) GetSMTPSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.SMTPSettings(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			writeJSON(w, http.StatusOK, &model.SMTPSettings{})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SaveSMTPSettings handles PUT /api/admin/settings/smtp
func (h *Handler) SaveSMTPSettings(w http.ResponseWriter, r *http.Request) {
	var s model.SMTPSettings
	if err := decodeJSON(r, &s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.settings.SaveSMTPSettings(r.Context(), &s); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Settings saved"})
}

type testSMTPRequest struct {
	model.SMTPSettings
	TestEmail string `json:"testEmail"`
}

// TestSMTP handles POST /api/admin/test-smtp
// Verifies the submitted settings; sends a test message when testEmail is
// given, otherwise only exercises the handshake.
func (h *Handler) TestSMTP(w http.ResponseWriter, r *http.Request) {
	var req testSMTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.mailer.Test(r.Context(), &req.SMTPSettings, req.TestEmail); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	msg := "Connection Successful!"
	if req.TestEmail != "" {
		msg = "Test email sent successfully!"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
