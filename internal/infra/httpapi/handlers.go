package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"immunization_reminder_bot/internal/app"
	idb "immunization_reminder_bot/internal/infra/database"

	"github.com/go-chi/chi/v5"
)

type inboundSMSRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

type inboundSMSResponse struct {
	Reply string `json:"reply"`
}

type workerRequest struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Phone   string `json:"phone"`
	Village string `json:"village"`
}

type escalationResponse struct {
	ID         string    `json:"id"`
	ScheduleID int64     `json:"schedule_id"`
	BabyID     string    `json:"baby_id"`
	DoseCode   string    `json:"dose_code"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInboundSMS is the SMS-simulator entry: it feeds a message body
// through the same path a gateway webhook would use and returns the
// reply text instead of sending it.
func (s *Server) handleInboundSMS(w http.ResponseWriter, r *http.Request) {
	var req inboundSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.From == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "from and body are required")
		return
	}

	reply, err := s.inbound.ProcessIncoming(r.Context(), req.From, req.Body)
	if err != nil {
		s.logger.WithError(err).Error("Inbound SMS processing failed")
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	writeJSON(w, http.StatusOK, inboundSMSResponse{Reply: reply})
}

// handleRunDispatch triggers one dispatch run for operator testing.
func (s *Server) handleRunDispatch(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatch.RunOnce(r.Context()); err != nil {
		if err == app.ErrRunSkipped {
			writeError(w, http.StatusConflict, "a dispatch run is already in progress")
			return
		}
		s.logger.WithError(err).Error("Manual dispatch run failed")
		writeError(w, http.StatusInternalServerError, "dispatch run failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleListEscalations(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = v
	}

	escalations, err := s.schedules.ListEscalations(r.Context(), limit)
	if err != nil {
		s.logger.WithError(err).Error("Listing escalations failed")
		writeError(w, http.StatusInternalServerError, "listing escalations failed")
		return
	}

	out := make([]escalationResponse, 0, len(escalations))
	for _, esc := range escalations {
		out = append(out, escalationResponse{
			ID:         esc.ID,
			ScheduleID: esc.ScheduleID,
			BabyID:     esc.BabyID,
			DoseCode:   esc.DoseCode,
			Reason:     esc.Reason,
			CreatedAt:  esc.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	created, err := s.admin.AddWorker(r.Context(), req.Name, req.Role, req.Phone, req.Village)
	if err != nil {
		switch err {
		case app.ErrWorkerAlreadyExists:
			writeError(w, http.StatusConflict, "health worker with this phone already exists")
		case app.ErrInvalidWorkerPhone:
			writeError(w, http.StatusBadRequest, "phone is not a valid Indonesian mobile number")
		default:
			s.logger.WithError(err).Error("Adding health worker failed")
			writeError(w, http.StatusInternalServerError, "adding health worker failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeactivateWorker(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	deactivated, err := s.admin.DeactivateWorker(r.Context(), phone)
	if err != nil {
		switch err {
		case idb.ErrWorkerNotFound:
			writeError(w, http.StatusNotFound, "health worker not found")
		case app.ErrWorkerAlreadyInactive:
			writeJSON(w, http.StatusOK, deactivated)
		default:
			s.logger.WithError(err).Error("Deactivating health worker failed")
			writeError(w, http.StatusInternalServerError, "deactivating health worker failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, deactivated)
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("all") == "true"
	workers, err := s.admin.ListWorkers(r.Context(), includeInactive)
	if err != nil {
		s.logger.WithError(err).Error("Listing health workers failed")
		writeError(w, http.StatusInternalServerError, "listing health workers failed")
		return
	}
	writeJSON(w, http.StatusOK, workers)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
