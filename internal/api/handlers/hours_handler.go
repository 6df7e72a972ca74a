package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"food-order-service/internal/hours"
	"food-order-service/internal/repository"
)

// --- Request / Response DTOs ---

type DayHoursUpdate struct {
	OpenTime  string `json:"open_time,omitempty"` // HH:MM
	CloseTime string `json:"close_time,omitempty"`
	IsClosed  bool   `json:"is_closed"`
}

type DayHoursOut struct {
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	IsClosed  bool    `json:"is_closed"`
}

type HoursStatusResponse struct {
	IsOpen       bool   `json:"is_open"`
	CurrentTime  string `json:"current_time"`
	Reason       string `json:"reason,omitempty"`
	NextOpenTime string `json:"next_open_time,omitempty"`
}

var dayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func dayOut(d hours.DayHours) DayHoursOut {
	out := DayHoursOut{IsClosed: d.Closed}
	if d.Open != nil {
		s := d.Open.String()
		out.OpenTime = &s
	}
	if d.Close != nil {
		s := d.Close.String()
		out.CloseTime = &s
	}
	return out
}

// --- Handler ---

type HoursHandler struct {
	schedule *repository.ScheduleRepo
	gate     *hours.Gate
}

func NewHoursHandler(schedule *repository.ScheduleRepo, gate *hours.Gate) *HoursHandler {
	return &HoursHandler{schedule: schedule, gate: gate}
}

// Status handles GET /business-hours/status.
func (h *HoursHandler) Status(w http.ResponseWriter, r *http.Request) {
	sched, err := h.schedule.LoadWeek(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	now := time.Now()
	gs := h.gate.Check(sched, now)

	resp := HoursStatusResponse{
		IsOpen:      gs.Open,
		CurrentTime: now.In(h.gate.Location()).Format("2006-01-02 15:04:05 MST"),
		Reason:      string(gs.Reason),
	}
	if gs.NextOpen != nil {
		resp.NextOpenTime = gs.NextOpen.Format("2006-01-02 15:04:05 MST")
	}
	writeJSON(w, http.StatusOK, resp)
}

// Weekly handles GET /admin/business-hours/weekly.
func (h *HoursHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	sched, err := h.schedule.LoadWeek(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	out := make(map[string]DayHoursOut, 7)
	for d, name := range dayNames {
		if day, ok := sched[d]; ok {
			out[name] = dayOut(day)
		} else {
			out[name] = DayHoursOut{IsClosed: true}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"weekly_hours": out})
}

// UpdateDay handles PUT /admin/business-hours/{weekday} with weekday 0..6
// (0 = Monday).
func (h *HoursHandler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		writeError(w, http.StatusBadRequest, "weekday must be 0 (Monday) .. 6 (Sunday)")
		return
	}
	var req DayHoursUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	day := hours.DayHours{Closed: req.IsClosed}
	if req.OpenTime != "" {
		t, err := hours.ParseTimeOfDay(req.OpenTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid open_time; use HH:MM")
			return
		}
		day.Open = &t
	}
	if req.CloseTime != "" {
		t, err := hours.ParseTimeOfDay(req.CloseTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid close_time; use HH:MM")
			return
		}
		day.Close = &t
	}
	if day.Open != nil && day.Close != nil && !day.Closed {
		if day.Close.Hour*60+day.Close.Minute <= day.Open.Hour*60+day.Open.Minute {
			writeError(w, http.StatusBadRequest, "close_time must be after open_time")
			return
		}
	}

	if err := h.schedule.UpsertDay(r.Context(), weekday, day); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weekday": weekday, "hours": dayOut(day)})
}
