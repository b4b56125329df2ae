package booking

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trainingdesk/internal/api"
	"trainingdesk/internal/auth"
	"trainingdesk/internal/coursetype"
	"trainingdesk/internal/events"
	"trainingdesk/pkg/db"
)

type Handlers struct {
	DB          *pgxpool.Pool
	Bookings    *Repository
	CourseTypes *coursetype.Repository
	Log         *zap.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Bookings.List(r.Context())
	if err != nil {
		h.Log.Error("list bookings failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Booking{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	b, err := h.Bookings.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	days, err := h.Bookings.DaysByBooking(r.Context(), b.ID)
	if err != nil {
		h.Log.Error("load booking days failed", zap.String("booking_id", b.ID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	evs, err := events.ListByBooking(r.Context(), h.DB, b.ID)
	if err != nil {
		h.Log.Error("load booking events failed", zap.String("booking_id", b.ID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if evs == nil {
		evs = []events.Event{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking": b,
		"days":    dayViews(days),
		"events":  evs,
	})
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	evs, err := events.ListByBooking(r.Context(), h.DB, id)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if evs == nil {
		evs = []events.Event{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}

type CreateRequest struct {
	CourseTypeID string `json:"courseTypeId"`
	CourseDate   string `json:"courseDate"` // 2006-01-02
	StartTime    string `json:"startTime,omitempty"`
	ContactName  string `json:"contactName,omitempty"`
	Telephone    string `json:"telephone,omitempty"`
	Email        string `json:"email,omitempty"`
	BookingNotes string `json:"bookingNotes,omitempty"`
}

// Create stores a booking and generates its day rows: one per calendar day
// spanned by ceil(duration_days), all prefilled with the booking's start time
// and no end time (end times are backfilled or derived later).
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	if req.CourseTypeID == "" || req.CourseDate == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "courseTypeId and courseDate are required")
		return
	}
	courseDate, err := time.Parse("2006-01-02", req.CourseDate)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "courseDate must be YYYY-MM-DD")
		return
	}

	var start NullTimeOfDay
	if req.StartTime != "" {
		t, err := ParseTimeOfDay(req.StartTime)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "startTime must be HH:MM")
			return
		}
		start = SomeTime(t)
	}

	ct, err := h.CourseTypes.GetByID(r.Context(), req.CourseTypeID)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "unknown course type")
		return
	}

	b := Booking{
		ID:           uuid.NewString(),
		CourseTypeID: ct.ID,
		CourseDate:   courseDate,
		StartTime:    req.StartTime,
		Status:       StatusScheduled,
		ContactName:  req.ContactName,
		Telephone:    req.Telephone,
		Email:        req.Email,
		BookingNotes: req.BookingNotes,
	}

	// References collide rarely (36^6 keyspace); retry a few times on the
	// unique constraint instead of checking first.
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		b.CourseReference = newCourseReference(ct.Code)
		days := generateDays(b.ID, b.CourseReference, courseDate, start, ct.Duration())

		lastErr = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
			return Insert(r.Context(), tx, &b, days)
		})
		if lastErr == nil {
			break
		}
		var pgErr *pgconn.PgError
		if !errors.As(lastErr, &pgErr) || pgErr.Code != "23505" {
			break
		}
	}
	if lastErr != nil {
		h.Log.Error("create booking failed", zap.Error(lastErr))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create booking")
		return
	}

	created, err := h.Bookings.GetByID(r.Context(), b.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load booking")
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"booking": created})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	b, err := h.Bookings.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	actor := "staff"
	if s := auth.StaffFromContext(r.Context()); s != nil {
		actor = s.Subject
	}

	now := time.Now()
	var cancelled bool
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		cancelled, err = Cancel(r.Context(), tx, id, req.Reason, now)
		if err != nil || !cancelled {
			return err
		}
		summary := fmt.Sprintf("cancelled from %s", b.Status)
		return events.InsertTx(r.Context(), tx, id, events.TypeCancelled, summary, actor, now)
	})
	if err != nil {
		h.Log.Error("cancel booking failed", zap.String("booking_id", id), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to cancel booking")
		return
	}
	if !cancelled {
		api.WriteError(w, http.StatusConflict, "CONFLICT", "booking is not open")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"status": StatusCancelled})
}

type setDayEndRequest struct {
	EndTime string `json:"endTime"`
}

// SetDayEnd backfills an explicit end time on one day row (the only mutation
// day rows allow after creation).
func (h Handlers) SetDayEnd(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	dayID := chi.URLParam(r, "dayId")
	if bookingID == "" || dayID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req setDayEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	end, err := ParseTimeOfDay(req.EndTime)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "endTime must be HH:MM")
		return
	}

	if err := h.Bookings.SetDayEndTime(r.Context(), bookingID, dayID, end); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "day not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"endTime": end.String()})
}

// generateDays lays out the day rows for a new booking: consecutive calendar
// days starting at the course date, one per ceil(duration_days), each
// prefilled with the booking's start time and no end time.
func generateDays(bookingID, reference string, first time.Time, start NullTimeOfDay, duration decimal.Decimal) []Day {
	n := DayRowCount(duration)
	out := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		date := first.AddDate(0, 0, i)
		out = append(out, Day{
			ID:        uuid.NewString(),
			BookingID: bookingID,
			Date:      date,
			StartTime: start,
			DayCode:   fmt.Sprintf("%s-%s", date.Format("20060102"), reference),
		})
	}
	return out
}

type dayView struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	DayCode   string `json:"dayCode,omitempty"`
}

func dayViews(days []Day) []dayView {
	out := make([]dayView, 0, len(days))
	for _, d := range days {
		v := dayView{
			ID:      d.ID,
			Date:    d.Date.Format("2006-01-02"),
			DayCode: d.DayCode,
		}
		if d.StartTime.Valid {
			v.StartTime = d.StartTime.Time.String()
		}
		if d.EndTime.Valid {
			v.EndTime = d.EndTime.Time.String()
		}
		out = append(out, v)
	}
	return out
}

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newCourseReference(code string) string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	for i := range b {
		b[i] = refAlphabet[int(b[i])%len(refAlphabet)]
	}
	base := strings.ToUpper(strings.TrimSpace(code))
	if base == "" {
		base = "COURSE"
	}
	return base + "-" + string(b[:])
}
