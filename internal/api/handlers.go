package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"maskan/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type createBookingRequest struct {
	ApartmentID   int64  `json:"apartment_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Guests        int    `json:"guests"`
	PaymentMethod string `json:"payment_method"`
}

type modifyBookingRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

type ratingRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ApartmentID <= 0 {
		writeError(w, http.StatusBadRequest, "apartment_id is required")
		return
	}
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentBalance
	}

	booking, err := s.svc.CreateBooking(r.Context(), actor, req.ApartmentID, checkIn, checkOut, req.Guests, paymentMethod)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	group := strings.TrimSpace(r.URL.Query().Get("group"))
	role := strings.TrimSpace(r.URL.Query().Get("role"))

	var (
		bookings []*models.Booking
		err      error
	)
	switch role {
	case "", models.RoleTenant:
		bookings, err = s.svc.ListTenantBookings(r.Context(), actor, group)
	case models.RoleOwner:
		bookings, err = s.svc.ListOwnerBookings(r.Context(), actor, group)
	default:
		writeError(w, http.StatusBadRequest, "role must be tenant or owner")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleBookingActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	bookingID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || bookingID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.getBooking(w, r, bookingID)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	action := parts[1]
	if action == "modification" && len(parts) == 3 {
		action = "modification/" + parts[2]
	}

	switch action {
	case "approve":
		booking, err := s.svc.ApproveBooking(r.Context(), bookingID, actor)
		s.respondBooking(w, booking, err)
	case "reject":
		booking, refund, err := s.svc.RejectBooking(r.Context(), bookingID, actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"booking": booking, "refund": refund})
	case "cancel":
		booking, refund, fee, err := s.svc.CancelBooking(r.Context(), bookingID, actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"booking": booking, "refund": refund, "fee": fee})
	case "complete":
		booking, err := s.svc.CompleteBooking(r.Context(), bookingID)
		s.respondBooking(w, booking, err)
	case "modification":
		s.requestModification(w, r, bookingID, actor)
	case "modification/approve":
		booking, err := s.svc.ApproveModification(r.Context(), bookingID, actor)
		s.respondBooking(w, booking, err)
	case "modification/reject":
		booking, err := s.svc.RejectModification(r.Context(), bookingID, actor)
		s.respondBooking(w, booking, err)
	case "rating":
		s.submitRating(w, r, bookingID, actor)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request, bookingID int64) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	booking, err := s.svc.GetBooking(r.Context(), bookingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

func (s *HTTPServer) requestModification(w http.ResponseWriter, r *http.Request, bookingID, actor int64) {
	var req modifyBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Пустые поля означают «оставить как было»
	var checkIn, checkOut time.Time
	var err error
	if req.CheckIn != "" {
		if checkIn, err = time.Parse(dateLayout, req.CheckIn); err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
			return
		}
	}
	if req.CheckOut != "" {
		if checkOut, err = time.Parse(dateLayout, req.CheckOut); err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
			return
		}
	}

	booking, err := s.svc.RequestModification(r.Context(), bookingID, actor, checkIn, checkOut, req.Guests)
	s.respondBooking(w, booking, err)
}

func (s *HTTPServer) submitRating(w http.ResponseWriter, r *http.Request, bookingID, actor int64) {
	var req ratingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rating, err := s.svc.SubmitRating(r.Context(), bookingID, actor, req.Rating, req.ReviewText)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"rating": rating})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	apartmentID, checkIn, checkOut, err := parseStayQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conflict, err := s.svc.CheckConflict(r.Context(), apartmentID, checkIn, checkOut, 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"apartment_id": apartmentID,
		"check_in":     checkIn.Format(dateLayout),
		"check_out":    checkOut.Format(dateLayout),
		"available":    !conflict,
	})
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	apartmentID, checkIn, checkOut, err := parseStayQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rent, err := s.svc.QuoteRent(r.Context(), apartmentID, checkIn, checkOut)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"apartment_id": apartmentID,
		"check_in":     checkIn.Format(dateLayout),
		"check_out":    checkOut.Format(dateLayout),
		"total_rent":   rent,
	})
}

func (s *HTTPServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.walletOperation(w, r, s.ledger.Deposit)
}

func (s *HTTPServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.walletOperation(w, r, s.ledger.Withdraw)
}

func (s *HTTPServer) walletOperation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID int64, amount decimal.Decimal) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := op(r.Context(), actor, amount); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleStatement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var from, to time.Time
	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		if from, err = time.Parse(dateLayout, raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from; expected YYYY-MM-DD")
			return
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		if to, err = time.Parse(dateLayout, raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to; expected YYYY-MM-DD")
			return
		}
	}

	path, err := s.exporter.ExportStatement(r.Context(), actor, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=statement.xlsx")
	http.ServeFile(w, r, path)
}

func (s *HTTPServer) respondBooking(w http.ResponseWriter, booking *models.Booking, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func parseStayDates(checkInRaw, checkOutRaw string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse(dateLayout, checkInRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid check_in; expected YYYY-MM-DD")
	}
	checkOut, err := time.Parse(dateLayout, checkOutRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid check_out; expected YYYY-MM-DD")
	}
	return checkIn, checkOut, nil
}

func parseStayQuery(r *http.Request) (int64, time.Time, time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("apartment_id"))
	apartmentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || apartmentID <= 0 {
		return 0, time.Time{}, time.Time{}, errors.New("apartment_id is required")
	}
	checkIn, err := parseDateParam(r, "check_in")
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	checkOut, err := parseDateParam(r, "check_out")
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	return apartmentID, checkIn, checkOut, nil
}
