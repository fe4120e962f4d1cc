package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/booknest/backend/middleware"
	"github.com/booknest/backend/models"
	"github.com/booknest/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersHandler struct {
	DB *store.DB
}

// Me returns the authenticated user's profile.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.DB.UserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type UpdateMeRequest struct {
	DisplayName *string             `json:"displayName" validate:"omitempty,max=100"`
	Preferences *models.Preferences `json:"preferences"`
}

// UpdateMe changes the user's display name and preferences.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.Preferences != nil {
		var fields []FieldError
		checkEnumSet(&fields, "preferences.favoriteGenres", req.Preferences.FavoriteGenres, models.Genres)
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}
	}
	if err := h.DB.UpdateUserProfile(r.Context(), userID, req.DisplayName, req.Preferences); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to update profile")
		return
	}
	user, err := h.DB.UserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// bookIDParam resolves the {bookId} path parameter to an existing book.
func (h *UsersHandler) bookIDParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookId"))
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	if _, err := h.DB.BookByID(r.Context(), id); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

func (h *UsersHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookID, err := h.bookIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err := h.DB.AddFavorite(r.Context(), userID, bookID); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to add favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err := h.DB.RemoveFavorite(r.Context(), userID, bookID); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateReading upserts the reading-history entry for a book.
func (h *UsersHandler) UpdateReading(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookID, err := h.bookIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	var entry models.ReadingEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	var fields []FieldError
	if !models.In(models.ReadingStatuses, entry.Status) {
		fields = append(fields, FieldError{Field: "status", Message: "must be one of the allowed values"})
	}
	if entry.Progress < 0 || entry.Progress > 100 {
		fields = append(fields, FieldError{Field: "progress", Message: "must be between 0 and 100"})
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	entry.BookID = bookID
	if err := h.DB.UpsertReadingEntry(r.Context(), userID, entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to update reading history")
		return
	}
	user, err := h.DB.UserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
