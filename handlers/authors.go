package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/booknest/backend/models"
	"github.com/booknest/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthorsHandler struct {
	DB *store.DB
}

type AuthorRequest struct {
	FirstName   string            `json:"firstName" validate:"required,max=100"`
	LastName    string            `json:"lastName" validate:"required,max=100"`
	PenName     string            `json:"penName" validate:"max=100"`
	Biography   string            `json:"biography" validate:"max=5000"`
	BirthDate   *time.Time        `json:"birthDate"`
	DeathDate   *time.Time        `json:"deathDate"`
	Nationality string            `json:"nationality" validate:"max=100"`
	Website     string            `json:"website" validate:"omitempty,url"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Genres      []string          `json:"genres"`
	Languages   []string          `json:"languages"`
	Awards      []models.Award    `json:"awards"`
	SocialMedia map[string]string `json:"socialMedia"`
	Status      string            `json:"status"`
}

func (req *AuthorRequest) enumFieldErrors() []FieldError {
	var fields []FieldError
	checkEnumSet(&fields, "genres", req.Genres, models.Genres)
	checkEnumSet(&fields, "languages", req.Languages, models.Languages)
	checkEnum(&fields, "status", req.Status, models.AuthorStatuses)
	if req.BirthDate != nil && req.DeathDate != nil && req.DeathDate.Before(*req.BirthDate) {
		fields = append(fields, FieldError{Field: "deathDate", Message: "must be after birthDate"})
	}
	return fields
}

func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := store.ParseListParams(r.URL.Query())
	authors, pagination, err := h.DB.ListAuthors(r.Context(), p)
	if err != nil {
		writeDegradedList(w, "authors", p.Page, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: authors, Count: pagination.Count, Pagination: pagination})
}

func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	author, err := h.DB.AuthorByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if fields := req.enumFieldErrors(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	status := req.Status
	if status == "" {
		status = models.AuthorActive
	}
	now := time.Now()
	author := &models.Author{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PenName:     req.PenName,
		Biography:   req.Biography,
		BirthDate:   req.BirthDate,
		DeathDate:   req.DeathDate,
		Nationality: req.Nationality,
		Website:     req.Website,
		Email:       req.Email,
		Genres:      req.Genres,
		Languages:   req.Languages,
		Awards:      req.Awards,
		SocialMedia: req.SocialMedia,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := h.DB.InsertAuthor(r.Context(), author)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to create author")
		return
	}
	author.ID = id
	writeJSON(w, http.StatusCreated, author)
}

func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	var req AuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if fields := req.enumFieldErrors(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	set := bson.M{
		"firstName":   req.FirstName,
		"lastName":    req.LastName,
		"penName":     req.PenName,
		"biography":   req.Biography,
		"birthDate":   req.BirthDate,
		"deathDate":   req.DeathDate,
		"nationality": req.Nationality,
		"website":     req.Website,
		"email":       req.Email,
		"genres":      req.Genres,
		"languages":   req.Languages,
		"awards":      req.Awards,
		"socialMedia": req.SocialMedia,
	}
	if req.Status != "" {
		set["status"] = req.Status
	}
	if err := h.DB.UpdateAuthor(r.Context(), id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "author not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to update author")
		return
	}
	author, err := h.DB.AuthorByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	writeJSON(w, http.StatusOK, author)
}

// Delete refuses to remove an author who still has books (restrict
// policy); the author's reviews are removed with them.
func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	n, err := h.DB.AuthorBookCount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to delete author")
		return
	}
	if n > 0 {
		writeError(w, http.StatusConflict, "author still has books")
		return
	}
	if err := h.DB.DeleteAuthor(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "author not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to delete author")
		return
	}
	target := models.ReviewTarget{Kind: models.TargetAuthor, ID: id}
	if _, err := h.DB.DeleteReviewsForTarget(r.Context(), target); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to delete author reviews")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
