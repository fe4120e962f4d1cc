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

type PublishersHandler struct {
	DB *store.DB
}

type PublisherRequest struct {
	Name         string              `json:"name" validate:"required,max=200"`
	Description  string              `json:"description" validate:"max=5000"`
	FoundedYear  int                 `json:"foundedYear"`
	Headquarters models.Headquarters `json:"headquarters"`
	Website      string              `json:"website" validate:"omitempty,url"`
	Email        string              `json:"email" validate:"omitempty,email"`
	Genres       []string            `json:"genres"`
	Imprints     []models.Imprint    `json:"imprints"`
	Status       string              `json:"status"`
}

func (req *PublisherRequest) enumFieldErrors() []FieldError {
	var fields []FieldError
	checkEnumSet(&fields, "genres", req.Genres, models.Genres)
	checkEnum(&fields, "status", req.Status, models.PublisherStatuses)
	if req.FoundedYear != 0 {
		if req.FoundedYear < models.FoundedYearMin || req.FoundedYear > time.Now().Year() {
			fields = append(fields, FieldError{Field: "foundedYear", Message: "must be between 1400 and the current year"})
		}
	}
	return fields
}

func (h *PublishersHandler) List(w http.ResponseWriter, r *http.Request) {
	p := store.ParseListParams(r.URL.Query())
	publishers, pagination, err := h.DB.ListPublishers(r.Context(), p)
	if err != nil {
		writeDegradedList(w, "publishers", p.Page, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: publishers, Count: pagination.Count, Pagination: pagination})
}

func (h *PublishersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "publisher not found")
		return
	}
	publisher, err := h.DB.PublisherByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "publisher not found")
		return
	}
	writeJSON(w, http.StatusOK, publisher)
}

func (h *PublishersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PublisherRequest
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
		status = models.PublisherActive
	}
	now := time.Now()
	publisher := &models.Publisher{
		Name:         req.Name,
		Description:  req.Description,
		FoundedYear:  req.FoundedYear,
		Headquarters: req.Headquarters,
		Website:      req.Website,
		Email:        req.Email,
		Genres:       req.Genres,
		Imprints:     req.Imprints,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := h.DB.InsertPublisher(r.Context(), publisher)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to create publisher")
		return
	}
	publisher.ID = id
	writeJSON(w, http.StatusCreated, publisher)
}

func (h *PublishersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "publisher not found")
		return
	}
	var req PublisherRequest
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
		"name":         req.Name,
		"description":  req.Description,
		"foundedYear":  req.FoundedYear,
		"headquarters": req.Headquarters,
		"website":      req.Website,
		"email":        req.Email,
		"genres":       req.Genres,
		"imprints":     req.Imprints,
	}
	if req.Status != "" {
		set["status"] = req.Status
	}
	if err := h.DB.UpdatePublisher(r.Context(), id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "publisher not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to update publisher")
		return
	}
	publisher, err := h.DB.PublisherByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "publisher not found")
		return
	}
	writeJSON(w, http.StatusOK, publisher)
}

// Delete removes a publisher and clears the reference on its books
// (publisher is optional on a book, so the books stay).
func (h *PublishersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "publisher not found")
		return
	}
	if err := h.DB.DeletePublisher(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "publisher not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to delete publisher")
		return
	}
	if err := h.DB.UnsetBookPublisher(r.Context(), id); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to detach publisher books")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
