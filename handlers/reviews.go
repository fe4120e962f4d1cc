package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/booknest/backend/middleware"
	"github.com/booknest/backend/models"
	"github.com/booknest/backend/service"
	"github.com/booknest/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewsHandler struct {
	DB      *store.DB
	Ratings *service.Recalculator
	Mailer  *service.Mailer
}

type ReviewRequest struct {
	Title      string `json:"title" validate:"max=200"`
	Content    string `json:"content" validate:"max=5000"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	TargetKind string `json:"targetKind" validate:"required"`
	TargetID   string `json:"targetId" validate:"required"`
}

// ReviewResponse is a review with its reviewer reference populated.
type ReviewResponse struct {
	models.Review
	Reviewer *models.ReviewerSummary `json:"reviewer,omitempty"`
}

// resolveTarget parses and verifies a review target: the kind must be
// book or author and the entity must exist.
func (h *ReviewsHandler) resolveTarget(r *http.Request, kind, idHex string) (models.ReviewTarget, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return models.ReviewTarget{}, store.ErrNotFound
	}
	target := models.ReviewTarget{Kind: models.TargetKind(kind), ID: id}
	if err := target.Validate(); err != nil {
		return models.ReviewTarget{}, err
	}
	switch target.Kind {
	case models.TargetBook:
		_, err = h.DB.BookByID(r.Context(), id)
	case models.TargetAuthor:
		_, err = h.DB.AuthorByID(r.Context(), id)
	}
	if err != nil {
		return models.ReviewTarget{}, store.ErrNotFound
	}
	return target, nil
}

func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := store.ParseListParams(r.URL.Query())
	reviews, pagination, err := h.DB.ListReviews(r.Context(), p)
	if err != nil {
		writeDegradedList(w, "reviews", p.Page, err)
		return
	}
	items, err := h.populate(r, reviews)
	if err != nil {
		writeDegradedList(w, "reviews", p.Page, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Count: pagination.Count, Pagination: pagination})
}

func (h *ReviewsHandler) populate(r *http.Request, reviews []models.Review) ([]ReviewResponse, error) {
	userIDs := make([]primitive.ObjectID, 0, len(reviews))
	for _, rv := range reviews {
		userIDs = append(userIDs, rv.UserID)
	}
	reviewers, err := h.DB.ReviewerSummariesByIDs(r.Context(), userIDs)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		item := ReviewResponse{Review: rv}
		if s, ok := reviewers[rv.UserID]; ok {
			item.Reviewer = &s
		}
		items = append(items, item)
	}
	return items, nil
}

func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	review, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	items, err := h.populate(r, []models.Review{*review})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load review")
		return
	}
	writeJSON(w, http.StatusOK, items[0])
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	target, err := h.resolveTarget(r, req.TargetKind, req.TargetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review target not found")
			return
		}
		writeFieldErrors(w, []FieldError{{Field: "targetKind", Message: err.Error()}})
		return
	}
	now := time.Now()
	review := &models.Review{
		Title:     req.Title,
		Content:   req.Content,
		Rating:    req.Rating,
		Target:    target,
		UserID:    userID,
		Status:    models.ReviewPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := h.DB.InsertReview(r.Context(), review)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "you have already reviewed this "+string(target.Kind))
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to create review")
		return
	}
	review.ID = id
	go h.Ratings.OnReviewMutation(review, service.ReviewCreated, nil)
	writeJSON(w, http.StatusCreated, ReviewResponse{Review: *review})
}

// Update lets the review's owner or a moderator change title, content,
// rating, or target. When the target moves, both the old and new
// targets get their aggregates recomputed.
func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	existing, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	if existing.UserID != userID && !middleware.IsModerator(r.Context()) {
		writeError(w, http.StatusForbidden, "only the reviewer or a moderator may edit a review")
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	target, err := h.resolveTarget(r, req.TargetKind, req.TargetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review target not found")
			return
		}
		writeFieldErrors(w, []FieldError{{Field: "targetKind", Message: err.Error()}})
		return
	}
	set := bson.M{
		"title":      req.Title,
		"content":    req.Content,
		"rating":     req.Rating,
		"targetKind": target.Kind,
		"targetId":   target.ID,
	}
	if err := h.DB.UpdateReview(r.Context(), id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "you have already reviewed this "+string(target.Kind))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to update review")
		return
	}
	review, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	prev := existing.Target
	go h.Ratings.OnReviewMutation(review, service.ReviewUpdated, &prev)
	writeJSON(w, http.StatusOK, ReviewResponse{Review: *review})
}

// Delete removes a review (owner or moderator) and recomputes the
// target's aggregate.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	existing, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	if existing.UserID != userID && !middleware.IsModerator(r.Context()) {
		writeError(w, http.StatusForbidden, "only the reviewer or a moderator may delete a review")
		return
	}
	if err := h.DB.DeleteReview(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to delete review")
		return
	}
	go h.Ratings.OnReviewMutation(existing, service.ReviewDeleted, nil)
	w.WriteHeader(http.StatusNoContent)
}

type ModerationRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=1000"`
}

// Moderate sets a review's moderation status. Status changes move the
// review in or out of the Published set, so the target's aggregate is
// recomputed afterwards. The reviewer is notified by mail when they
// opted in.
func (h *ReviewsHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	var req ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if !models.In(models.ReviewStatuses, req.Status) {
		writeFieldErrors(w, []FieldError{{Field: "status", Message: "must be one of the allowed values"}})
		return
	}
	moderatorID, _ := middleware.UserIDFromContext(r.Context())
	now := time.Now()
	set := bson.M{
		"status":           req.Status,
		"moderatedBy":      moderatorID,
		"moderatedAt":      now,
		"moderationReason": req.Reason,
	}
	if err := h.DB.UpdateReview(r.Context(), id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to moderate review")
		return
	}
	review, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	go h.Ratings.OnReviewMutation(review, service.ReviewUpdated, nil)
	go h.notifyReviewer(review)
	writeJSON(w, http.StatusOK, ReviewResponse{Review: *review})
}

// notifyReviewer mails the review's owner about the moderation
// decision. Best effort only.
func (h *ReviewsHandler) notifyReviewer(review *models.Review) {
	if !h.Mailer.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	user, err := h.DB.UserByID(ctx, review.UserID)
	if err != nil || user.Email == "" || !user.Preferences.EmailNotifications {
		return
	}
	if err := h.Mailer.SendModerationNotice(user.Email, review.Title, review.Status, review.ModerationReason); err != nil {
		log.Printf("reviews: moderation notice to %s: %v", user.Email, err)
	}
}

// Helpful increments the review's helpful-vote counter.
func (h *ReviewsHandler) Helpful(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	if err := h.DB.IncrementHelpfulVotes(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to record vote")
		return
	}
	review, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	writeJSON(w, http.StatusOK, ReviewResponse{Review: *review})
}
