package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/booknest/backend/models"
	"github.com/booknest/backend/service"
	"github.com/booknest/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BooksHandler struct {
	DB      *store.DB
	Covers  *service.CoverStorage
	Ratings *service.Recalculator
}

type BookRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	ISBN        string    `json:"isbn" validate:"omitempty,min=10,max=17"`
	Description string    `json:"description" validate:"max=5000"`
	AuthorID    string    `json:"authorId" validate:"required"`
	PublisherID string    `json:"publisherId"`
	PublishDate time.Time `json:"publishDate" validate:"required"`
	Genres      []string  `json:"genres"`
	Language    string    `json:"language"`
	PageCount   int       `json:"pageCount" validate:"gte=0"`
	Format      string    `json:"format"`
	Price       float64   `json:"price" validate:"gte=0"`
	CoverURL    string    `json:"coverUrl"`
	CoverKey    string    `json:"coverKey"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
}

// BookResponse is a book with its owner references populated.
type BookResponse struct {
	models.Book
	Author    *models.AuthorSummary    `json:"author,omitempty"`
	Publisher *models.PublisherSummary `json:"publisher,omitempty"`
}

// enumFieldErrors validates the closed enumerations of a book payload.
func (req *BookRequest) enumFieldErrors() []FieldError {
	var fields []FieldError
	checkEnumSet(&fields, "genres", req.Genres, models.Genres)
	checkEnum(&fields, "language", req.Language, models.Languages)
	checkEnum(&fields, "format", req.Format, models.BookFormats)
	checkEnum(&fields, "status", req.Status, models.BookStatuses)
	return fields
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	p := store.ParseListParams(r.URL.Query())
	books, pagination, err := h.DB.ListBooks(r.Context(), p)
	if err != nil {
		writeDegradedList(w, "books", p.Page, err)
		return
	}
	items, err := h.populate(r, books)
	if err != nil {
		writeDegradedList(w, "books", p.Page, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Count: pagination.Count, Pagination: pagination})
}

// populate resolves the author and publisher references of a page of
// books into summaries with one batched fetch per collection.
func (h *BooksHandler) populate(r *http.Request, books []models.Book) ([]BookResponse, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(books))
	var publisherIDs []primitive.ObjectID
	for _, b := range books {
		authorIDs = append(authorIDs, b.AuthorID)
		if b.PublisherID != nil {
			publisherIDs = append(publisherIDs, *b.PublisherID)
		}
	}
	authors, err := h.DB.AuthorSummariesByIDs(r.Context(), authorIDs)
	if err != nil {
		return nil, err
	}
	publishers, err := h.DB.PublisherSummariesByIDs(r.Context(), publisherIDs)
	if err != nil {
		return nil, err
	}
	items := make([]BookResponse, 0, len(books))
	for _, b := range books {
		item := BookResponse{Book: b}
		if a, ok := authors[b.AuthorID]; ok {
			item.Author = &a
		}
		if b.PublisherID != nil {
			if p, ok := publishers[*b.PublisherID]; ok {
				item.Publisher = &p
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	items, err := h.populate(r, []models.Book{*book})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load book")
		return
	}
	writeJSON(w, http.StatusOK, items[0])
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
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
	authorID, err := primitive.ObjectIDFromHex(req.AuthorID)
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	if _, err := h.DB.AuthorByID(r.Context(), authorID); err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	var publisherID *primitive.ObjectID
	if req.PublisherID != "" {
		pid, err := primitive.ObjectIDFromHex(req.PublisherID)
		if err != nil {
			writeError(w, http.StatusNotFound, "publisher not found")
			return
		}
		if _, err := h.DB.PublisherByID(r.Context(), pid); err != nil {
			writeError(w, http.StatusNotFound, "publisher not found")
			return
		}
		publisherID = &pid
	}

	status := req.Status
	if status == "" {
		status = models.BookPublished
	}
	now := time.Now()
	book := &models.Book{
		Title:       req.Title,
		ISBN:        req.ISBN,
		Description: req.Description,
		AuthorID:    authorID,
		PublisherID: publisherID,
		PublishDate: req.PublishDate,
		Genres:      req.Genres,
		Language:    req.Language,
		PageCount:   req.PageCount,
		Format:      req.Format,
		Price:       req.Price,
		CoverURL:    req.CoverURL,
		CoverS3Key:  req.CoverKey,
		Tags:        req.Tags,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := h.DB.InsertBook(r.Context(), book)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "a book with this ISBN already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to create book")
		return
	}
	book.ID = id
	go h.Ratings.OnBookMutation(authorID, nil)
	writeJSON(w, http.StatusCreated, BookResponse{Book: *book})
}

// updateDoc builds the field updates for a book edit. An empty ISBN
// clears the field entirely: the sparse unique index skips absent isbn
// values but two empty strings would collide.
func (req *BookRequest) updateDoc(authorID primitive.ObjectID, publisherID *primitive.ObjectID) (set, unset bson.M) {
	set = bson.M{
		"title":       req.Title,
		"description": req.Description,
		"authorId":    authorID,
		"publishDate": req.PublishDate,
		"genres":      req.Genres,
		"language":    req.Language,
		"pageCount":   req.PageCount,
		"format":      req.Format,
		"price":       req.Price,
		"coverUrl":    req.CoverURL,
		"tags":        req.Tags,
	}
	unset = bson.M{}
	if req.ISBN != "" {
		set["isbn"] = req.ISBN
	} else {
		unset["isbn"] = ""
	}
	if req.Status != "" {
		set["status"] = req.Status
	}
	if req.CoverKey != "" {
		set["coverS3Key"] = req.CoverKey
	}
	if publisherID != nil {
		set["publisherId"] = *publisherID
	}
	return set, unset
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	existing, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	var req BookRequest
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
	authorID, err := primitive.ObjectIDFromHex(req.AuthorID)
	if err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	if _, err := h.DB.AuthorByID(r.Context(), authorID); err != nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	if req.ISBN != "" {
		inUse, err := h.DB.ISBNInUse(r.Context(), req.ISBN, id)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "failed to update book")
			return
		}
		if inUse {
			writeError(w, http.StatusConflict, "a book with this ISBN already exists")
			return
		}
	}

	var publisherID *primitive.ObjectID
	if req.PublisherID != "" {
		pid, err := primitive.ObjectIDFromHex(req.PublisherID)
		if err != nil {
			writeError(w, http.StatusNotFound, "publisher not found")
			return
		}
		if _, err := h.DB.PublisherByID(r.Context(), pid); err != nil {
			writeError(w, http.StatusNotFound, "publisher not found")
			return
		}
		publisherID = &pid
	}
	set, unset := req.updateDoc(authorID, publisherID)
	if err := h.DB.UpdateBook(r.Context(), id, set, unset); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "a book with this ISBN already exists")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to update book")
		return
	}
	prevAuthor := existing.AuthorID
	go h.Ratings.OnBookMutation(authorID, &prevAuthor)

	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	items, err := h.populate(r, []models.Book{*book})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load book")
		return
	}
	writeJSON(w, http.StatusOK, items[0])
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	book, err := h.DB.DeleteBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to delete book")
		return
	}
	// Reviews of a deleted book go with it; the book's aggregate no
	// longer exists, so no recompute is needed for the target itself.
	target := models.ReviewTarget{Kind: models.TargetBook, ID: id}
	if _, err := h.DB.DeleteReviewsForTarget(r.Context(), target); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to delete book reviews")
		return
	}
	if h.Covers != nil && book.CoverS3Key != "" {
		if err := h.Covers.Delete(r.Context(), book.CoverS3Key); err != nil {
			log.Printf("books: delete cover %s: %v", book.CoverS3Key, err)
		}
	}
	go h.Ratings.OnBookMutation(book.AuthorID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Cover streams the book's stored cover image (public so img src works).
func (h *BooksHandler) Cover(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if book.CoverS3Key == "" || h.Covers == nil {
		writeError(w, http.StatusNotFound, "no cover")
		return
	}
	body, contentType, err := h.Covers.Get(r.Context(), book.CoverS3Key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cover")
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	io.Copy(w, body)
}
