package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mediastore/internal/apperr"
	"github.com/starford/mediastore/internal/journal"
	"github.com/starford/mediastore/internal/media"
)

const defaultMaxUploadBytes = 50 << 20 // 50 MB

// Handler holds the media route handlers.
type Handler struct {
	model     *media.Model
	maxUpload int64
}

// NewHandler creates a new Handler.
func NewHandler(model *media.Model, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Handler{model: model, maxUpload: maxUpload}
}

// mediaPath extracts the media-relative path from the wildcard segment,
// percent-decoded exactly once. chi routes on r.URL.RawPath when it is set
// (e.g. blog%2Fcover.png), so only then is the segment still escaped.
func mediaPath(r *http.Request) string {
	seg := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return "/" + seg
	}
	decoded, err := url.PathUnescape(seg)
	if err != nil {
		decoded = seg
	}
	return "/" + decoded
}

// List handles GET /list/*.
//
//	@Summary		List one page of a media folder
//	@Tags			media
//	@Produce		json
//	@Param			path	path		string	false	"Folder relative to the media root"
//	@Param			cursor	query		string	false	"Offset from the previous page"
//	@Param			limit	query		string	false	"Page size (default 20)"
//	@Success		200		{object}	ListingPage
//	@Failure		403		{object}	auth.Decision
//	@Security		BearerAuth
//	@Router			/list/{path} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := h.model.List(r.Context(), media.ListArgs{
		SearchPath: mediaPath(r),
		Cursor:     q.Get("cursor"),
		Limit:      q.Get("limit"),
	})
	writeJSON(w, http.StatusOK, page)
}

// Delete handles DELETE /*.
//
//	@Summary		Delete a media file or folder
//	@Tags			media
//	@Produce		json
//	@Param			path	path		string	true	"File or folder relative to the media root"
//	@Success		200		{object}	MutationResult
//	@Failure		403		{object}	auth.Decision
//	@Security		BearerAuth
//	@Router			/{path} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.model.Delete(r.Context(), mediaPath(r)))
}

// Upload handles POST /upload/* (multipart/form-data, field "file"). The
// file part is streamed into the model's sink without buffering.
//
//	@Summary		Upload a media file
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			path	path		string	true	"Target file relative to the media root"
//	@Param			file	formData	file	true	"File content"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	MessageResponse
//	@Failure		403		{object}	auth.Decision
//	@Failure		413		{object}	MessageResponse
//	@Failure		500		{object}	MessageResponse
//	@Security		BearerAuth
//	@Router			/upload/{path} [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	target := mediaPath(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	mr, err := r.MultipartReader()
	if err != nil {
		h.uploadFailed(w, target, err)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, messageBody(apperr.ErrNoFile))
			return
		}
		if err != nil {
			h.uploadFailed(w, target, err)
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		err = h.store(r, target, part)
		_ = part.Close()
		if err != nil {
			h.uploadFailed(w, target, err)
			return
		}
		writeJSON(w, http.StatusOK, UploadResponse{Success: true})
		return
	}
}

// store pipes one part into a fresh sink. The sink is aborted on any copy
// error so no partial file is left behind.
func (h *Handler) store(r *http.Request, target string, part io.Reader) error {
	sink, err := h.model.UploadStream(r.Context(), target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(sink, part); err != nil {
		sink.Abort()
		return err
	}
	return sink.Close()
}

func (h *Handler) uploadFailed(w http.ResponseWriter, target string, err error) {
	slog.Error("upload failed", slog.String("path", target), slog.String("error", err.Error()))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, messageBody(err))
		return
	}
	writeJSON(w, http.StatusInternalServerError, messageBody(err))
}

// JournalHandler serves GET /api/journal?limit=N.
//
//	@Summary		Recent media modifications
//	@Tags			journal
//	@Produce		json
//	@Param			limit	query		int	false	"Number of entries (default 50)"
//	@Success		200		{object}	JournalResponse
//	@Failure		403		{object}	auth.Decision
//	@Security		BearerAuth
//	@Router			/journal [get]
func JournalHandler(db *journal.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := db.Recent(r.Context(), limit)
		if err != nil {
			slog.Error("journal read failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, JournalResponse{Entries: entries})
	}
}
