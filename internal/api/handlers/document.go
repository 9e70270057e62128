package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/cloo-solutions/paperchat/internal/api"
	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/service"
	"github.com/go-chi/chi/v5"
)

type DocumentService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*service.UploadOutput, error)
	Delete(ctx context.Context, filename string) (*service.DeleteOutput, error)
	List(ctx context.Context) ([]*domain.Document, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	SizeBytes  int64  `json:"size_bytes"`
	ModifiedAt string `json:"modified_at"`
}

type UploadResponse struct {
	Document     *DocumentResponse `json:"document"`
	IndexWarning string            `json:"index_warning,omitempty"`
}

type DeleteResponse struct {
	Deleted      string `json:"deleted"`
	IndexWarning string `json:"index_warning,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*DocumentResponse `json:"documents"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		Filename:   d.Name,
		Format:     string(d.Format),
		SizeBytes:  d.Size,
		ModifiedAt: d.ModifiedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	out, err := h.svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadResponse{
		Document:     documentToResponse(out.Document),
		IndexWarning: out.IndexWarning,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, documentToResponse(d))
	}

	api.Success(w, http.StatusOK, ListDocumentsResponse{Documents: items})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	out, err := h.svc.Delete(r.Context(), filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteResponse{
		Deleted:      filename,
		IndexWarning: out.IndexWarning,
	})
}
