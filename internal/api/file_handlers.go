package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"metastor/internal/apperr"
	"metastor/internal/database"
	"metastor/internal/metrics"
	"metastor/internal/models"
	"metastor/internal/quota"
	"metastor/internal/storage"

	"github.com/go-chi/chi/v5"
)

const (
	EventFileUploaded = "file.uploaded"
	EventFileRenamed  = "file.renamed"
	EventFileDeleted  = "file.deleted"

	listFilesLimit     = 10
	maxIDRetries       = 5
	multipartMemory    = 32 << 20
	multipartOverhead  = 1 << 20
	defaultContentType = "application/octet-stream"
)

type UploadedFile struct {
	ID        string    `json:"id" example:"V1StGXR8_Z5jdHi6B-myT"`
	FileName  string    `json:"fileName" example:"report.pdf"`
	CID       string    `json:"cid"`
	Size      string    `json:"size" example:"1048576"`
	Timestamp time.Time `json:"timestamp"`
}

type UploadResponse struct {
	Success      bool         `json:"success" example:"true"`
	File         UploadedFile `json:"file"`
	StorageUsed  string       `json:"storageUsed" example:"1048576"`
	StorageLimit string       `json:"storageLimit" example:"104857600"`
}

type FilesResponse struct {
	Files []models.File `json:"files"`
}

type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}

type RenameRequest struct {
	NewName string `json:"newName" validate:"required,min=1,max=255" example:"renamed.pdf"`
}

type RenameResponse struct {
	Success bool         `json:"success" example:"true"`
	File    *models.File `json:"file"`
}

func uploadTooLarge(limit, size int64) error {
	return apperr.QuotaExceeded(fmt.Sprintf("file of %d bytes exceeds the %d byte upload limit", size, limit))
}

// @Summary      Upload a file
// @Description  Checks the upload against the storage quota of the current plan, then stores the bytes and records the metadata.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      200   {object}  UploadResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      413   {object}  QuotaExceededResponse
// @Router       /upload [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	maxBytes := s.config.Storage.MaxUploadBytes

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, uploadTooLarge(maxBytes, r.ContentLength))
			return
		}
		s.writeError(w, r, apperr.MalformedInput("error parsing multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, handler, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, apperr.MalformedInput("no file provided"))
		return
	}
	defer file.Close()

	if handler.Size > maxBytes {
		s.writeError(w, r, uploadTooLarge(maxBytes, handler.Size))
		return
	}

	admission, err := s.subscriptions.Admit(r.Context(), claims.AccountID, uint64(handler.Size))
	if err != nil {
		var exceeded *quota.ExceededError
		if errors.As(err, &exceeded) {
			metrics.RecordUploadAdmission(quota.Deny.String(), exceeded.Tier.String())
		}
		s.writeError(w, r, err)
		return
	}
	defer admission.Release()
	metrics.RecordUploadAdmission(quota.Allow.String(), admission.Plan.Tier.String())

	cid, size, err := s.blobs.Put(r.Context(), file)
	if err != nil {
		s.writeError(w, r, apperr.UpstreamUnavailable("content store", err))
		return
	}

	mimeType := handler.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = defaultContentType
	}

	var stored *models.File
	for i := 0; i < maxIDRetries; i++ {
		stored, err = s.store.CreateFile(r.Context(), database.CreateFileParams{
			ID:        s.newFileID(),
			AccountID: claims.AccountID,
			FileName:  handler.Filename,
			CID:       cid,
			Size:      size,
			MimeType:  mimeType,
		})
		if !errors.Is(err, database.ErrDuplicateFileID) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			s.writeError(w, r, apperr.NotFound("account"))
			return
		}
		s.writeError(w, r, apperr.Internal("failed to create file record", err))
		return
	}
	metrics.RecordUploadedBytes(size)

	// Admission was computed from the multipart header size.
	used := admission.Used - uint64(handler.Size) + uint64(size)

	s.notify(r, EventFileUploaded, stored)

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		File: UploadedFile{
			ID:        stored.ID,
			FileName:  stored.FileName,
			CID:       stored.CID,
			Size:      strconv.FormatInt(stored.Size, 10),
			Timestamp: stored.Timestamp,
		},
		StorageUsed:  strconv.FormatUint(used, 10),
		StorageLimit: strconv.FormatUint(admission.Plan.StorageLimitBytes, 10),
	})
}

// @Summary      List files
// @Description  Returns the ten newest files of the account, or only their count with count=true.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        count  query     bool  false  "Return only the number of files"
// @Success      200    {object}  FilesResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /files [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	if r.URL.Query().Get("count") == "true" {
		n, err := s.store.CountFiles(r.Context(), claims.AccountID)
		if err != nil {
			s.writeError(w, r, apperr.Internal("failed to count files", err))
			return
		}
		writeJSON(w, http.StatusOK, CountResponse{Count: n})
		return
	}

	files, err := s.store.ListFiles(r.Context(), claims.AccountID, listFilesLimit)
	if err != nil {
		s.writeError(w, r, apperr.Internal("failed to list files", err))
		return
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: files})
}

// @Summary      Rename a file
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id             path      string         true  "File ID"
// @Param        renameRequest  body      RenameRequest  true  "New name"
// @Success      200            {object}  RenameResponse
// @Failure      400            {object}  ErrorResponse
// @Failure      404            {object}  ErrorResponse
// @Router       /files/{id} [patch]
func (s *Server) RenameFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "id")

	var req RenameRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	file, err := s.store.RenameFile(r.Context(), fileID, claims.AccountID, req.NewName)
	if err != nil {
		s.writeError(w, r, apperr.Internal("failed to rename file", err))
		return
	}
	if file == nil {
		s.writeError(w, r, apperr.NotFound("file"))
		return
	}

	s.notify(r, EventFileRenamed, file)
	writeJSON(w, http.StatusOK, RenameResponse{Success: true, File: file})
}

// @Summary      Delete a file
// @Description  Marks the file deleted. Deleted files no longer count towards storage usage.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "File ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /files/{id} [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "id")

	deleted, err := s.store.SoftDeleteFile(r.Context(), fileID, claims.AccountID)
	if err != nil {
		s.writeError(w, r, apperr.Internal("failed to delete file", err))
		return
	}
	if !deleted {
		s.writeError(w, r, apperr.NotFound("file"))
		return
	}

	s.notify(r, EventFileDeleted, map[string]string{"id": fileID})
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// @Summary      Download a blob
// @Description  Streams the content for a content id with its stored mimetype.
// @Tags         files
// @Produce      octet-stream
// @Param        cid       query     string  true   "Content id"
// @Param        filename  query     string  false  "Send as attachment with this name"
// @Success      200       {file}    binary
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /proxy [get]
func (s *Server) ProxyHandler(w http.ResponseWriter, r *http.Request) {
	cid := r.URL.Query().Get("cid")
	if cid == "" {
		s.writeError(w, r, apperr.MalformedInput("cid is required"))
		return
	}

	blob, err := s.blobs.Get(r.Context(), cid)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidCID):
			s.writeError(w, r, apperr.MalformedInput("invalid cid"))
		case errors.Is(err, storage.ErrBlobNotFound):
			s.writeError(w, r, apperr.NotFound("blob"))
		default:
			s.writeError(w, r, apperr.UpstreamUnavailable("content store", err))
		}
		return
	}
	defer blob.Close()

	mimeType := defaultContentType
	if meta, err := s.store.GetFileByCID(r.Context(), cid); err == nil && meta != nil && meta.MimeType != "" {
		mimeType = meta.MimeType
	}

	w.Header().Set("Content-Type", mimeType)
	if filename := r.URL.Query().Get("filename"); filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}

	if _, err := io.Copy(w, blob); err != nil {
		s.log.Warn().Err(err).Str("cid", cid).Msg("blob stream interrupted")
	}
}

func (s *Server) notify(r *http.Request, eventType string, payload any) {
	if s.notifier == nil {
		return
	}
	claims := GetUserFromContext(r.Context())
	s.notifier.Notify(r.Context(), claims.AccountID, eventType, payload)
}
