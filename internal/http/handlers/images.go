package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"restyle/internal/domain"
	"restyle/internal/imaging"
	"restyle/pkg/zip"
)

type imageURLRequest struct {
	URL string `json:"url"`
}

// SessionImageUpload replaces the session's working photo. Multipart bodies
// carry the file in the "image" field; JSON bodies carry a remote {"url"}.
func (a *App) SessionImageUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		a.uploadFromMultipart(w, r, id)
		return
	}

	var req imageURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image file or url required")
		return
	}
	sess, err := a.Studio.SetImageFromURL(r.Context(), id, strings.TrimSpace(req.URL))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.Stats.RecordUpload()
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}

func (a *App) uploadFromMultipart(w http.ResponseWriter, r *http.Request, id string) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes+(1<<20))
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file required")
		return
	}
	defer file.Close()

	img, err := imaging.FromReader(file, header.Header.Get("Content-Type"), a.Config.MaxUploadBytes)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	sess, err := a.Studio.SetImage(id, img)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.Stats.RecordUpload()
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}

// HistoryImage serves one history entry as raw image bytes.
func (a *App) HistoryImage(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Studio.Session(chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index must be a number")
		return
	}
	if index < 0 || index >= len(sess.History) {
		a.domainError(w, r, domain.ErrInvalidIndex)
		return
	}
	img := sess.History[index]
	data, err := img.Bytes()
	if err != nil {
		a.domainError(w, r, domain.ErrImageUnreadable)
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// SessionExportZip bundles the whole image history into one archive.
func (a *App) SessionExportZip(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Studio.Session(chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	if len(sess.History) == 0 {
		a.domainError(w, r, domain.ErrNoActiveImage)
		return
	}

	assets := make([]zip.Asset, 0, len(sess.History))
	for i, img := range sess.History {
		data, err := img.Bytes()
		if err != nil {
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%02d%s", i+1, extensionForMIME(img.MIMEType)),
			Data:     data,
			Modified: sess.UpdatedAt,
		})
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.domainError(w, r, fmt.Errorf("archive history: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.zip", sess.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func extensionForMIME(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".img"
	}
}
