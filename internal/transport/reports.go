package transport

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/media"
	"github.com/rpggio/civicreport/internal/ratelimit"
)

const maxMultipartMemory = 32 << 20

// maxCreateBodyBytes bounds a create request: two media files at the store
// limit, base64 encoded, plus the report fields.
const maxCreateBodyBytes = 3 * media.DefaultMaxBytes

var errNoMediaStore = errors.New("media uploads are not configured")

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	reports, err := s.reports.List(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Allow(r.Context(), clientKey(r)); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) && s.metrics != nil {
			s.metrics.RateLimited()
		}
		s.writeServiceError(w, r, err)
		return
	}

	var (
		req report.CreateRequest
		err error
	)
	r.Body = http.MaxBytesReader(w, r.Body, s.maxCreate)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err = s.decodeMultipartReport(r)
	} else {
		req, err = s.decodeJSONReport(r)
	}
	if err != nil {
		s.removeMedia(req.PhotoURL, req.AudioURL)
		s.writeServiceError(w, r, err)
		return
	}

	rep, err := s.reports.Create(r.Context(), req)
	if err != nil {
		s.removeMedia(req.PhotoURL, req.AudioURL)
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

// removeMedia deletes files saved for a report that was never stored.
func (s *Server) removeMedia(urls ...*string) {
	if s.media == nil {
		return
	}
	for _, url := range urls {
		if url == nil || url == &mediaPlaceholder {
			continue
		}
		if err := s.media.Remove(*url); err != nil {
			s.logger.Warn("failed to remove orphaned media", "url", *url, "error", err)
		}
	}
}

// bodyError maps a failed body read to a service error.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return media.ErrTooLarge
	}
	return report.ErrInvalidInput
}

// mediaPlaceholder stands in for a URL while a request is validated before
// any file is written.
var mediaPlaceholder = "pending"

func (s *Server) decodeJSONReport(r *http.Request) (report.CreateRequest, error) {
	var body createReportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return report.CreateRequest{}, bodyError(err)
	}

	req := report.CreateRequest{
		Description: body.Description,
		Category:    body.Category,
		Urgency:     body.Urgency,
		Location:    body.Location,
	}
	if body.PhotoDataURL != nil && *body.PhotoDataURL != "" {
		req.PhotoURL = &mediaPlaceholder
	}
	if body.AudioDataURL != nil && *body.AudioDataURL != "" {
		req.AudioURL = &mediaPlaceholder
	}
	if err := report.ValidateCreateInput(req); err != nil {
		return req, err
	}

	var err error
	if req.PhotoURL != nil {
		if req.PhotoURL, err = s.saveDataURL(*body.PhotoDataURL, "photo"); err != nil {
			return req, err
		}
	}
	if req.AudioURL != nil {
		if req.AudioURL, err = s.saveDataURL(*body.AudioDataURL, "voice"); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (s *Server) decodeMultipartReport(r *http.Request) (report.CreateRequest, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return report.CreateRequest{}, bodyError(err)
	}

	req := report.CreateRequest{
		Description: r.FormValue("description"),
		Category:    report.Category(r.FormValue("category")),
		Urgency:     report.Urgency(r.FormValue("urgency")),
	}
	if raw := r.FormValue("location"); raw != "" && raw != "null" {
		var loc report.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return req, report.ErrInvalidInput
		}
		req.Location = &loc
	}

	photo, photoHeader, _ := r.FormFile("photo")
	audio, audioHeader, _ := r.FormFile("audio")
	defer closeFile(photo)
	defer closeFile(audio)

	if photo != nil {
		req.PhotoURL = &mediaPlaceholder
	}
	if audio != nil {
		req.AudioURL = &mediaPlaceholder
	}
	if err := report.ValidateCreateInput(req); err != nil {
		return req, err
	}

	var err error
	if photo != nil {
		if req.PhotoURL, err = s.saveUpload(photoHeader, photo); err != nil {
			return req, err
		}
	}
	if audio != nil {
		if req.AudioURL, err = s.saveUpload(audioHeader, audio); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (s *Server) saveDataURL(dataURL, base string) (*string, error) {
	if s.media == nil {
		return nil, errNoMediaStore
	}
	url, err := s.media.SaveDataURL(dataURL, base)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *Server) saveUpload(header *multipart.FileHeader, file multipart.File) (*string, error) {
	if s.media == nil {
		return nil, errNoMediaStore
	}
	url, err := s.media.Save(header.Filename, file)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func closeFile(f multipart.File) {
	if f != nil {
		f.Close()
	}
}

func (s *Server) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	var body updateReportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload", nil)
		return
	}

	rep, err := s.reports.Update(r.Context(), body.toRequest(chi.URLParam(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.reports.Get(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid query parameter: limit", nil)
			return
		}
		limit = n
	}

	entries, err := s.activity.ForReport(r.Context(), id, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
