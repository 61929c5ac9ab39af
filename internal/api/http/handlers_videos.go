package apihttp

import (
	"encoding/json"
	"net/http"

	"vodstream/internal/domain"
	"vodstream/internal/usecase"
)

type createVideoRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SourceName  string `json:"sourceName,omitempty"`
}

type updateVideoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	SourceName  *string `json:"sourceName,omitempty"`
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateVideo(w, r)
	case http.MethodGet:
		s.handleListVideos(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	if s.createVideo == nil {
		writeError(w, http.StatusNotImplemented, "not_supported", "video creation not configured")
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	record, err := s.createVideo.Execute(r.Context(), usecase.CreateVideoInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		SourceName:  req.SourceName,
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVideoSummary(record))
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatusQuery(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid status filter")
		return
	}
	limit, err := parseOptionalIntQuery(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseOptionalIntQuery(r.URL.Query().Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	records, err := s.repo.List(r.Context(), domain.VideoFilter{
		Status: status,
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}

	summaries := make([]videoSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, newVideoSummary(record))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleVideoByID(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/videos/")
	if len(segments) == 0 || segments[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "video id is required")
		return
	}
	id := domain.VideoID(segments[0])

	if len(segments) == 2 && segments[1] == "reprocess" {
		s.handleReprocess(w, r, id)
		return
	}
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetVideo(w, r, id)
	case http.MethodPatch:
		s.handleUpdateVideo(w, r, id)
	case http.MethodDelete:
		s.handleDeleteVideo(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	record, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	// Views count full detail fetches, not list rows.
	if err := s.repo.IncrementViews(r.Context(), id); err == nil {
		record.ViewCount++
	}
	writeJSON(w, http.StatusOK, newVideoSummary(record))
}

func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	if s.updateVideo == nil {
		writeError(w, http.StatusNotImplemented, "not_supported", "video update not configured")
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	record, err := s.updateVideo.Execute(r.Context(), id, usecase.UpdateVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		SourceName:  req.SourceName,
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVideoSummary(record))
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	if s.deleteVideo == nil {
		writeError(w, http.StatusNotImplemented, "not_supported", "video deletion not configured")
		return
	}
	if err := s.deleteVideo.Execute(r.Context(), id); err != nil {
		writeUseCaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReprocess(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if s.reprocess == nil {
		writeError(w, http.StatusNotImplemented, "not_supported", "reprocessing not configured")
		return
	}

	queued, err := s.reprocess.Execute(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":     id,
		"queued": queued,
	})
}
