package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mshailja29/revisionAI/internal/models"
	"github.com/mshailja29/revisionAI/internal/session"
)

const maxMultipartMemory = 8 << 20 // 8 MB

// StudyBuilder produces study materials for one input. It is fail-soft: the
// result is always structurally valid, so handlers never need their own
// pipeline error handling.
type StudyBuilder interface {
	Build(ctx context.Context, src models.Source, title string) models.StudyMaterials
}

type Server struct {
	mux      *http.ServeMux
	builder  StudyBuilder
	sessions *session.Manager
}

func NewServer(builder StudyBuilder, sessions *session.Manager) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		builder:  builder,
		sessions: sessions,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/study", s.handleCreateStudy)
	s.mux.HandleFunc("/api/study/", s.handleStudyActions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateStudy accepts one input per request: an uploaded PDF in the
// "file" field or a URL in the "url" field. The pipeline runs synchronously;
// the response always carries a structurally valid materials object.
func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	data, filename, rawURL, title, err := readStudyInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := models.DescribeSource(data, filename, rawURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if title == "" {
		title = defaultTitle(src)
	}

	materials := s.builder.Build(r.Context(), src, title)
	state := s.sessions.Create(title, materials)

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleStudyActions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/study/")
	path = strings.Trim(path, "/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		s.handleGetStudy(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "quiz":
		s.handleQuizAnswer(w, r, parts[0], parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	state, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type quizAnswerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request, id, indexStr string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}

	var payload quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	answer, err := s.sessions.RecordAnswer(id, index, payload.Answer)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, session.ErrNoQuestion):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// readStudyInput pulls the uploaded bytes or URL out of the request form.
// Multipart is used for uploads, urlencoded forms work for URL-only requests.
func readStudyInput(r *http.Request) (data []byte, filename, rawURL, title string, err error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, "", "", "", fmt.Errorf("invalid multipart form")
		}
		if form := r.MultipartForm; form != nil {
			defer form.RemoveAll()
		}

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err = io.ReadAll(file)
			if err != nil {
				return nil, "", "", "", fmt.Errorf("read uploaded file")
			}
			filename = header.Filename
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, "", "", "", fmt.Errorf("invalid form")
		}
	}

	return data, filename, r.FormValue("url"), strings.TrimSpace(r.FormValue("title")), nil
}

func defaultTitle(src models.Source) string {
	if src.Kind == models.SourceUpload && src.Filename != "" {
		return src.Filename
	}
	return "Document"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
