package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-chat-builder/internal/ingest"
	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/session"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

// maxUploadBytes caps imported resume files.
const maxUploadBytes = 10 << 20

func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}
	sess, err := s.manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Session not found")
		} else {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to load session: "+err.Error())
		}
		return nil, false
	}
	return sess, true
}

// handleCreateSession starts a new conversation with an empty resume.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Create(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create session: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.SessionResponse{
		SessionID: sess.ID.String(),
		Document:  sess.Document(),
	})
}

// handleGetSession returns the session with its current document.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, types.SessionResponse{
		SessionID: sess.ID.String(),
		Document:  sess.Document(),
	})
}

// handleGetResume returns just the current resume document.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Document())
}

// handleSendMessage processes one conversational turn.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req types.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	result, err := s.manager.HandleMessage(r.Context(), sess.ID, req.Message)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Model call failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, turnResponse(sess, result))
}

// handleImport converts an uploaded resume into a structured document.
// Accepts either a JSON body with extracted text or a multipart upload
// with a "file" part (pdf, docx, txt, md).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	text, ok := s.importText(w, r)
	if !ok {
		return
	}

	result, err := s.manager.ImportText(r.Context(), sess.ID, text)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Model call failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, turnResponse(sess, result))
}

func (s *Server) importText(w http.ResponseWriter, r *http.Request) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid multipart body")
			return "", false
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Missing 'file' upload")
			return "", false
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Failed to read upload")
			return "", false
		}
		text, err := ingest.ExtractText(header.Filename, data)
		if err != nil {
			s.errorResponse(w, http.StatusUnprocessableEntity, "Failed to extract text: "+err.Error())
			return "", false
		}
		return text, true
	}

	var req types.ImportResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return "", false
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return "", false
	}
	return req.Text, true
}

// handleReset clears the session document back to empty.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	doc, err := s.manager.Reset(r.Context(), sess.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to reset session: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, types.SessionResponse{
		SessionID: sess.ID.String(),
		Document:  doc,
	})
}

func turnResponse(sess *session.Session, result pipeline.TurnResult) types.TurnResponse {
	doc := result.Document
	if doc == nil {
		doc = sess.Document()
	}
	return types.TurnResponse{
		SessionID: sess.ID.String(),
		Reply:     result.Reply,
		Applied:   result.Applied(),
		Code:      string(result.Code),
		Warnings:  result.Warnings,
		Document:  doc,
	}
}
