package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
	"github.com/hyperjump/kotae/internal/models"
)

var validate = validator.New()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": len(s.documents),
		"top_k":     s.answerer.TopK(),
		"config":    s.info,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.documents
	if docs == nil {
		docs = []models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req models.RetrieveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Normalize(s.answerer.TopK()); err != nil {
		s.respondError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), err.Error())
		return
	}
	s.logger.Debug("retrieve request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	start := time.Now()
	hits, err := s.answerer.Retrieve(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.respondAppError(w, "retrieve failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.RetrieveResponse{
		Query:     req.Query,
		Hits:      hits,
		ElapsedMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Normalize(s.answerer.TopK()); err != nil {
		s.respondError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), err.Error())
		return
	}
	s.logger.Debug("answer request",
		zap.String("query", req.Query),
		zap.String("mode", string(req.Mode)),
		zap.Int("top_k", req.TopK))
	ans, err := s.answerer.Answer(r.Context(), req.Query, req.Mode, req.TopK)
	if err != nil {
		s.respondAppError(w, "answer failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, ans)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// statusForKind maps pipeline error kinds to HTTP statuses.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindModelMismatch:
		return http.StatusConflict
	case apperr.KindGenerationQuota:
		return http.StatusTooManyRequests
	case apperr.KindEmbeddingProvider, apperr.KindGenerationProvider:
		return http.StatusBadGateway
	case apperr.KindIndexEmpty, apperr.KindMissingCredential:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondAppError(w http.ResponseWriter, msg string, err error) {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.String("kind", string(kind)), zap.Error(err))
	} else {
		s.logger.Warn(msg, zap.String("kind", string(kind)), zap.Error(err))
	}
	if kind == "" {
		kind = "internal"
	}
	s.respondError(w, status, string(kind), err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, kind, message string) {
	s.respondJSON(w, status, map[string]string{"error": message, "kind": kind})
}
