package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/ingest"
	"GoRAGWorkshop/app/memory"
	"GoRAGWorkshop/app/parsers"
	"GoRAGWorkshop/app/storage"
)

type chatRequest struct {
	Messages []memory.Turn `json:"messages" validate:"required,min=1,dive"`
}

type chatResponse struct {
	Message memory.Turn `json:"message"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Collection string `json:"collection"`
	Mode       string `json:"mode"`
}

type historyResponse struct {
	Ingestions []storage.Ingestion `json:"ingestions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Collection: s.store.Collection(),
		Mode:       string(s.chat.Mode()),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, faults.InvalidInput("decode chat request", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, faults.InvalidInput("validate chat request", err))
		return
	}

	reply, err := s.chat.Answer(r.Context(), req.Messages)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: reply})
}

func (s *Server) handleIngestInit(w http.ResponseWriter, r *http.Request) {
	report, err := s.pipeline.IngestDir(r.Context(), s.opts.InitSplitter, s.opts.DocsDir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n := report.Failed(); n > 0 {
		s.logger.Warn("some documents were skipped", zap.Int("failed", n), zap.Int("files", len(report.Files)))
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIngest streams every file part of a multipart body through the
// pipeline. Parts without a known extension are read as PDF. Unparseable parts
// are reported per file; a backend failure fails the whole request.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, faults.InvalidInput("read multipart body", err))
		return
	}

	var report ingest.Report
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.writeError(w, r, faults.InvalidInput("read multipart part", err))
			return
		}
		if part.FileName() == "" {
			part.Close()
			continue
		}

		name := filepath.Base(part.FileName())
		n, err := s.pipeline.IngestReader(r.Context(), s.opts.UploadSplitter, name, part, parsers.PDF{})
		part.Close()

		result := ingest.FileResult{Filename: name, Segments: n}
		if err != nil {
			if !ingest.Skippable(err) {
				s.writeError(w, r, err)
				return
			}
			s.logger.Error("ingesting upload failed", zap.String("filename", name), zap.Error(err))
			result.Error = err.Error()
		}
		report.Files = append(report.Files, result)
	}

	if len(report.Files) == 0 {
		s.writeError(w, r, faults.InvalidInput("ingest", errors.New("no file parts in request")))
		return
	}
	writeJSON(w, http.StatusAccepted, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, faults.InvalidInput("list ingestions", fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}

	resp := historyResponse{Ingestions: []storage.Ingestion{}}
	if s.ledger != nil {
		found, err := s.ledger.ListIngestions(r.Context(), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if found != nil {
			resp.Ingestions = found
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
