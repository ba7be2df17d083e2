package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// multipartMemory is how much of a multipart body is held in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

type answerResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

type defenseResponse struct {
	DefenseStrategy string `json:"defense_strategy"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type corpusResponse struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Passages   int       `json:"passages"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`
}

type corporaResponse struct {
	Corpora []corpusResponse `json:"corpora"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleAskExisting(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.ports.Ask.AskExisting(r.Context(), fields["query"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer.Text, Source: answer.Source})
}

func (s *Server) handleAskUpload(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw, err := readUpload(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.ports.Ask.AskUpload(r.Context(), fields["query"], raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer.Text, FileID: answer.FileID})
}

func (s *Server) handleAskContext(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.ports.Ask.AskContext(r.Context(), fields["query"], fields["file_id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer.Text, FileID: answer.FileID})
}

func (s *Server) handleDefendCase(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw, err := readUpload(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.ports.Ask.DefendCase(r.Context(), raw, fields["description"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, defenseResponse{DefenseStrategy: answer.Text})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.ports.Ask.Chat(r.Context(), fields["query"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: answer.Text})
}

func (s *Server) handleCorpora(w http.ResponseWriter, r *http.Request) {
	resp := corporaResponse{Corpora: []corpusResponse{}}
	if s.ports.Corpora != nil {
		corpora, err := s.ports.Corpora.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, c := range corpora {
			resp.Corpora = append(resp.Corpora, corpusResponse{
				Key:        c.Key,
				Name:       c.Name,
				Kind:       string(c.Kind),
				Passages:   c.Passages,
				Model:      c.Model,
				Dimensions: c.Dimensions,
				CreatedAt:  c.CreatedAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// parseFields reads the text fields of a request. Multipart, urlencoded and
// JSON object bodies are accepted.
func (s *Server) parseFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	fields := make(map[string]string)

	switch mediaType {
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if tooLarge(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidInput, err)
		}
		for k, v := range body {
			if str, ok := v.(string); ok {
				fields[k] = str
			}
		}
		return fields, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if tooLarge(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: invalid form: %v", domain.ErrInvalidInput, err)
		}

	default:
		if err := r.ParseForm(); err != nil {
			if tooLarge(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: invalid form: %v", domain.ErrInvalidInput, err)
		}
	}

	for k := range r.Form {
		fields[k] = r.Form.Get(k)
	}
	return fields, nil
}

// readUpload returns the "file" part of a parsed multipart request. A missing
// file is an input error when required and nil otherwise.
func readUpload(r *http.Request, required bool) (*domain.RawDocument, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		if required {
			return nil, fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
		}
		return nil, nil
	}

	header := r.MultipartForm.File["file"][0]
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(content) == 0 {
		if required {
			return nil, fmt.Errorf("%w: uploaded file %s is empty", domain.ErrInvalidInput, header.Filename)
		}
		return nil, nil
	}

	mimeType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil || mimeType == "application/octet-stream" {
		mimeType = ""
	}
	return domain.NewRawDocument(header.Filename, mimeType, content), nil
}

func tooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes)
}
