package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/coolbeans/creditai/pkg/report"
	"github.com/coolbeans/creditai/pkg/violation"
)

const (
	maxBodyBytes = 5 << 20
	maxLimit     = 50
	asOfLayout   = "2006-01-02"
)

const (
	codeBadRequest       = "bad_request"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeTooLarge         = "request_too_large"
	codeInternal         = "internal_error"
)

type parseRequest struct {
	Text string `json:"text"`
}

type reviewRequest struct {
	Text string `json:"text"`
	AsOf string `json:"as_of,omitempty"`
}

type reviewResponse struct {
	Report     *report.ParsedCreditReport `json:"report"`
	Violations []violation.Violation      `json:"violations"`
	AsOf       string                     `json:"as_of"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.parser.ParseText(req.Text))
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	asOf := s.now().UTC()
	if req.AsOf != "" {
		t, err := time.Parse(asOfLayout, req.AsOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = t
	}

	parsed := s.parser.ParseText(req.Text)
	writeJSON(w, http.StatusOK, reviewResponse{
		Report:     parsed,
		Violations: violation.Review(parsed, asOf),
		AsOf:       asOf.Format(asOfLayout),
	})
}

func (s *Server) handleStandardize(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "name is required")
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.StandardizeCreditorName(name))
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "name is required")
		return
	}

	limit := creditor.DefaultMatchLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be between 1 and "+strconv.Itoa(maxLimit))
			return
		}
		limit = n
	}

	matches := s.resolver.FindPotentialMatches(name, limit)
	if matches == nil {
		matches = []creditor.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleListCreditors(w http.ResponseWriter, r *http.Request) {
	types := creditor.AllTypes
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := creditor.Type(strings.ToLower(raw))
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, codeBadRequest, "unknown creditor type "+strconv.Quote(raw))
			return
		}
		types = []creditor.Type{t}
	}

	out := make([]creditor.Identity, 0)
	for _, t := range types {
		out = append(out, s.resolver.CreditorsByType(t)...)
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
