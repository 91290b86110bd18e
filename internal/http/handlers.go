package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"voice-archive-search/internal/app"
	"voice-archive-search/internal/models"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/service/eval"
	"voice-archive-search/internal/service/retrieval"
	"voice-archive-search/internal/service/stt"
	"voice-archive-search/internal/service/transcription"
	"voice-archive-search/internal/session"
)

// maxUploadBytes caps a single audio upload.
const maxUploadBytes = 100 << 20

// Handler implements the /v1 API on top of the application pipelines.
type Handler struct {
	app *app.Application
	log zerolog.Logger
}

// NewHandler creates the API handler.
func NewHandler(application *app.Application) *Handler {
	return &Handler{
		app: application,
		log: logging.WithComponent("http"),
	}
}

// UploadArchive ingests one audio file: transcribe, segment, redact,
// embed, index. The raw audio is the request body; `file` names it and
// `session` groups uploads into one archive batch (generated if absent).
//
//	POST /v1/archives?file=call.wav&session=batch-7
func (h *Handler) UploadArchive(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: file")
		return
	}

	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "audio exceeds upload limit")
		return
	}

	sess := h.app.Sessions.GetOrCreate(r.URL.Query().Get("session"))

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = stt.GuessMimeType(file)
	}

	segments, err := h.app.Transcriber.TranscribeBuffer(r.Context(), audio, mimeType, file, sess.ID)
	if err != nil {
		if errors.Is(err, transcription.ErrEmptyAudio) {
			writeError(w, http.StatusBadRequest, "audio is empty or unreadable")
			return
		}
		h.recordFailure(sess.ID, file, err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	indexed := 0
	if len(segments) > 0 {
		indexed, err = h.app.Indexer.IndexSegments(r.Context(), segments)
		if err != nil {
			h.recordFailure(sess.ID, file, err)
			writeError(w, http.StatusBadGateway, "indexing failed")
			return
		}
	}

	_ = h.app.Sessions.RecordFile(sess.ID, session.FileStatus{
		File:     file,
		Segments: len(segments),
		Indexed:  indexed,
	})
	final, _ := h.app.Sessions.Finish(sess.ID)

	body := map[string]any{
		"session":  final.ID,
		"state":    final.State,
		"file":     file,
		"segments": len(segments),
		"indexed":  indexed,
	}
	if len(segments) == 0 {
		body["message"] = "no speech detected in the audio"
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) recordFailure(sessionID, file string, err error) {
	_ = h.app.Sessions.RecordFile(sessionID, session.FileStatus{File: file, Error: err.Error()})
	_, _ = h.app.Sessions.Finish(sessionID)
}

// searchResponse is the wire shape for search and evaluation retrieval.
type searchResponse struct {
	Query     string         `json:"query"`
	TopK      int            `json:"topK"`
	Threshold float64        `json:"threshold"`
	Session   string         `json:"session,omitempty"`
	Matches   []models.Match `json:"matches"`
}

// Search runs ranked semantic retrieval over the archive.
//
//	GET /v1/search?q=refund&top_k=5&threshold=0.3&session=batch-7
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := parseSearchRequest(w, r)
	if !ok {
		return
	}

	matches, err := h.app.Searcher.Search(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("query", req.Query).Msg("Search failed")
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:     req.Query,
		TopK:      req.TopK,
		Threshold: req.Threshold,
		Session:   req.Session,
		Matches:   matches,
	})
}

func parseSearchRequest(w http.ResponseWriter, r *http.Request) (retrieval.Request, bool) {
	q := r.URL.Query()

	req := retrieval.Request{
		Query:   q.Get("q"),
		Session: q.Get("session"),
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: q")
		return req, false
	}

	if v := q.Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return req, false
		}
		req.TopK = n
	}
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "threshold must be a number")
			return req, false
		}
		req.Threshold = f
	}
	return req, true
}

// evaluateRequest scores retrieval quality against a hand-labelled gold
// set. GoldIDs accepts newline- or comma-separated IDs. Either Query
// (run a live search) or PredIDs (score an existing ranking) is required.
type evaluateRequest struct {
	Query     string   `json:"query"`
	PredIDs   []string `json:"predIds"`
	GoldIDs   string   `json:"goldIds"`
	TopK      int      `json:"topK"`
	Threshold float64  `json:"threshold"`
	Session   string   `json:"session,omitempty"`
}

type evaluateResponse struct {
	Query        string   `json:"query"`
	K            int      `json:"k"`
	NDCG         float64  `json:"ndcg"`
	Recall       float64  `json:"recall"`
	MRR          float64  `json:"mrr"`
	PredictedIDs []string `json:"predictedIds"`
	GoldSize     int      `json:"goldSize"`
}

// Evaluate runs a search and reports nDCG@k, Recall@k and MRR against
// the provided gold IDs.
//
//	POST /v1/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" && len(req.PredIDs) == 0 {
		writeError(w, http.StatusBadRequest, "either query or predIds is required")
		return
	}
	gold := eval.ParseGoldIDs(req.GoldIDs)
	if len(gold) == 0 {
		writeError(w, http.StatusBadRequest, "missing required field: goldIds")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	predIDs := req.PredIDs
	if len(predIDs) == 0 {
		matches, err := h.app.Searcher.Search(r.Context(), retrieval.Request{
			Query:     req.Query,
			TopK:      req.TopK,
			Threshold: req.Threshold,
			Session:   req.Session,
		})
		if err != nil {
			h.log.Error().Err(err).Str("query", req.Query).Msg("Evaluation search failed")
			writeError(w, http.StatusBadGateway, "search failed")
			return
		}
		predIDs = make([]string, len(matches))
		for i, m := range matches {
			predIDs[i] = m.ID
		}
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Query:        req.Query,
		K:            req.TopK,
		NDCG:         eval.NDCGAtK(predIDs, gold, req.TopK),
		Recall:       eval.RecallAtK(predIDs, gold, req.TopK),
		MRR:          eval.MRR(predIDs, gold),
		PredictedIDs: predIDs,
		GoldSize:     len(gold),
	})
}

// GetSession returns the ingestion status of one session.
//
//	GET /v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := h.app.Sessions.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
