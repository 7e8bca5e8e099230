package api

import (
	"encoding/json"
	"net/http"

	"github.com/abcd5251/PawXAI/internal/tags"
)

// FilterHandler exposes the tag-dataset filters.
type FilterHandler struct {
	snapshot *tags.Snapshot
}

// NewFilterHandler creates a FilterHandler over a loaded snapshot.
func NewFilterHandler(snapshot *tags.Snapshot) *FilterHandler {
	return &FilterHandler{snapshot: snapshot}
}

type filterTagsRequest struct {
	Tags []string `json:"tags"`
}

type filterCountRequest struct {
	Count int `json:"count"`
}

type filterResponse struct {
	NumKOL  int          `json:"num_kol"`
	Results []tags.Entry `json:"results"`
}

func writeFilterResults(w http.ResponseWriter, results []tags.Entry) {
	if results == nil {
		results = []tags.Entry{}
	}
	writeJSON(w, http.StatusOK, filterResponse{NumKOL: len(results), Results: results})
}

func (h *FilterHandler) byTags(field tags.TagField) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterTagsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeFilterResults(w, h.snapshot.FilterByTags(field, req.Tags, true))
	}
}

func (h *FilterHandler) byMinCount(field tags.CountField) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterCountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeFilterResults(w, h.snapshot.FilterByMinCount(field, req.Count))
	}
}

// Combined handles POST /filter/combined.
func (h *FilterHandler) Combined(w http.ResponseWriter, r *http.Request) {
	var criteria tags.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeFilterResults(w, h.snapshot.FilterCombined(criteria))
}

// Register mounts all filter routes on the mux.
func (h *FilterHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /filter/ecosystem_tags", h.byTags(tags.FieldEcosystemTags))
	mux.HandleFunc("POST /filter/language_tags", h.byTags(tags.FieldLanguageTags))
	mux.HandleFunc("POST /filter/user_type_tags", h.byTags(tags.FieldUserTypeTags))
	mux.HandleFunc("POST /filter/followers_count", h.byMinCount(tags.FieldFollowersCount))
	mux.HandleFunc("POST /filter/friends_count", h.byMinCount(tags.FieldFriendsCount))
	mux.HandleFunc("POST /filter/kol_followers_count", h.byMinCount(tags.FieldKOLFollowersCount))
	mux.HandleFunc("POST /filter/combined", h.Combined)
}
