package handler

import "net/http"

// DocsHandler serves the assembled API description.
//
// The document is stitched together from YAML fragments once at startup;
// after that it's immutable, so the handler just re-encodes the same value
// on every request.
type DocsHandler struct {
	doc map[string]any
}

// NewDocsHandler creates a DocsHandler for an already-assembled document.
func NewDocsHandler(doc map[string]any) *DocsHandler {
	return &DocsHandler{doc: doc}
}

// HandleGet returns the full API description as JSON.
//
// HTTP: GET /api-docs/spec
func (h *DocsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.doc)
}
