package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hemocore/console/export"
	"github.com/hemocore/console/logging"
)

// ServeExport renders a snapshot dataset as CSV (default) or XLSX,
// chosen by ?format=
func (h *HTTPHandler) ServeExport(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, ok, err := export.Dataset(dataset, h.dataStore.GetSnapshot())
	if !ok {
		logging.Warn("Unusual user input", "dataset", dataset)
		RespondWithError(w, http.StatusNotFound,
			fmt.Sprintf("unknown dataset %q, expected one of %s", dataset, strings.Join(export.Datasets(), ", ")))
		return
	}
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	// Render fully before writing so a failure can still be answered as JSON
	var buf bytes.Buffer
	if err := export.Write(&buf, table, format, dataset); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, format.FileName(dataset, h.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
