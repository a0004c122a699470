package upload

import (
	"net/http"
	"strconv"
)

// OptionsV1 advertises protocol capabilities
func (h *HandlerV1) OptionsV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderTusVersion, TusVersion)
	w.Header().Set(HeaderTusExtension, TusExtension)

	maxSize, err := h.uploadService.MaxSize(r.Context())
	if err != nil {
		h.logger.Warn("could not read max upload size", "error", err)
	} else if maxSize > 0 {
		w.Header().Set(HeaderTusMaxSize, strconv.FormatInt(maxSize, 10))
	}
	w.WriteHeader(http.StatusNoContent)
}
