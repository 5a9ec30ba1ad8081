package v1handler

import (
	"contactfinder/pkg/serrors"
	"net/http"
)

const maxRequestBytes = 64 << 10

// ContactInfo handles POST {"company": "..."} and replies with the contact
// bundle of that company's website.
func (h Handler) ContactInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := DecodeContactRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		h.writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	bundle, err := h.deps.Finder.Find(ctx, req.Company)
	if err != nil {
		h.writeError(ctx, w, err)

		return
	}

	writeJSON(w, http.StatusOK, EncodeBundle(bundle))
}
