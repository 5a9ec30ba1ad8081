package v1handler

import (
	"contactfinder/pkg/domain"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ContactRequest is the body of a lookup request.
type ContactRequest struct {
	Company string
}

// DecodeContactRequest reads {"company": "..."}. Unknown fields are ignored;
// a missing or non-string company is an error. Blankness is left to the
// lookup itself.
func DecodeContactRequest(r io.Reader) (ContactRequest, error) {
	var (
		req  ContactRequest
		seen bool
	)

	d := jx.Decode(r, 512)
	if d.Next() != jx.Object {
		return req, errors.New("body must be a JSON object")
	}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "company" {
			return d.Skip()
		}
		if d.Next() != jx.String {
			return errors.New("company must be a string")
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "company")
		}
		req.Company, seen = v, true

		return nil
	}); err != nil {
		return req, errors.Wrap(err, "decode request")
	}
	if !seen {
		return req, errors.New("company is required")
	}

	return req, nil
}

// EncodeBundle renders a bundle with every category present, members sorted.
func EncodeBundle(b *domain.ContactBundle) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("website")
	e.Str(b.Website)
	for _, c := range domain.Categories() {
		e.FieldStart(string(c))
		e.ArrStart()
		for _, v := range b.Set(c).Sorted() {
			e.Str(v)
		}
		e.ArrEnd()
	}
	e.ObjEnd()

	return e.Bytes()
}

// EncodeError renders {"code": ..., "message": ...}.
func EncodeError(res ErrorResponse) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Str(res.Code)
	e.FieldStart("message")
	e.Str(res.Message)
	e.ObjEnd()

	return e.Bytes()
}
