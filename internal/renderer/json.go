package renderer

import (
	"encoding/json"
	"errors"
	"io"

	pgjson "phishguard/internal/json"
	"phishguard/pkg/models"
)

var errNilReport = errors.New("report cannot be nil")

// JSONRenderer writes reports inside the API response envelope.
type JSONRenderer struct {
	Indent bool
}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{Indent: true}
}

func NewJSONRendererCompact() *JSONRenderer {
	return &JSONRenderer{Indent: false}
}

func (j *JSONRenderer) RenderURL(w io.Writer, report *models.URLReport) error {
	if report == nil {
		return errNilReport
	}
	return j.encode(w, report)
}

func (j *JSONRenderer) RenderEmail(w io.Writer, report *models.EmailReport) error {
	if report == nil {
		return errNilReport
	}
	return j.encode(w, report)
}

func (j *JSONRenderer) RenderScore(w io.Writer, target string, score models.QuickScore) error {
	return j.encode(w, scoreView{URL: target, QuickScore: score})
}

type scoreView struct {
	URL string `json:"url"`
	models.QuickScore
}

func (j *JSONRenderer) encode(w io.Writer, data any) error {
	var encoder *json.Encoder
	if j.Indent {
		encoder = pgjson.GetJsonEncoder(w)
	} else {
		encoder = json.NewEncoder(w)
	}
	return encoder.Encode(pgjson.Envelope{Success: true, Data: data})
}
