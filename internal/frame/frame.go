// internal/frame/frame.go
//
// Wire format of the frame protocol.
// Responsibilities:
//   - Decode the JSON body a frame client POSTs when a button is pressed.
//   - Describe a frame response (image, buttons, post URL, opaque state).
//   - Render that response as the HTML meta tags frame clients read.
//
// Notes:
//   - Signatures in trustedData are not verified; the fid from
//     untrustedData is taken as the player's identity.
//   - A request without a body is an initial render (status "initial").

package frame

import (
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/http"

	"github.com/robalobadob/rps-frame/assets"
)

// Protocol limits.
const (
	MaxButtons    = 4
	MaxStateBytes = 4096
	AspectRatio   = "1.91:1"
)

// Render statuses, used by the image to pick its background.
const (
	StatusInitial  = "initial"
	StatusResponse = "response"
)

var (
	// ErrBadRequest wraps any failure to decode a frame action body.
	ErrBadRequest = errors.New("bad frame request")
	// ErrInvalidFrame reports a response that violates protocol limits.
	ErrInvalidFrame = errors.New("invalid frame")
)

// UntrustedData is the client-asserted part of a frame action.
type UntrustedData struct {
	FID         int64  `json:"fid"`
	URL         string `json:"url"`
	MessageHash string `json:"messageHash"`
	Timestamp   int64  `json:"timestamp"`
	Network     int    `json:"network"`
	ButtonIndex int    `json:"buttonIndex"`
	InputText   string `json:"inputText"`
	State       string `json:"state"`
}

// TrustedData carries the signed message; kept for completeness.
type TrustedData struct {
	MessageBytes string `json:"messageBytes"`
}

// Request is a decoded frame action. The zero value is an initial render.
type Request struct {
	UntrustedData UntrustedData `json:"untrustedData"`
	TrustedData   TrustedData   `json:"trustedData"`

	// Status is StatusInitial when no action body was sent.
	Status string `json:"-"`
}

// Identified reports whether the request carries a player identity.
func (r *Request) Identified() bool { return r.UntrustedData.FID > 0 }

// ParseRequest decodes the frame action in r's body. GET requests and empty
// bodies yield an initial request.
func ParseRequest(r *http.Request) (*Request, error) {
	req := &Request{Status: StatusInitial}
	if r.Method == http.MethodGet || r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrBadRequest, err)
	}
	if len(body) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	req.Status = StatusResponse
	return req, nil
}

// Button is a post action shown under the image.
type Button struct {
	Label  string
	Target string
}

// Frame is everything a frame response carries.
type Frame struct {
	Title       string
	Image       string
	AspectRatio string
	PostURL     string
	State       string
	Buttons     []Button
}

// Validate checks protocol limits.
func (f *Frame) Validate() error {
	if f.Image == "" {
		return fmt.Errorf("%w: missing image", ErrInvalidFrame)
	}
	if len(f.Buttons) > MaxButtons {
		return fmt.Errorf("%w: %d buttons (max %d)", ErrInvalidFrame, len(f.Buttons), MaxButtons)
	}
	if len(f.State) > MaxStateBytes {
		return fmt.Errorf("%w: state is %d bytes (max %d)", ErrInvalidFrame, len(f.State), MaxStateBytes)
	}
	return nil
}

// Renderer writes frames and image cards from the embedded templates.
type Renderer struct {
	t *htmltemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := assets.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// Frame writes f as an HTML document.
func (r *Renderer) Frame(w io.Writer, f Frame) error {
	if f.AspectRatio == "" {
		f.AspectRatio = AspectRatio
	}
	if err := f.Validate(); err != nil {
		return err
	}
	return r.t.ExecuteTemplate(w, "frame.html.tmpl", f)
}

// Card is the content of the frame image.
type Card struct {
	Text     string
	Gradient bool
}

// Card writes c as an SVG document.
func (r *Renderer) Card(w io.Writer, c Card) error {
	return r.t.ExecuteTemplate(w, "card.svg.tmpl", c)
}
