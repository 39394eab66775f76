package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matsen/paperdash/internal/wordfreq"
)

// viewQuery holds the presentation parameters accepted by / and /api/words.
type viewQuery struct {
	Mode string `query:"mode" validate:"omitempty,oneof=bar cloud"`
	N    *int   `query:"n" validate:"omitempty,gte=5,lte=50"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use query parameter names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("query"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// parseViewQuery reads and validates mode and n.
func (s *Server) parseViewQuery(r *http.Request) (viewQuery, error) {
	values := r.URL.Query()
	q := viewQuery{Mode: strings.ToLower(strings.TrimSpace(values.Get("mode")))}

	if raw := strings.TrimSpace(values.Get("n")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("n must be an integer")
		}
		q.N = &n
	}

	if err := s.validate.Struct(q); err != nil {
		return q, formatValidationError(err)
	}
	return q, nil
}

// wordsRequest fills the analysis request from the query and server defaults.
func (s *Server) wordsRequest(q viewQuery) wordfreq.Request {
	req := wordfreq.Request{
		Mode:      s.opts.Mode,
		TopN:      s.opts.TopN,
		Stopwords: s.opts.Stopwords,
		Cloud:     s.opts.Cloud,
	}
	if q.Mode != "" {
		// Already checked by oneof.
		req.Mode, _ = wordfreq.ParseMode(q.Mode)
	}
	if q.N != nil {
		req.TopN = *q.N
	}
	return req
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
