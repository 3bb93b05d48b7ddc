// Package form turns a submitted HTML form into a candidate record.
//
// A submission passes through fixed stages, each a plain function:
//
//	Normalize  trim and NFC-normalise values, coerce multi-valued fields to lists
//	decode     bind values onto an input struct by `form` tag
//	validate   check the raw (trimmed) input with the validation package
//	Sanitize   escape markup-significant characters in every string field
//	construct  build the record from the sanitized input
//	Branch     re-render on errors, persist otherwise
//
// Validation runs before sanitization so messages describe what the user
// typed, while only escaped values ever reach the record.
package form

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	formdecoder "github.com/go-playground/form/v4"
	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/locallibrary/internal/validation"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces markup-significant characters with HTML entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Normalize trims and NFC-normalises every value. Fields named in multi keep
// all of their values and are present as an empty list when absent; every
// other field keeps only its first value.
func Normalize(values url.Values, multi ...string) url.Values {
	out := make(url.Values, len(values)+len(multi))
	isMulti := make(map[string]bool, len(multi))
	for _, m := range multi {
		isMulti[m] = true
		out[m] = []string{}
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if !isMulti[key] {
			vals = vals[:1]
		}
		cleaned := make([]string, 0, len(vals))
		for _, v := range vals {
			cleaned = append(cleaned, norm.NFC.String(strings.TrimSpace(v)))
		}
		out[key] = cleaned
	}
	return out
}

// Sanitize escapes every exported string and []string field of the struct
// dst points to.
func Sanitize(dst any) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()

	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case f.Kind() == reflect.String:
			f.SetString(Escape(f.String()))
		case f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String:
			for j := range f.Len() {
				f.Index(j).SetString(Escape(f.Index(j).String()))
			}
		}
	}
}

// Submission is the outcome of running a form through a Pipeline.
type Submission[I, T any] struct {
	// Input holds the sanitized field values, for re-rendering the form.
	Input *I
	// Record is the candidate built from Input. It has no identity.
	Record *T
	// Errors lists validation failures in field order.
	Errors []validation.FieldError
}

// Valid reports whether the submission passed validation.
func (s *Submission[I, T]) Valid() bool {
	return len(s.Errors) == 0
}

// Pipeline processes submissions into records of type T via input type I.
type Pipeline[I, T any] struct {
	Validator *validation.Validator
	// Multi names fields that may carry several values.
	Multi []string
	// Construct builds a record from sanitized input.
	Construct func(in *I) *T

	decoder *formdecoder.Decoder
}

// NewPipeline creates a pipeline for input type I.
func NewPipeline[I, T any](v *validation.Validator, construct func(in *I) *T, multi ...string) *Pipeline[I, T] {
	return &Pipeline[I, T]{
		Validator: v,
		Multi:     multi,
		Construct: construct,
		decoder:   formdecoder.NewDecoder(),
	}
}

// Process runs values through every stage up to construction. A returned
// error means the input could not be processed at all; validation failures
// are reported in the submission instead.
func (p *Pipeline[I, T]) Process(values url.Values) (*Submission[I, T], error) {
	values = Normalize(values, p.Multi...)

	in := new(I)
	if err := p.decoder.Decode(in, values); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}

	var fieldErrs []validation.FieldError
	if err := p.Validator.Validate(in); err != nil {
		fieldErrs = validation.Fields(err)
		if fieldErrs == nil {
			return nil, fmt.Errorf("validate form: %w", err)
		}
	}

	Sanitize(in)

	return &Submission[I, T]{
		Input:  in,
		Record: p.Construct(in),
		Errors: fieldErrs,
	}, nil
}

// Branch calls invalid when the submission has errors and valid with the
// candidate record otherwise.
func Branch[I, T, R any](s *Submission[I, T], invalid func(*Submission[I, T]) (R, error), valid func(*T) (R, error)) (R, error) {
	if !s.Valid() {
		return invalid(s)
	}
	return valid(s.Record)
}
