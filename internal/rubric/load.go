// Package rubric loads the grading catalogue from its configuration artifact
// and checks it before the engine sees it.
package rubric

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/ipa-grading/internal/grading"
	"github.com/mind-engage/ipa-grading/internal/storage"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the decoder from a file name; anything that is not
// .yaml/.yml is read as JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a rubric document. YAML documents are converted to the JSON
// shape first so both formats share one set of decoding rules.
func Decode(r io.Reader, f Format) (*grading.Rubric, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rubric: read: %w", err)
	}
	if f == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("rubric: yaml: %w", err)
		}
		if raw, err = json.Marshal(stringKeys(doc)); err != nil {
			return nil, fmt.Errorf("rubric: yaml to json: %w", err)
		}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	var rb grading.Rubric
	if err := dec.Decode(&rb); err != nil {
		return nil, fmt.Errorf("rubric: decode: %w", err)
	}
	return &rb, nil
}

// stringKeys converts the mappings yaml.v3 produces for non-string keys
// (stages: {3: ...}) into string-keyed maps JSON can encode.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

// LoadFile decodes the rubric at p.
func LoadFile(p string) (*grading.Rubric, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("rubric: open: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFor(p))
}

// Load decodes the rubric stored under key.
func Load(bs storage.BlobStore, key string) (*grading.Rubric, error) {
	rc, err := bs.Get(key)
	if err != nil {
		return nil, fmt.Errorf("rubric: get %s: %w", key, err)
	}
	defer rc.Close()
	return Decode(rc, FormatFor(key))
}

// LoadLatest loads the last key under prefix in lexical order, so versions
// should be zero-padded (rubrics/v001.json, rubrics/v002.json).
func LoadLatest(bs storage.BlobStore, prefix string) (*grading.Rubric, string, error) {
	keys, err := bs.List(prefix)
	if err != nil {
		return nil, "", fmt.Errorf("rubric: list %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil, "", fmt.Errorf("rubric: no artifact under %q: %w", prefix, storage.ErrNotFound)
	}
	key := keys[len(keys)-1]
	rb, err := Load(bs, key)
	return rb, key, err
}

// Open loads a rubric either from a blob store prefix (when the path ends in
// "/") or from a single file, and validates it. Warnings are returned with
// the rubric; errors fail the load.
func Open(bs storage.BlobStore, p string) (*grading.Rubric, *Report, error) {
	var (
		rb  *grading.Rubric
		err error
	)
	switch {
	case bs != nil && strings.HasSuffix(p, "/"):
		rb, _, err = LoadLatest(bs, p)
	case bs != nil:
		rb, err = Load(bs, p)
		if errors.Is(err, storage.ErrNotFound) {
			rb, err = LoadFile(p)
		}
	default:
		rb, err = LoadFile(p)
	}
	if err != nil {
		return nil, nil, err
	}
	rep := Validate(rb)
	if err := rep.Err(); err != nil {
		return nil, rep, err
	}
	return rb, rep, nil
}
