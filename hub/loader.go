package hub

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MalformedInputError reports an instance that is missing, truncated or
// inconsistent with its declared size.
type MalformedInputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString("malformed input")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func malformed(reason string) *MalformedInputError {
	return &MalformedInputError{Reason: reason}
}

// Input is the structured (JSON or YAML) form of an instance.
type Input struct {
	Size      int         `json:"size" yaml:"size"`
	Alpha     float64     `json:"alpha" yaml:"alpha"`
	Flow      [][]float64 `json:"flow" yaml:"flow"`
	Cost      [][]float64 `json:"cost" yaml:"cost"`
	FixedCost []float64   `json:"fixedCost" yaml:"fixedCost"`
}

// Instance validates the input against its declared size.
func (in Input) Instance() (*Instance, error) {
	if in.Size != len(in.Flow) {
		return nil, malformed(fmt.Sprintf("declared size %d but flow has %d rows", in.Size, len(in.Flow)))
	}
	return NewInstance(in.Flow, in.Cost, in.FixedCost, in.Alpha)
}

// Load reads an instance from path. Files ending in .json, .yaml or .yml
// are decoded as Input; anything else is parsed with ParseText. Every
// failure is a *MalformedInputError.
func Load(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Reason: "cannot open", Err: err}
	}
	defer f.Close()

	var inst *Instance
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		inst, err = decodeJSON(f)
	case ".yaml", ".yml":
		inst, err = decodeYAML(f)
	default:
		inst, err = ParseText(f)
	}
	if err != nil {
		var me *MalformedInputError
		if errors.As(err, &me) {
			me.Path = path
			return nil, me
		}
		return nil, &MalformedInputError{Path: path, Reason: "cannot decode", Err: err}
	}
	return inst, nil
}

func decodeJSON(r io.Reader) (*Instance, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var in Input
	if err := dec.Decode(&in); err != nil {
		return nil, errors.Wrap(err, "json")
	}
	return in.Instance()
}

func decodeYAML(r io.Reader) (*Instance, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var in Input
	if err := dec.Decode(&in); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	return in.Instance()
}

// ParseText reads the plain text format: whitespace separated numbers in the
// order size, alpha, size*size flows, size*size costs, size fixed costs, all
// matrices row major. A '#' starts a comment that runs to the end of the
// line.
func ParseText(r io.Reader) (*Instance, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, &MalformedInputError{Reason: "cannot read", Err: err}
	}

	size, err := toks.nextInt("size")
	if err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, malformed(fmt.Sprintf("size %d, want at least 1", size))
	}
	alpha, err := toks.nextFloat("alpha")
	if err != nil {
		return nil, err
	}
	if need := 2*size*size + size; toks.remaining() < need {
		return nil, malformed(fmt.Sprintf("truncated: size %d needs %d values after alpha, found %d", size, need, toks.remaining()))
	}
	flow, err := toks.matrix("flow", size)
	if err != nil {
		return nil, err
	}
	cost, err := toks.matrix("cost", size)
	if err != nil {
		return nil, err
	}
	fixed := make([]float64, size)
	for k := range fixed {
		if fixed[k], err = toks.nextFloat(fmt.Sprintf("fixed cost %d", k)); err != nil {
			return nil, err
		}
	}
	if rest := toks.remaining(); rest > 0 {
		return nil, malformed(fmt.Sprintf("%d unexpected values after the fixed costs", rest))
	}
	return NewInstance(flow, cost, fixed, alpha)
}

type tokens struct {
	fields []string
	pos    int
}

func tokenize(r io.Reader) (*tokens, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	t := &tokens{}
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		t.fields = append(t.fields, strings.Fields(line)...)
	}
	return t, sc.Err()
}

func (t *tokens) next(what string) (string, error) {
	if t.pos >= len(t.fields) {
		return "", malformed(fmt.Sprintf("truncated: missing %s", what))
	}
	s := t.fields[t.pos]
	t.pos++
	return s, nil
}

func (t *tokens) nextInt(what string) (int, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &MalformedInputError{Reason: fmt.Sprintf("%s: %q is not an integer", what, s), Err: err}
	}
	return v, nil
}

func (t *tokens) nextFloat(what string) (float64, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &MalformedInputError{Reason: fmt.Sprintf("%s: %q is not a number", what, s), Err: err}
	}
	return v, nil
}

func (t *tokens) matrix(name string, n int) ([][]float64, error) {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			v, err := t.nextFloat(fmt.Sprintf("%s[%d][%d]", name, i, j))
			if err != nil {
				return nil, err
			}
			m[i][j] = v
		}
	}
	return m, nil
}

func (t *tokens) remaining() int { return len(t.fields) - t.pos }
