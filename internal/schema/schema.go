// Package schema checks configurations against the CUE definition of the
// canonical model. The normalizer's output always passes; the check exists
// for hand-edited canonical records and for the validate command.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

//go:embed schema.cue
var schemaSource string

// Violation is one schema failure.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Checker validates configurations against #Config.
// A cue.Context is not safe for concurrent use, so Check serializes calls.
type Checker struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// NewChecker compiles the embedded schema.
func NewChecker() (*Checker, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile schema: #Config not defined")
	}
	return &Checker{ctx: ctx, def: def}, nil
}

// Check returns every violation found, sorted by path. An empty result
// means the configuration is canonical.
func (c *Checker) Check(cfg form.Config) []Violation {
	c.mu.Lock()
	defer c.mu.Unlock()

	val := c.ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return []Violation{{Message: fmt.Sprintf("encode: %v", err)}}
	}

	err := c.def.Unify(val).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var violations []Violation
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		violations = append(violations, v)
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Path < violations[j].Path
	})
	return violations
}
