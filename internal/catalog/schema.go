package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	missionDef cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile mission schema: %w", err)
			return
		}
		missionDef = v.LookupPath(cue.ParsePath("#Mission"))
		if !missionDef.Exists() {
			schemaErr = fmt.Errorf("mission schema has no #Mission definition")
		}
	})
	return schemaCtx, missionDef, schemaErr
}

// CheckSchema validates one mission file against the embedded CUE schema.
// Unknown fields, missing required fields and out-of-enum values are reported
// as ValidationErrors with code ErrSchema.
func CheckSchema(filename string, data []byte) []ValidationError {
	ctx, def, err := loadSchema()
	if err != nil {
		return []ValidationError{{Field: filename, Message: err.Error(), Code: ErrSchema}}
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return []ValidationError{{Field: filename, Message: err.Error(), Code: ErrSchema}}
	}

	v := def.Unify(ctx.BuildFile(file))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return schemaErrors(filename, err)
	}
	return nil
}

// schemaErrors flattens a CUE error list, keeping position info.
func schemaErrors(filename string, err error) []ValidationError {
	var out []ValidationError
	for _, e := range errors.Errors(err) {
		ve := ValidationError{
			Field:   filename,
			Message: e.Error(),
			Code:    ErrSchema,
		}
		if path := e.Path(); len(path) > 0 {
			ve.Field = fmt.Sprintf("%s:%s", filename, strings.Join(path, "."))
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: filename, Message: err.Error(), Code: ErrSchema})
	}
	return out
}
