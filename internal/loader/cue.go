package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
)

// loadCUE builds the CUE package in dir and parses its model definitions.
func loadCUE(dir string) ([]ModelSpec, error) {
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, loadErr(ErrCodeLoadFailed, Position{}, "no CUE instances loaded")
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err, ErrCodeLoadFailed)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}
	// Conflicts below the root only surface on validation
	if err := value.Validate(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}
	return ParseCUE(value)
}

// ParseCUE extracts model definitions from a built CUE value. Models are
// read from the top-level "model" struct; a value without one yields no
// models.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: User: { table: "users", ... }`)
//	models, err := ParseCUE(v)
func ParseCUE(root cue.Value) ([]ModelSpec, error) {
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	modelsVal := root.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, nil
	}
	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, loadErr(ErrCodeInvalidValue, cuePosition(modelsVal.Pos()), "model: expected a struct of models")
	}

	var models []ModelSpec
	for iter.Next() {
		m, err := parseCUEModel(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

func parseCUEModel(name string, v cue.Value) (ModelSpec, error) {
	m := ModelSpec{Name: name, InheritIndices: true, Pos: cuePosition(v.Pos())}
	where := "model." + name

	keys, err := cueStruct(v, modelKeys, where)
	if err != nil {
		return ModelSpec{}, err
	}

	for _, key := range keys {
		val := v.LookupPath(cue.MakePath(cue.Str(key)))
		path := where + "." + key
		switch key {
		case "table":
			m.Table, err = cueString(val, path)
		case "abstract":
			m.Abstract, err = cueBool(val, path)
		case "primary_key":
			m.PrimaryKey, err = cueStrings(val, path)
		case "parent":
			m.Parent, err = cueString(val, path)
		case "on_delete":
			m.OnDelete, err = cueString(val, path)
		case "inherit_indices":
			m.InheritIndices, err = cueBool(val, path)
		case "bases":
			m.Bases, err = cueStrings(val, path)
		case "fields":
			m.Fields, err = parseCUEFields(val, path)
		case "indices":
			m.Indices, err = parseCUEIndices(val, path)
		}
		if err != nil {
			return ModelSpec{}, err
		}
	}
	return m, nil
}

func parseCUEFields(v cue.Value, where string) ([]FieldSpec, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected a struct of fields", where)
	}

	var fields []FieldSpec
	for iter.Next() {
		name := iter.Label()
		fv := iter.Value()
		path := where + "." + name
		fs := FieldSpec{Name: name, Pos: cuePosition(fv.Pos())}

		keys, err := cueStruct(fv, fieldKeys, path)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			val := fv.LookupPath(cue.MakePath(cue.Str(key)))
			switch key {
			case "type":
				fs.Type, err = cueString(val, path+".type")
			case "length":
				fs.Length, err = cueInt(val, path+".length")
			case "nullable":
				fs.Nullable, err = cueBool(val, path+".nullable")
			}
			if err != nil {
				return nil, err
			}
		}
		if fs.Type == "" {
			return nil, loadErr(ErrCodeInvalidValue, fs.Pos, "%s: type is required", path)
		}
		fields = append(fields, fs)
	}
	return fields, nil
}

func parseCUEIndices(v cue.Value, where string) ([]IndexSpec, error) {
	list, err := v.List()
	if err != nil {
		return nil, loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected a list of indices", where)
	}

	var indices []IndexSpec
	for i := 0; list.Next(); i++ {
		iv := list.Value()
		path := fmt.Sprintf("%s[%d]", where, i)
		is := IndexSpec{Pos: cuePosition(iv.Pos())}

		keys, err := cueStruct(iv, indexKeys, path)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			val := iv.LookupPath(cue.MakePath(cue.Str(key)))
			switch key {
			case "name":
				is.Name, err = cueString(val, path+".name")
			case "columns":
				is.Columns, err = cueStrings(val, path+".columns")
			case "unique":
				is.Unique, err = cueBool(val, path+".unique")
			case "storing":
				is.Storing, err = cueStrings(val, path+".storing")
			case "interleave_in":
				is.InterleaveIn, err = cueString(val, path+".interleave_in")
			}
			if err != nil {
				return nil, err
			}
		}
		indices = append(indices, is)
	}
	return indices, nil
}

// cueStruct returns the labels of v's regular fields in declaration order,
// rejecting any label not in allowed.
func cueStruct(v cue.Value, allowed map[string]bool, where string) ([]string, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeInvalidValue)
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected a struct", where)
	}
	var keys []string
	for iter.Next() {
		label := iter.Label()
		if !allowed[label] {
			return nil, loadErr(ErrCodeUnknownKey, cuePosition(iter.Value().Pos()),
				"%s: unknown key %q", where, label)
		}
		keys = append(keys, label)
	}
	return keys, nil
}

func cueString(v cue.Value, where string) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected a string", where)
	}
	return s, nil
}

func cueBool(v cue.Value, where string) (bool, error) {
	b, err := v.Bool()
	if err != nil {
		return false, loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected a bool", where)
	}
	return b, nil
}

func cueInt(v cue.Value, where string) (int, error) {
	n, err := v.Int64()
	if err != nil {
		return 0, loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected an integer", where)
	}
	return int(n), nil
}

func cueStrings(v cue.Value, where string) ([]string, error) {
	list, err := v.List()
	if err != nil {
		return nil, loadErr(ErrCodeInvalidValue, cuePosition(v.Pos()), "%s: expected a list of strings", where)
	}
	var out []string
	for list.Next() {
		s, err := cueString(list.Value(), where)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, code string) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return loadErr(code, Position{}, "%v", err)
	}

	// Report the first error with position info
	first := errs[0]
	var pos Position
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos = cuePosition(positions[0])
	}
	return loadErr(code, pos, "%s", first.Error())
}
