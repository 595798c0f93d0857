package querysql

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/schema"
)

// Param is one named query parameter with its declared column type.
type Param struct {
	Name  string
	Value ir.IRValue
	Type  schema.SQLType
}

// Params is an insertion-ordered parameter table.
//
// Params values are copy-on-write: with returns a new table and never
// modifies the receiver.
type Params struct {
	order  []string
	byName map[string]Param
}

// Len returns the number of parameters.
func (p Params) Len() int {
	return len(p.order)
}

// Names returns parameter names in registration order.
func (p Params) Names() []string {
	return slices.Clone(p.order)
}

// Get looks up a parameter by name.
func (p Params) Get(name string) (Param, bool) {
	param, ok := p.byName[name]
	return param, ok
}

// All returns parameters in registration order.
func (p Params) All() []Param {
	out := make([]Param, len(p.order))
	for i, name := range p.order {
		out[i] = p.byName[name]
	}
	return out
}

// Args converts the table to native Go values for named binding.
func (p Params) Args() (map[string]any, error) {
	args := make(map[string]any, len(p.order))
	for _, name := range p.order {
		v, err := ir.Native(p.byName[name].Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		args[name] = v
	}
	return args, nil
}

// Types returns the declared type of every parameter.
func (p Params) Types() map[string]string {
	types := make(map[string]string, len(p.order))
	for _, name := range p.order {
		types[name] = string(p.byName[name].Type)
	}
	return types
}

// nextName returns column, or column_1, column_2, ... whichever is free.
func (p Params) nextName(column string) string {
	if _, taken := p.byName[column]; !taken {
		return column
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", column, i)
		if _, taken := p.byName[name]; !taken {
			return name
		}
	}
}

func (p Params) with(param Param) Params {
	out := Params{
		order:  append(slices.Clone(p.order), param.Name),
		byName: make(map[string]Param, len(p.byName)+1),
	}
	for k, v := range p.byName {
		out.byName[k] = v
	}
	out.byName[param.Name] = param
	return out
}

// bindValue converts a literal for a column of type typ.
// NULL binds to any column type.
func bindValue(value any, typ schema.SQLType) (ir.IRValue, error) {
	v, err := ir.FromGo(value)
	if err != nil {
		return nil, queryErr(ErrCodeUnsupportedValue, "%v", err)
	}
	if _, isNull := v.(ir.IRNull); isNull {
		return v, nil
	}

	want, err := schema.ParamType(typ)
	if err != nil {
		return nil, err
	}
	native, err := ir.Native(v)
	if err != nil {
		return nil, queryErr(ErrCodeUnsupportedValue, "%v", err)
	}
	if got := reflect.TypeOf(native); got != want {
		return nil, queryErr(ErrCodeUnsupportedValue,
			"cannot bind %s to %s column", got, typ)
	}
	return v, nil
}
