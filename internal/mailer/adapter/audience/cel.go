// Package audience compiles campaign audience expressions.
//
// An expression is a CEL boolean over a single variable, user, with the keys
// id, name, email, role, createdAt (timestamp) and workspaceCount (int):
//
//	user.role == "admin" && user.createdAt > timestamp("2024-01-01T00:00:00Z")
package audience

import (
	"fmt"
	"time"

	authmodel "edwin/internal/auth/domain/model"
	apperrors "edwin/internal/shared/errors"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// Filter is a compiled audience expression.
type Filter struct {
	program cel.Program
}

// Compiler builds Filters from source. Safe for concurrent use.
type Compiler struct {
	env *cel.Env
}

// NewCompiler creates the CEL environment shared by every expression.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("user", decls.NewMapType(decls.String, decls.Dyn)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

// Compile parses and checks expr. Anything that is not a boolean expression
// is reported as a validation error.
func (c *Compiler) Compile(expr string) (*Filter, error) {
	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperrors.NewValidationError("invalid audience expression").
			WithDetail("expression", issues.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperrors.NewValidationError("audience expression must evaluate to a boolean")
	}
	program, err := c.env.Program(ast)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid audience expression").WithDetail("expression", err.Error())
	}
	return &Filter{program: program}, nil
}

// Facts is the user variable an expression sees.
func Facts(u *authmodel.User) map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID.Hex(),
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"createdAt":      u.CreatedAt.UTC().Truncate(time.Millisecond),
		"workspaceCount": len(u.Workspaces),
	}
}

// Match evaluates the filter for one user. Evaluation errors, such as a
// missing key, count as no match.
func (f *Filter) Match(u *authmodel.User) bool {
	out, _, err := f.program.Eval(map[string]interface{}{"user": Facts(u)})
	if err != nil {
		return false
	}
	ok, isBool := out.Value().(bool)
	return isBool && ok
}
