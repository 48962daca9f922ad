// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package air

import (
	"fmt"
	"strings"

	"github.com/consensys/go-zkevm/pkg/util/field"
)

// Expr is a node of an arithmetic expression graph over trace cells.  An
// expression refers to cells of two adjacent rows (the "local" row and the
// "next" row) by column index, and can be evaluated once concrete values for
// those rows are supplied.
type Expr[F field.Element[F]] interface {
	fmt.Stringer
	// EvalAt evaluates this expression given concrete values for the local
	// and next rows.
	EvalAt(local, next []F) F
	// Degree returns the total degree of this expression, viewing each cell
	// access as a variable of degree one.
	Degree() uint
}

// Access reads one cell of either the local or the next row.
type Access[F field.Element[F]] struct {
	// Column index being accessed.
	Column int
	// Next indicates the access is into the next row, rather than the local
	// one.
	Next bool
}

// Constant embeds a fixed field element.
type Constant[F field.Element[F]] struct{ Value F }

// Add represents the sum of two or more expressions.
type Add[F field.Element[F]] struct{ Args []Expr[F] }

// Sub represents the difference of exactly two expressions.
type Sub[F field.Element[F]] struct{ Lhs, Rhs Expr[F] }

// Mul represents the product of two or more expressions.
type Mul[F field.Element[F]] struct{ Args []Expr[F] }

// NewAccess constructs a cell access for the local row.
func NewAccess[F field.Element[F]](column int) Expr[F] {
	return &Access[F]{Column: column}
}

// NewNextAccess constructs a cell access for the next row.
func NewNextAccess[F field.Element[F]](column int) Expr[F] {
	return &Access[F]{Column: column, Next: true}
}

// NewConstant constructs a constant expression from a uint64.
func NewConstant[F field.Element[F]](val uint64) Expr[F] {
	return &Constant[F]{field.Uint64[F](val)}
}

// Sum adds two expressions together, flattening nested sums as it goes.
func Sum[F field.Element[F]](lhs, rhs Expr[F]) Expr[F] {
	return &Add[F]{flatten(lhs, rhs, flattenAdd[F])}
}

// Subtract one expression from another.
func Subtract[F field.Element[F]](lhs, rhs Expr[F]) Expr[F] {
	return &Sub[F]{lhs, rhs}
}

// Product multiplies two expressions together, flattening nested products as
// it goes.
func Product[F field.Element[F]](lhs, rhs Expr[F]) Expr[F] {
	return &Mul[F]{flatten(lhs, rhs, flattenMul[F])}
}

// EvalAt implementation for the Expr interface.
func (p *Access[F]) EvalAt(local, next []F) F {
	if p.Next {
		return next[p.Column]
	}
	//
	return local[p.Column]
}

// Degree implementation for the Expr interface.
func (p *Access[F]) Degree() uint { return 1 }

func (p *Access[F]) String() string {
	if p.Next {
		return fmt.Sprintf("[%d]'", p.Column)
	}
	//
	return fmt.Sprintf("[%d]", p.Column)
}

// EvalAt implementation for the Expr interface.
func (p *Constant[F]) EvalAt(local, next []F) F { return p.Value }

// Degree implementation for the Expr interface.
func (p *Constant[F]) Degree() uint { return 0 }

func (p *Constant[F]) String() string { return p.Value.String() }

// EvalAt implementation for the Expr interface.
func (p *Add[F]) EvalAt(local, next []F) F {
	val := p.Args[0].EvalAt(local, next)
	//
	for _, arg := range p.Args[1:] {
		val = val.Add(arg.EvalAt(local, next))
	}
	//
	return val
}

// Degree implementation for the Expr interface.  The degree of a sum is the
// maximum degree of any summand.
func (p *Add[F]) Degree() uint {
	var degree uint
	//
	for _, arg := range p.Args {
		degree = max(degree, arg.Degree())
	}
	//
	return degree
}

func (p *Add[F]) String() string { return nary("+", p.Args) }

// EvalAt implementation for the Expr interface.
func (p *Sub[F]) EvalAt(local, next []F) F {
	return p.Lhs.EvalAt(local, next).Sub(p.Rhs.EvalAt(local, next))
}

// Degree implementation for the Expr interface.
func (p *Sub[F]) Degree() uint {
	return max(p.Lhs.Degree(), p.Rhs.Degree())
}

func (p *Sub[F]) String() string {
	return fmt.Sprintf("(- %s %s)", p.Lhs, p.Rhs)
}

// EvalAt implementation for the Expr interface.
func (p *Mul[F]) EvalAt(local, next []F) F {
	val := p.Args[0].EvalAt(local, next)
	//
	for _, arg := range p.Args[1:] {
		val = val.Mul(arg.EvalAt(local, next))
	}
	//
	return val
}

// Degree implementation for the Expr interface.  The degree of a product is
// the sum of the degrees of its factors.
func (p *Mul[F]) Degree() uint {
	var degree uint
	//
	for _, arg := range p.Args {
		degree += arg.Degree()
	}
	//
	return degree
}

func (p *Mul[F]) String() string { return nary("*", p.Args) }

// ExprArith instantiates Arith over expression graphs.  This is the
// "symbolic" mode: evaluating a constraint description with it yields, for
// each constraint, the expression tree computing that constraint.
type ExprArith[F field.Element[F]] struct{}

// Add implementation for the Arith interface.
func (ExprArith[F]) Add(x, y Expr[F]) Expr[F] { return Sum(x, y) }

// Sub implementation for the Arith interface.
func (ExprArith[F]) Sub(x, y Expr[F]) Expr[F] { return Subtract(x, y) }

// Mul implementation for the Arith interface.
func (ExprArith[F]) Mul(x, y Expr[F]) Expr[F] { return Product(x, y) }

// Constant implementation for the Arith interface.
func (ExprArith[F]) Constant(val uint64) Expr[F] { return NewConstant[F](val) }

// One implementation for the Arith interface.
func (ExprArith[F]) One() Expr[F] { return NewConstant[F](1) }

func flattenAdd[F field.Element[F]](e Expr[F]) []Expr[F] {
	if add, ok := e.(*Add[F]); ok {
		return add.Args
	}
	//
	return nil
}

func flattenMul[F field.Element[F]](e Expr[F]) []Expr[F] {
	if mul, ok := e.(*Mul[F]); ok {
		return mul.Args
	}
	//
	return nil
}

func flatten[F field.Element[F]](lhs, rhs Expr[F], fn func(Expr[F]) []Expr[F]) []Expr[F] {
	var args []Expr[F]
	//
	for _, e := range []Expr[F]{lhs, rhs} {
		if nested := fn(e); nested != nil {
			args = append(args, nested...)
		} else {
			args = append(args, e)
		}
	}
	//
	return args
}

func nary[F field.Element[F]](op string, args []Expr[F]) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(op)
	//
	for _, arg := range args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
