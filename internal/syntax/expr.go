package syntax

// ----------------------------------------------------------------------------
// Expressions
//
//	Expr    = Primary {binary_op Primary} .
//	Primary = "(" Expr ")" | number | Ref | "not" Primary .
//
// All binary operators are left-associative; Token.Precedence gives the
// tiers. A "-" directly before a number is accepted only as the first
// token of an expression and folds into the literal.

func (p *Parser) expr() Expr {
	return p.binaryExpr(0, true)
}

// binaryExpr parses operators binding tighter than prec. start is set
// when the first operand opens an expression.
func (p *Parser) binaryExpr(prec int, start bool) Expr {
	x := p.primary(start)
	for {
		oprec := p.tok.Precedence()
		if oprec <= prec {
			return x
		}
		op := &Operation{Op: p.tok, X: x}
		op.pos = x.Pos()
		p.next()
		op.Y = p.binaryExpr(oprec, false)
		x = op
	}
}

func (p *Parser) primary(start bool) Expr {
	switch p.tok {
	case _Lparen:
		p.next()
		x := p.expr()
		p.want(_Rparen)
		return x

	case _Number:
		return p.number(p.pos, false)

	case _Name:
		r, _ := p.ref()
		return r

	case _Not:
		x := &UnaryExpr{Op: _Not}
		x.pos = p.pos
		p.next()
		x.X = p.primary(false)
		return x

	case _Sub:
		if start {
			pos := p.pos
			p.next()
			if p.tok != _Number {
				p.syntaxError("expected number after -")
			}
			return p.number(pos, true)
		}
	}
	p.syntaxError("expected expression")
	return nil
}
