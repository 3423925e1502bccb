// Package parser builds an AST from a token sequence using recursive descent for statements
// and declarations and precedence climbing for expressions (spec.md section 4.2).
package parser

import (
	"fmt"
	"strconv"

	"github.com/nanocc/nanocc/pkg/ast"
	"github.com/nanocc/nanocc/pkg/token"
)

// SyntaxError reports an unexpected token, carrying what was expected and what was found
// (spec.md section 7).
type SyntaxError struct {
	Pos      int
	Expected string
	Found    token.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// precedence is the operator-precedence table from spec.md section 4.2: higher binds tighter.
var precedence = map[token.Kind]int{
	token.Star: 50, token.Slash: 50, token.Percent: 50,
	token.Plus: 45, token.Minus: 45,
	token.Less: 35, token.LessEqual: 35, token.Greater: 35, token.GreaterEqual: 35,
	token.EqualEqual: 30, token.BangEqual: 30,
	token.AmpAmp:   10,
	token.PipePipe: 5,
	token.Question: 3,
	token.Equal:    1,
}

// Parser consumes a fixed token slice. Like Lexer, a value is single-use per Parse call.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New returns a Parser over tokens (which must end with a token.EOF sentinel).
func New(tokens []token.Token) Parser { return Parser{tokens: tokens} }

// Parse parses the whole token sequence into a Program: an ordered sequence of function
// declarations (spec.md section 3).
func (p Parser) Parse() (ast.Program, error) {
	var prog ast.Program
	for p.peek().Kind != token.EOF {
		fn, err := p.parseTopLevelDecl()
		if err != nil {
			return nil, err
		}
		prog = append(prog, fn)
	}
	return prog, nil
}

func (p *Parser) peek() token.Token { return p.tokens[p.pos] }

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, &SyntaxError{Pos: tok.Pos, Expected: string(kind), Found: tok}
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (string, error) {
	tok, err := p.expect(token.Identifier)
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

// ----------------------------------------------------------------------------
// Declarations

func (p *Parser) parseTopLevelDecl() (ast.FuncDecl, error) {
	if _, err := p.expect(token.Int); err != nil {
		return ast.FuncDecl{}, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return ast.FuncDecl{}, err
	}
	return p.parseFuncTail(name)
}

// parseFuncTail parses "(params) ;" or "(params) { body }" for a function already identified
// by name (the leading "int name" has already been consumed by the caller).
func (p *Parser) parseFuncTail(name string) (ast.FuncDecl, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return ast.FuncDecl{}, err
	}
	params, err := p.parseParams()
	if err != nil {
		return ast.FuncDecl{}, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return ast.FuncDecl{}, err
	}

	if p.peek().Kind == token.Semi {
		p.advance()
		return ast.FuncDecl{Name: name, Params: params}, nil
	}

	block, err := p.parseBlock()
	if err != nil {
		return ast.FuncDecl{}, err
	}
	return ast.FuncDecl{Name: name, Params: params, Body: &block}, nil
}

// parseParams parses "void" (empty) or "int name (, int name)*"; the caller has already
// consumed the opening '(' and expects the closing ')' itself.
func (p *Parser) parseParams() ([]string, error) {
	if p.peek().Kind == token.Void {
		p.advance()
		return nil, nil
	}

	var params []string
	for {
		if _, err := p.expect(token.Int); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, name)

		if p.peek().Kind != token.Comma {
			break
		}
		p.advance()
	}
	return params, nil
}

// parseVarTail parses "[= expr] ;" for a variable already identified by name.
func (p *Parser) parseVarTail(name string) (*ast.VarDecl, error) {
	var init ast.Expr
	if p.peek().Kind == token.Equal {
		p.advance()
		var err error
		if init, err = p.parseExpr(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Name: name, Init: init}, nil
}

// ----------------------------------------------------------------------------
// Blocks and block items

func (p *Parser) parseBlock() (ast.Block, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	var items ast.Block
	for p.peek().Kind != token.RBrace {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return items, nil
}

// parseBlockItem parses either a declaration (variable, or nested function prototype/
// definition — the latter is rejected later by identifier resolution, not here) or a
// statement.
func (p *Parser) parseBlockItem() (ast.BlockItem, error) {
	if p.peek().Kind == token.Int {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind == token.LParen {
			return p.parseFuncTail(name)
		}
		return p.parseVarTail(name)
	}
	return p.parseStatement()
}

// ----------------------------------------------------------------------------
// Statements

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Kind {
	case token.Return:
		p.advance()
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Expr: expr}, nil

	case token.Semi:
		p.advance()
		return &ast.NullStmt{}, nil

	case token.LBrace:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStmt{Block: block}, nil

	case token.If:
		return p.parseIfStmt()

	case token.Break:
		p.advance()
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{}, nil

	case token.Continue:
		p.advance()
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{}, nil

	case token.While:
		return p.parseWhileStmt()

	case token.Do:
		return p.parseDoWhileStmt()

	case token.For:
		return p.parseForStmt()

	default:
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr}, nil
	}
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	p.advance() // 'if'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var elseBranch ast.Stmt
	if p.peek().Kind == token.Else {
		p.advance()
		if elseBranch, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	p.advance() // 'while'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhileStmt() (ast.Stmt, error) {
	p.advance() // 'do'
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.While); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{Body: body, Cond: cond}, nil
}

func (p *Parser) parseForStmt() (ast.Stmt, error) {
	p.advance() // 'for'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	init, err := p.parseForInit()
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if p.peek().Kind != token.Semi {
		if cond, err = p.parseExpr(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}

	var post ast.Expr
	if p.peek().Kind != token.RParen {
		if post, err = p.parseExpr(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseForInit parses "for-init", either a variable declaration or an optional expression,
// both terminated by ';' (spec.md section 4.2).
func (p *Parser) parseForInit() (ast.ForInit, error) {
	if p.peek().Kind == token.Int {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return p.parseVarTail(name)
	}
	if p.peek().Kind == token.Semi {
		p.advance()
		return nil, nil
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return expr, nil
}

// ----------------------------------------------------------------------------
// Expressions — precedence climbing (spec.md section 4.2)

func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		if op.Kind == token.MinusMinus {
			return nil, p.decrementError(op)
		}

		prec, isBinOp := precedence[op.Kind]
		if !isBinOp || prec < minPrec {
			break
		}

		switch op.Kind {
		case token.Equal:
			p.advance()
			right, err := p.parseExpr(prec) // right-associative: same min_prec
			if err != nil {
				return nil, err
			}
			left = &ast.AssignExpr{Target: left, Value: right}

		case token.Question:
			p.advance()
			mid, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}
			right, err := p.parseExpr(prec) // right-associative
			if err != nil {
				return nil, err
			}
			left = &ast.ConditionalExpr{Cond: left, Then: mid, Else: right}

		default:
			p.advance()
			right, err := p.parseExpr(prec + 1) // left-associative
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right}
		}
	}

	return left, nil
}

// parseFactor parses a constant, a variable reference or call, a unary operator applied to a
// factor, or a parenthesized expression (spec.md section 4.2).
func (p *Parser) parseFactor() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case token.MinusMinus:
		return nil, p.decrementError(tok)

	case token.Constant:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "integer constant", Found: tok}
		}
		return &ast.ConstExpr{Value: value}, nil

	case token.Identifier:
		p.advance()
		if p.peek().Kind != token.LParen {
			return &ast.VarExpr{Name: tok.Lexeme}, nil
		}
		p.advance() // '('
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.CallExpr{Callee: tok.Lexeme, Args: args}, nil

	case token.Tilde, token.Minus, token.Bang:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: tok.Kind, Operand: operand}, nil

	case token.LParen:
		p.advance()
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, &SyntaxError{Pos: tok.Pos, Expected: "expression", Found: tok}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if p.peek().Kind == token.RParen {
		return nil, nil
	}

	var args []ast.Expr
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.peek().Kind != token.Comma {
			break
		}
		p.advance()
	}
	return args, nil
}

// decrementError rejects '--' at parse time: spec.md section 9 treats it as deliberately
// unimplemented (lexed but never parsed or lowered) rather than silently ignored.
func (p *Parser) decrementError(tok token.Token) error {
	return &SyntaxError{Pos: tok.Pos, Expected: "expression (decrement '--' is not supported)", Found: tok}
}
