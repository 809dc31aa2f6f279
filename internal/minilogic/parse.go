package minilogic

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType identifies the kind of a predicate token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenString
	TokenOp
	TokenLParen
	TokenRParen
)

// Token is a single lexeme of a predicate.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// Lexer scans a predicate string into tokens.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

// NewLexer returns a new Lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0),
	}
}

// two-character operators must be tried before their one-character prefixes
var operators = []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "+", "-", "*", "/", "%", "!"}

// Tokenize processes the entire input and produces the list of tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		c := l.input[l.position]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.position++

		case c == '(':
			l.addToken(TokenLParen, "(", l.position)
			l.position++

		case c == ')':
			l.addToken(TokenRParen, ")", l.position)
			l.position++

		case c == '"':
			if err := l.lexString(); err != nil {
				return nil, err
			}

		case isDigit(c):
			start := l.position
			for l.position < len(l.input) && isDigit(l.input[l.position]) {
				l.position++
			}
			l.addToken(TokenInt, l.input[start:l.position], start)

		case isIdentStart(c):
			start := l.position
			for l.position < len(l.input) && isIdentPart(l.input[l.position]) {
				l.position++
			}
			l.addToken(TokenIdent, l.input[start:l.position], start)

		default:
			if !l.lexOperator() {
				return nil, fmt.Errorf("unexpected character %q at offset %d", c, l.position)
			}
		}
	}

	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

func (l *Lexer) lexOperator() bool {
	rest := l.input[l.position:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.addToken(TokenOp, op, l.position)
			l.position += len(op)
			return true
		}
	}
	return false
}

func (l *Lexer) lexString() error {
	start := l.position
	l.position++ // opening quote
	for l.position < len(l.input) {
		switch l.input[l.position] {
		case '\\':
			l.position += 2
			continue
		case '"':
			l.position++
			raw := l.input[start:l.position]
			s, err := strconv.Unquote(raw)
			if err != nil {
				return fmt.Errorf("invalid string literal %s at offset %d: %w", raw, start, err)
			}
			l.addToken(TokenString, s, start)
			return nil
		}
		l.position++
	}
	return fmt.Errorf("unterminated string literal at offset %d", start)
}

func (l *Lexer) addToken(tokenType TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.'
}

// Parser builds an Expr from tokens by precedence climbing.
type Parser struct {
	tokens  []Token
	current int
}

// NewParser creates a new Parser instance.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParsePredicate parses the textual form of a predicate.
func ParsePredicate(src string) (Expr, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens)
	expr, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", tok.Value, tok.Position)
	}
	return expr, nil
}

// MustParse is like ParsePredicate but panics on error. Intended for
// tests and static tables.
func MustParse(src string) Expr {
	expr, err := ParsePredicate(src)
	if err != nil {
		panic(fmt.Sprintf("minilogic: %q: %v", src, err))
	}
	return expr
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.current]
	if tok.Type != TokenEOF {
		p.current++
	}
	return tok
}

var binaryOps = map[string]BinaryOp{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"%":  OpMod,
	"==": OpEq,
	"!=": OpNeq,
	"<":  OpLt,
	"<=": OpLte,
	">":  OpGt,
	">=": OpGte,
	"&&": OpAnd,
	"||": OpOr,
}

func (p *Parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Type != TokenOp {
			return left, nil
		}
		op, ok := binaryOps[tok.Value]
		if !ok || op.precedence() < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(op.precedence() + 1)
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Type == TokenOp && (tok.Value == "!" || tok.Value == "-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.Value == "!" {
			return UnaryExpr{Op: OpNot, Operand: operand}, nil
		}
		return UnaryExpr{Op: OpNeg, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.next()
	switch tok.Type {
	case TokenInt:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q at offset %d: %w", tok.Value, tok.Position, err)
		}
		return IntLit(n), nil

	case TokenString:
		return StrLit(tok.Value), nil

	case TokenIdent:
		switch tok.Value {
		case "true":
			return BoolLit(true), nil
		case "false":
			return BoolLit(false), nil
		case "nil":
			return NilLit(), nil
		case "old":
			if p.peek().Type == TokenLParen {
				inner, err := p.parseParen()
				if err != nil {
					return nil, err
				}
				return OldExpr{Operand: inner}, nil
			}
		}
		return VarExpr{Name: tok.Value}, nil

	case TokenLParen:
		p.current--
		return p.parseParen()

	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of predicate")

	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", tok.Value, tok.Position)
	}
}

func (p *Parser) parseParen() (Expr, error) {
	open := p.next()
	if open.Type != TokenLParen {
		return nil, fmt.Errorf("expected '(' at offset %d", open.Position)
	}
	expr, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	closeTok := p.next()
	if closeTok.Type != TokenRParen {
		return nil, fmt.Errorf("expected ')' at offset %d", closeTok.Position)
	}
	return expr, nil
}
