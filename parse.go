package symtree

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// TokenBudget is the number of token letters (A–Z) one parse may assign.
const TokenBudget = 26

// functions maps the recognized function names to their tags; "e" is the
// short form of "exp".
var functions = map[string]Op{
	"sin": OpSin,
	"cos": OpCos,
	"tan": OpTan,
	"exp": OpExp,
	"e":   OpExp,
	"log": OpLog,
}

// Token is a bracket-scoped sub-expression and the letter standing for it.
type Token struct {
	Letter  byte
	Literal string // bracket contents after earlier tokens were substituted
	Expr    *Expr
}

// Tokens lists tokens in assignment order; the last one is the whole input.
type Tokens []Token

// Lookup returns the expression assigned to letter.
func (t Tokens) Lookup(letter byte) (*Expr, bool) {
	for _, tok := range t {
		if tok.Letter == letter {
			return tok.Expr, true
		}
	}
	return nil, false
}

// ============================================================
// Parse / Tokenize
// ============================================================

// Parse converts infix text over the given variables into an expression.
// It accepts + - * / ** (braces or brackets may group an exponent),
// sin cos tan exp e log applied to a bracketed argument, numeric literals,
// and numeric coefficients written directly before a term ("2x", "3sin(x)").
func Parse(variables []string, text string) (*Expr, error) {
	tokens, err := Tokenize(variables, text)
	if err != nil {
		return nil, err
	}
	return tokens[len(tokens)-1].Expr, nil
}

type candidate struct {
	depth int // stack depth after the closing bracket popped
	begin int
	text  string
}

// Tokenize runs the bracket-depth tokenizer. The whole input and every
// variable occurrence are bracketed, each bracket pair becomes a candidate
// in closing order, and every candidate is converted and assigned the next
// letter. When the depth decreases, the literals converted since the last
// decrease are replaced by their letters in all remaining candidates.
func Tokenize(variables []string, text string) (Tokens, error) {
	ctx, err := newParseContext(variables)
	if err != nil {
		return nil, err
	}
	if i := strings.IndexFunc(text, unicode.IsUpper); i >= 0 {
		return nil, errors.Wrapf(ErrParse, "Tokenize: uppercase letter at offset %d is reserved for tokens", i)
	}

	src := "(" + text + ")"
	for name := range ctx.variables {
		src = bracketVariable(src, name)
	}
	cands, err := scanBrackets(src)
	if err != nil {
		return nil, errors.Wrapf(err, "Tokenize: %q", text)
	}
	if len(cands) > TokenBudget {
		return nil, errors.Wrapf(ErrTokenExhausted, "Tokenize: %q needs %d tokens", text, len(cands))
	}

	var (
		pending  []string
		priority int
	)
	for j := range cands {
		if len(pending) > 0 && priority > cands[j].depth {
			for _, lit := range pending {
				from := "(" + lit + ")"
				to := "(" + string(ctx.letterFor(lit)) + ")"
				for q := j; q < len(cands); q++ {
					cands[q].text = strings.ReplaceAll(cands[q].text, from, to)
				}
			}
			pending = pending[:0]
		}
		priority = cands[j].depth
		pending = append(pending, cands[j].text)

		expr, err := ctx.convert(cands[j].text)
		if err != nil {
			return nil, errors.Wrapf(err, "Tokenize: %q", text)
		}
		ctx.assign(cands[j].text, expr)
	}
	return ctx.tokens, nil
}

// scanBrackets records every matched bracket pair in closing order. Closers
// without an opener are skipped. An opener left on the stack, anything but
// closers after the outer pair, or a final pair other than the synthetic
// outer one is an error.
func scanBrackets(src string) ([]candidate, error) {
	var (
		stack []int
		out   []candidate
	)
	for i := 0; i < len(src); i++ {
		if i > 0 && len(stack) == 0 && src[i] != ')' && !unicode.IsSpace(rune(src[i])) {
			return nil, errors.Wrapf(ErrParse, "unmatched closing bracket before %q", src[i:len(src)-1])
		}
		switch src[i] {
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				continue
			}
			begin := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, candidate{depth: len(stack), begin: begin, text: src[begin+1 : i]})
		}
	}
	if len(stack) > 0 {
		return nil, errors.Wrap(ErrParse, "unclosed bracket")
	}
	if len(out) == 0 || out[len(out)-1].begin != 0 {
		return nil, errors.Wrap(ErrParse, "unbalanced brackets")
	}
	return out, nil
}

// bracketVariable wraps every whole-identifier occurrence of name in src.
func bracketVariable(src, name string) string {
	var sb strings.Builder
	for i := 0; i < len(src); {
		end := i + len(name)
		if strings.HasPrefix(src[i:], name) && identifierStart(src, i) && (end == len(src) || !isIdentByte(src[end])) {
			sb.WriteString("(" + name + ")")
			i = end
			continue
		}
		sb.WriteByte(src[i])
		i++
	}
	return sb.String()
}

// identifierStart reports whether an identifier may begin at src[i]. A
// numeric coefficient directly before it ("2x") counts as a boundary.
func identifierStart(src string, i int) bool {
	j := i - 1
	for j >= 0 && (isDigit(src[j]) || src[j] == '.') {
		j--
	}
	if j == i-1 {
		return i == 0 || !isIdentByte(src[i-1])
	}
	return j < 0 || !(isLetter(src[j]) || src[j] == '_')
}

// ============================================================
// parseContext — per-call token scope
// ============================================================

type parseContext struct {
	variables map[string]bool
	tokens    Tokens
}

func newParseContext(variables []string) (*parseContext, error) {
	ctx := &parseContext{variables: make(map[string]bool, len(variables))}
	for _, name := range variables {
		if !validVariable(name) {
			return nil, errors.Wrapf(ErrParse, "invalid variable name %q", name)
		}
		ctx.variables[name] = true
	}
	return ctx, nil
}

// validVariable accepts lowercase identifiers that are not function names.
func validVariable(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case i > 0 && isDigit(c):
		default:
			return false
		}
	}
	_, isFunction := functions[name]
	return !isFunction
}

func (c *parseContext) assign(literal string, e *Expr) {
	c.tokens = append(c.tokens, Token{Letter: byte('A' + len(c.tokens)), Literal: literal, Expr: e})
}

// letterFor returns the first letter assigned to literal.
func (c *parseContext) letterFor(literal string) byte {
	for _, t := range c.tokens {
		if t.Literal == literal {
			return t.Letter
		}
	}
	panic("symtree: no token for literal " + strconv.Quote(literal))
}

// ============================================================
// Candidate conversion
// ============================================================

func (c *parseContext) convert(text string) (*Expr, error) {
	fields := strings.Fields(text)
	for k := 1; k < len(fields); k++ {
		prev, next := fields[k-1], fields[k]
		if !joinable(prev[len(prev)-1], next) {
			return nil, errors.Wrapf(ErrParse, "missing operator between %q and %q", prev, next)
		}
	}
	s := strings.Join(fields, "")
	if s == "" {
		return nil, errors.Wrap(ErrParse, "empty expression")
	}
	return c.sum(s)
}

// joinable reports whether the whitespace between a field ending in last and
// the field next may be dropped. Two operands need an operator between them,
// except a coefficient written before a term ("2 x", "3 sin(x)").
func joinable(last byte, next string) bool {
	first := next[0]
	if !(isIdentByte(last) || last == '.') || !(isIdentByte(first) || first == '.') {
		return true
	}
	if !(isDigit(last) || last == '.') || !isLetter(first) {
		return false
	}
	// "1 e5" would read as one literal.
	return !((first == 'e' || first == 'E') && numberPrefix("0"+next) > 1)
}

// sum splits at the rightmost top-level binary + or -, so a-b+c groups as
// (a-b)+c. Subtraction adds the right side multiplied by -1.
func (c *parseContext) sum(s string) (*Expr, error) {
	i := splitSum(s)
	if i <= 0 {
		return c.product(s)
	}
	left, err := c.sum(s[:i])
	if err != nil {
		return nil, err
	}
	right, err := c.sum(s[i+1:])
	if err != nil {
		return nil, err
	}
	if s[i] == '-' {
		right = Mul(Number(-1), right)
	}
	return Add(left, right), nil
}

func splitSum(s string) int {
	depth := 0
	for i := len(s) - 1; i > 0; i-- {
		switch s[i] {
		case ')', '}':
			depth++
		case '(', '{':
			depth--
		case '+', '-':
			if depth == 0 && isOperandEnd(s[i-1]) && !isExponentSign(s, i) {
				return i
			}
		}
	}
	return -1
}

// product folds top-level * and / left to right; a/b becomes a*b**(-1).
func (c *parseContext) product(s string) (*Expr, error) {
	var (
		factors []string
		ops     []byte
		depth   int
		start   int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case '*', '/':
			if depth != 0 {
				continue
			}
			if s[i] == '*' && i+1 < len(s) && s[i+1] == '*' {
				i++
				continue
			}
			factors = append(factors, s[start:i])
			ops = append(ops, s[i])
			start = i + 1
		}
	}
	factors = append(factors, s[start:])

	acc, err := c.factor(factors[0])
	if err != nil {
		return nil, err
	}
	for k, op := range ops {
		f, err := c.factor(factors[k+1])
		if err != nil {
			return nil, err
		}
		if op == '/' {
			f = Pow(f, Number(-1))
		}
		acc = Mul(acc, f)
	}
	return acc, nil
}

// factor handles unary signs and the right-associative ** operator. A sign
// directly before a bare literal folds into the constant.
func (c *parseContext) factor(s string) (*Expr, error) {
	if s == "" {
		return nil, errors.Wrap(ErrParse, "missing operand")
	}
	switch s[0] {
	case '-':
		if n := numberPrefix(s[1:]); n > 0 && n == len(s)-1 {
			if e, err := Constant(s); err == nil {
				return e, nil
			}
		}
		inner, err := c.factor(s[1:])
		if err != nil {
			return nil, err
		}
		return Mul(Number(-1), inner), nil
	case '+':
		return c.factor(s[1:])
	}
	if i := indexPower(s); i >= 0 {
		base, err := c.atom(s[:i])
		if err != nil {
			return nil, err
		}
		exp, err := c.factor(s[i+2:])
		if err != nil {
			return nil, err
		}
		return Pow(base, exp), nil
	}
	return c.atom(s)
}

func indexPower(s string) int {
	depth := 0
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case '*':
			if depth == 0 && s[i+1] == '*' {
				return i
			}
		}
	}
	return -1
}

func (c *parseContext) atom(s string) (*Expr, error) {
	if s == "" {
		return nil, errors.Wrap(ErrParse, "missing operand")
	}
	if len(s) == 1 && isUpper(s[0]) {
		if e, ok := c.tokens.Lookup(s[0]); ok {
			return e.Clone(), nil
		}
		return nil, errors.Wrapf(ErrParse, "unknown token %q", s)
	}
	if enclosed(s) {
		return c.sum(s[1 : len(s)-1])
	}
	if name, arg, ok := splitCall(s); ok {
		op, known := functions[name]
		if !known {
			return nil, errors.Wrapf(ErrParse, "unknown function %q", name)
		}
		inner, err := c.sum(arg)
		if err != nil {
			return nil, err
		}
		return newUnary(op, inner), nil
	}
	if c.variables[s] {
		return Identifier(s), nil
	}
	if n := numberPrefix(s); n > 0 {
		coeff, err := Constant(s[:n])
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "bad number %q", s[:n])
		}
		if n == len(s) {
			return coeff, nil
		}
		rest, err := c.atom(s[n:])
		if err != nil {
			return nil, err
		}
		return Mul(coeff, rest), nil
	}
	return nil, errors.Wrapf(ErrParse, "unrecognized term %q", s)
}

// enclosed reports whether s is one bracket or brace group from end to end.
func enclosed(s string) bool {
	if len(s) < 2 || (s[0] != '(' && s[0] != '{') {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// splitCall splits "name(arg)" into its parts.
func splitCall(s string) (name, arg string, ok bool) {
	k := strings.IndexByte(s, '(')
	if k <= 0 || !enclosed(s[k:]) {
		return "", "", false
	}
	for i := 0; i < k; i++ {
		if !isLetter(s[i]) {
			return "", "", false
		}
	}
	return s[:k], s[k+1 : len(s)-1], true
}

// numberPrefix returns the length of the numeric literal at the start of s.
func numberPrefix(s string) int {
	i := 0
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			return j
		}
	}
	return i
}

func isExponentSign(s string, i int) bool {
	return i >= 2 && s[i-1] == 'e' && (isDigit(s[i-2]) || s[i-2] == '.') && i+1 < len(s) && isDigit(s[i+1])
}

func isOperandEnd(c byte) bool { return isIdentByte(c) || c == '.' || c == ')' || c == '}' }
func isIdentByte(c byte) bool  { return isLetter(c) || isDigit(c) || c == '_' }
func isLetter(c byte) bool     { return (c >= 'a' && c <= 'z') || isUpper(c) }
func isUpper(c byte) bool      { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
