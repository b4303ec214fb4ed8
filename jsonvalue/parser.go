package jsonvalue

import (
	"errors"
	"fmt"
)

// ParserState names a state of the parser's pushdown automaton, grounded on
// original_source's JsonParserState enum.
type ParserState int

const (
	StateInit ParserState = iota
	StateInArrayStart
	StateInArrayValue
	StateInArrayDelimiter
	StateInObjectStart
	StateInObjectKey
	StateInObjectColon
	StateInObjectValue
	StateInObjectDelimiter
	StateEnd
	StateError
)

// frame is one entry of the parser's value stack: an in-progress composite
// (Array or Object) plus the bookkeeping needed to finish the object entry
// currently being parsed. Mirrors original_source's JsonValueContainer.
type frame struct {
	array   *Array
	object  *Object
	haveKey bool
	key     string
	val     Value
}

// Parser turns JSON text into a Value tree using an explicit two-stack
// pushdown automaton: valueStack holds the in-progress composite (or root
// scalar) frames, stateStack holds the parent state to restore when a
// composite closes. This mirrors original_source's JsonParser exactly,
// including its "second call returns the cached result" and
// "once erroneous, stays erroneous" semantics.
type Parser struct {
	lexer *Lexer
	state ParserState

	valueStack []*frame
	stateStack []ParserState

	result  Value
	err     error
	started bool
}

// NewParser returns a Parser over text. Parse() does the work lazily.
func NewParser(text string) *Parser {
	return &Parser{lexer: NewLexer(text), state: StateInit}
}

// Parse returns the single root Value described by the parser's text. The
// first call drives the lexer/automaton to completion; every later call on
// the same Parser returns the memoized root or error without re-parsing.
func (p *Parser) Parse() (Value, error) {
	if p.state == StateEnd {
		return p.result, nil
	}
	if p.state == StateError {
		return nil, p.err
	}

	v, err := p.doParse()
	if err != nil {
		p.state = StateError
		p.err = err
		return nil, err
	}
	p.state = StateEnd
	p.result = v
	return v, nil
}

func (p *Parser) doParse() (Value, error) {
	if p.started {
		return nil, errors.New("jsonvalue: parser already consumed")
	}
	p.started = true

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if err := p.step(tok); err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}
	}

	if len(p.valueStack) != 1 {
		return nil, errors.New("jsonvalue: unexpected end of input")
	}
	top := p.valueStack[0]
	return top.composite(), nil
}

func (f *frame) composite() Value {
	if f.array != nil {
		return f.array
	}
	if f.object != nil {
		return f.object
	}
	return f.val
}

func (p *Parser) step(tok *Token) error {
	switch p.state {
	case StateInit:
		return p.stepInit(tok)
	case StateInArrayStart:
		return p.stepInArrayStart(tok)
	case StateInArrayValue:
		return p.stepInArrayValue(tok)
	case StateInArrayDelimiter:
		return p.stepInArrayDelimiter(tok)
	case StateInObjectStart:
		return p.stepInObjectStart(tok)
	case StateInObjectKey:
		return p.stepInObjectKey(tok)
	case StateInObjectColon:
		return p.stepInObjectColon(tok)
	case StateInObjectValue:
		return p.stepInObjectValue(tok)
	case StateInObjectDelimiter:
		return p.stepInObjectDelimiter(tok)
	case StateEnd:
		return p.stepEnd(tok)
	default:
		return fmt.Errorf("jsonvalue: parser in unknown state %d", p.state)
	}
}

func (p *Parser) stepEnd(tok *Token) error {
	if tok != nil {
		return errors.New("jsonvalue: unexpected token at end of input")
	}
	return nil
}

func (p *Parser) stepInit(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input")
	}
	switch tok.Type {
	case TokenLeftBracket:
		p.valueStack = append(p.valueStack, &frame{array: NewArray()})
		p.state = StateInArrayStart
	case TokenLeftBrace:
		p.valueStack = append(p.valueStack, &frame{object: NewObject()})
		p.state = StateInObjectStart
	default:
		v, err := tokenToScalar(tok)
		if err != nil {
			return err
		}
		p.valueStack = append(p.valueStack, &frame{val: v})
		p.state = StateEnd
	}
	return nil
}

func (p *Parser) pushNestedArray(returnState ParserState) {
	p.stateStack = append(p.stateStack, returnState)
	p.valueStack = append(p.valueStack, &frame{array: NewArray()})
	p.state = StateInArrayStart
}

func (p *Parser) pushNestedObject(returnState ParserState) {
	p.stateStack = append(p.stateStack, returnState)
	p.valueStack = append(p.valueStack, &frame{object: NewObject()})
	p.state = StateInObjectStart
}

func (p *Parser) stepInArrayStart(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in array")
	}
	if tok.Type == TokenRightBracket {
		return p.closeComposite()
	}
	return p.parseArrayElement(tok)
}

func (p *Parser) stepInArrayValue(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in array")
	}
	switch tok.Type {
	case TokenRightBracket:
		return p.closeComposite()
	case TokenComma:
		p.state = StateInArrayDelimiter
		return nil
	default:
		return errors.New("jsonvalue: expected ',' or ']' in array")
	}
}

func (p *Parser) stepInArrayDelimiter(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in array")
	}
	return p.parseArrayElement(tok)
}

func (p *Parser) parseArrayElement(tok *Token) error {
	top := p.top()
	switch tok.Type {
	case TokenLeftBracket:
		p.pushNestedArray(StateInArrayValue)
		return nil
	case TokenLeftBrace:
		p.pushNestedObject(StateInArrayValue)
		return nil
	default:
		v, err := tokenToScalar(tok)
		if err != nil {
			return err
		}
		top.array.Items = append(top.array.Items, v)
		p.state = StateInArrayValue
		return nil
	}
}

func (p *Parser) stepInObjectStart(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in object")
	}
	if tok.Type == TokenRightBrace {
		return p.closeComposite()
	}
	return p.parseObjectKey(tok)
}

func (p *Parser) stepInObjectKey(tok *Token) error {
	if tok == nil || tok.Type != TokenColon {
		return errors.New("jsonvalue: expected ':' after object key")
	}
	p.state = StateInObjectColon
	return nil
}

func (p *Parser) stepInObjectColon(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in object")
	}
	top := p.top()
	switch tok.Type {
	case TokenLeftBracket:
		p.pushNestedArray(StateInObjectValue)
		return nil
	case TokenLeftBrace:
		p.pushNestedObject(StateInObjectValue)
		return nil
	default:
		v, err := tokenToScalar(tok)
		if err != nil {
			return err
		}
		top.val = v
		p.state = StateInObjectValue
		return nil
	}
}

func (p *Parser) stepInObjectValue(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in object")
	}
	switch tok.Type {
	case TokenRightBrace:
		p.commitPendingEntry()
		return p.closeComposite()
	case TokenComma:
		p.commitPendingEntry()
		p.state = StateInObjectDelimiter
		return nil
	default:
		return errors.New("jsonvalue: expected ',' or '}' in object")
	}
}

func (p *Parser) stepInObjectDelimiter(tok *Token) error {
	if tok == nil {
		return errors.New("jsonvalue: unexpected end of input in object")
	}
	return p.parseObjectKey(tok)
}

func (p *Parser) parseObjectKey(tok *Token) error {
	if tok.Type != TokenString {
		return errors.New("jsonvalue: expected string object key")
	}
	top := p.top()
	top.key = tok.Value
	top.haveKey = true
	p.state = StateInObjectKey
	return nil
}

// commitPendingEntry stores the key/value pair parsed for the current
// object frame, mirroring original_source's
// putLastParsedKeyValuePairIntoObject.
func (p *Parser) commitPendingEntry() {
	top := p.top()
	if top.haveKey {
		top.object.Set(top.key, top.val)
		top.haveKey = false
		top.key = ""
		top.val = nil
	}
}

func (p *Parser) top() *frame {
	return p.valueStack[len(p.valueStack)-1]
}

// closeComposite finishes the composite on top of the value stack. If it is
// the only frame left the parser is done (state becomes StateEnd without
// popping, so the result stays retrievable at p.valueStack[0]); otherwise it
// is popped and merged into its parent frame, and the parent's saved state
// is restored. Mirrors
// original_source's closeCompositeJsonValueAndRestoreState.
func (p *Parser) closeComposite() error {
	if len(p.valueStack) == 1 {
		p.state = StateEnd
		return nil
	}

	finished := p.valueStack[len(p.valueStack)-1].composite()
	p.valueStack = p.valueStack[:len(p.valueStack)-1]

	parent := p.top()
	switch {
	case parent.array != nil:
		parent.array.Items = append(parent.array.Items, finished)
	case parent.object != nil:
		parent.val = finished
	default:
		return errors.New("jsonvalue: internal error: parent frame is not a composite")
	}

	p.state = p.stateStack[len(p.stateStack)-1]
	p.stateStack = p.stateStack[:len(p.stateStack)-1]
	return nil
}

// tokenToScalar converts a scalar token into its Value, mirroring
// original_source's tokenToSimpleJsonValue.
func tokenToScalar(tok *Token) (Value, error) {
	switch tok.Type {
	case TokenNumber:
		return Number(tok.Value), nil
	case TokenString:
		return String(tok.Value), nil
	case TokenBoolean:
		return Boolean(tok.Value == "true"), nil
	case TokenNull:
		return Null{}, nil
	default:
		return nil, errors.New("jsonvalue: expected a value")
	}
}
