package jsonvalue

import (
	"errors"
	"testing"
)

func TestParse_RoundTripsScalars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Value
	}{
		{"true", "true", Boolean(true)},
		{"false", "false", Boolean(false)},
		{"null", "null", Null{}},
		{"string", `"hello"`, String("hello")},
		{"string with escapes", `"a\nb\"c"`, String("a\nb\"c")},
		{"integer", "42", Number("42")},
		{"negative", "-7", Number("-7")},
		{"float", "3.5", Number("3.5")},
		{"exponent", "1e10", Number("1e10")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser(tt.text).Parse()
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParse_Object(t *testing.T) {
	got, err := NewParser(`{"a":1,"b":{"c":true},"d":[1,2,3]}`).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	obj, ok := got.(*Object)
	if !ok {
		t.Fatalf("got %T, want *Object", got)
	}

	a, ok := obj.Get("a")
	if !ok || a != Number("1") {
		t.Errorf("a = %v, %v", a, ok)
	}

	b, ok := obj.Get("b")
	if !ok {
		t.Fatal("missing key b")
	}
	inner, ok := b.(*Object)
	if !ok {
		t.Fatalf("b: got %T, want *Object", b)
	}
	if c, ok := inner.Get("c"); !ok || c != Boolean(true) {
		t.Errorf("c = %v, %v", c, ok)
	}

	d, ok := obj.Get("d")
	if !ok {
		t.Fatal("missing key d")
	}
	arr, ok := d.(*Array)
	if !ok {
		t.Fatalf("d: got %T, want *Array", d)
	}
	if len(arr.Items) != 3 {
		t.Errorf("got %d items, want 3", len(arr.Items))
	}
}

func TestParse_RejectsTrailingData(t *testing.T) {
	if _, err := NewParser(`{}garbage`).Parse(); err == nil {
		t.Error("expected an error for trailing data")
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	inputs := []string{``, `{`, `[1,2`, `"unterminated`, `tru`, `{"a":}`}
	for _, in := range inputs {
		if _, err := NewParser(in).Parse(); err == nil {
			t.Errorf("Parse(%q): expected error, got none", in)
		}
	}
}

func TestObject_SetPreservesInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("z", NewString("1"))
	obj.Set("a", NewString("2"))
	obj.Set("z", NewString("3")) // overwrite, order unchanged

	keys := obj.Keys()
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Errorf("got %v, want [z a]", keys)
	}
	if v, _ := obj.Get("z"); v != String("3") {
		t.Errorf("got %v, want overwritten value", v)
	}
}

func TestWrite_RoundTripsThroughParse(t *testing.T) {
	obj := NewObject()
	obj.Set("name", NewString("beacon"))
	obj.Set("count", NewNumberFromInt64(3))
	obj.Set("ratio", NewNumberFromFloat64(0.5))
	obj.Set("ok", NewBoolean(true))
	obj.Set("nothing", NewNull())
	arr := NewArray()
	arr.Items = append(arr.Items, NewString("x"), NewNumberFromInt64(2))
	obj.Set("items", arr)

	text := Write(obj)
	reparsed, err := NewParser(text).Parse()
	if err != nil {
		t.Fatalf("round-trip parse failed on %q: %v", text, err)
	}
	got, ok := reparsed.(*Object)
	if !ok {
		t.Fatalf("got %T, want *Object", reparsed)
	}
	if v, _ := got.Get("name"); v != String("beacon") {
		t.Errorf("name = %v", v)
	}
	if v, _ := got.Get("ok"); v != Boolean(true) {
		t.Errorf("ok = %v", v)
	}
}

func TestWrite_EscapesControlCharactersAndQuotes(t *testing.T) {
	text := Write(NewString("line1\nline2\t\"quoted\""))
	if text != `"line1\nline2\t\"quoted\""` {
		t.Errorf("got %q", text)
	}
}

func TestNumber_Float64AndInt64(t *testing.T) {
	n := NewNumberFromFloat64(2.5).(Number)
	f, err := n.Float64()
	if err != nil || f != 2.5 {
		t.Errorf("Float64() = %v, %v", f, err)
	}

	i := NewNumberFromInt64(7).(Number)
	iv, err := i.Int64()
	if err != nil || iv != 7 {
		t.Errorf("Int64() = %v, %v", iv, err)
	}
}

func TestParse_SecondCallReturnsMemoizedRoot(t *testing.T) {
	p := NewParser(`{"a":1}`)
	first, err := p.Parse()
	if err != nil {
		t.Fatalf("first Parse() error: %v", err)
	}
	second, err := p.Parse()
	if err != nil {
		t.Fatalf("second Parse() error: %v", err)
	}
	if first != second {
		t.Errorf("second Parse() = %#v, want memoized %#v", second, first)
	}
}

func TestParse_SecondCallAfterErrorReturnsSameError(t *testing.T) {
	p := NewParser(`{"a":}`)
	_, err1 := p.Parse()
	if err1 == nil {
		t.Fatal("expected first Parse() to fail")
	}
	_, err2 := p.Parse()
	if err2 == nil {
		t.Fatal("expected second Parse() to fail")
	}
	if err1.Error() != err2.Error() {
		t.Errorf("second Parse() error = %q, want memoized %q", err2, err1)
	}
}

func TestLexer_StaysInErrorStateAfterFailure(t *testing.T) {
	l := NewLexer(`"unterminated`)
	if _, err := l.NextToken(); err == nil {
		t.Fatal("expected first NextToken() to fail")
	}
	if _, err := l.NextToken(); !errors.Is(err, ErrLexerInErrorState) {
		t.Errorf("second NextToken() error = %v, want ErrLexerInErrorState", err)
	}
	if _, err := l.NextToken(); !errors.Is(err, ErrLexerInErrorState) {
		t.Errorf("third NextToken() error = %v, want ErrLexerInErrorState", err)
	}
}

func TestLexer_ReturnsNilAtEndOfInput(t *testing.T) {
	l := NewLexer(`42`)
	tok, err := l.NextToken()
	if err != nil || tok == nil || tok.Type != TokenNumber {
		t.Fatalf("got %v, %v", tok, err)
	}
	tok, err = l.NextToken()
	if err != nil || tok != nil {
		t.Errorf("got %v, %v, want (nil, nil)", tok, err)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(NewNumberFromFloat64(1.5)) {
		t.Error("1.5 should be finite")
	}
	if !IsFinite(NewString("not a number")) {
		t.Error("non-Number values are vacuously finite")
	}
	if IsFinite(Number("not-a-number")) {
		t.Error("unparseable Number text should not be finite")
	}
}
