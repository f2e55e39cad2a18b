package assembler

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokPunct tokenKind = iota
	tokWord
	// tokField is an operand slot in an encoding template.
	tokField
)

type token struct {
	kind tokenKind
	text string
}

// registers cannot be used as symbol names.
var registers = map[string]bool{
	"x": true, "a": true, "c": true, "b": true, "e": true, "d": true, "l": true, "h": true,
	"ax": true, "bc": true, "de": true, "hl": true, "cy": true,
	"rb0": true, "rb1": true, "rb2": true, "rb3": true,
}

// predefined are the register names usable as saddr and sfr operands.
var predefined = map[string]int{
	"sp":  0xFF1C,
	"psw": 0xFF1E,
}

func isWordChar(c byte) bool {
	return c == '_' || c == '?' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// tokenize splits operand text into words and punctuation. Template fields
// such as {byte} become tokField tokens.
func tokenize(s string) ([]token, error) {
	var toks []token
	s = strings.ToLower(s)
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated field in %q", s)
			}
			toks = append(toks, token{kind: tokField, text: s[i+1 : i+end]})
			i += end + 1
		case isWordChar(c):
			j := i
			for j < len(s) && isWordChar(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: s[i:j]})
			i = j
		case strings.IndexByte(",#!$[]+-.", c) >= 0:
			toks = append(toks, token{kind: tokPunct, text: s[i : i+1]})
			i++
		default:
			return nil, fmt.Errorf("unexpected %q in operands", c)
		}
	}
	return toks, nil
}

// parseNumber reads a numeric literal: 0FE40H, 0x1F or 42.
func parseNumber(s string) (int, bool) {
	s = strings.ToLower(s)
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, false
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		s = s[2:]
		base = 16
	case strings.HasSuffix(s, "h"):
		s = s[:len(s)-1]
		base = 16
	}
	v, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// word evaluates a single number or symbol. known is false for symbols that
// have not been defined yet.
func (asm *Assembler) word(s string) (v int, known bool, err error) {
	if n, ok := parseNumber(s); ok {
		return n, true, nil
	}
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return 0, false, fmt.Errorf("invalid number format: %s", s)
	}
	if registers[s] {
		return 0, false, fmt.Errorf("register %s used as a value", s)
	}
	if v, ok := predefined[s]; ok {
		return v, true, nil
	}
	v, ok := asm.symbols[s]
	return v, ok, nil
}

// expr evaluates "word", "-word" or "word+word-word..." at toks. It returns the
// number of tokens used.
func (asm *Assembler) expr(toks []token) (v int, known bool, n int, err error) {
	sign := 1
	if len(toks) > 1 && toks[0].kind == tokPunct && toks[0].text == "-" {
		sign, n = -1, 1
	}
	if len(toks) <= n || toks[n].kind != tokWord {
		return 0, false, 0, fmt.Errorf("missing value")
	}
	v, known, err = asm.word(toks[n].text)
	if err != nil {
		return 0, false, 0, err
	}
	v *= sign
	n++
	for n+1 < len(toks) && toks[n].kind == tokPunct && (toks[n].text == "+" || toks[n].text == "-") && toks[n+1].kind == tokWord {
		w, ok, err := asm.word(toks[n+1].text)
		if err != nil {
			return 0, false, 0, err
		}
		known = known && ok
		if toks[n].text == "+" {
			v += w
		} else {
			v -= w
		}
		n += 2
	}
	return v, known, n, nil
}

// parseConstant evaluates a directive argument, which must be defined.
func (asm *Assembler) parseConstant(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 3 && s[0] == '\'' && s[2] == '\'' {
		return int(s[1]), nil
	}
	toks, err := tokenize(s)
	if err != nil {
		return 0, err
	}
	v, known, n, err := asm.expr(toks)
	if err != nil {
		return 0, err
	}
	if n != len(toks) {
		return 0, fmt.Errorf("invalid expression: %s", s)
	}
	if !known {
		return 0, fmt.Errorf("undefined symbol in %s", s)
	}
	return v, nil
}

// parseLines converts raw source lines into a slice of Node objects.
func (asm *Assembler) parseLines(lines []string) ([]*Node, error) {
	var nodes []*Node
	defined := make(map[string]bool)
	define := func(name string, line int) error {
		if defined[name] {
			return fmt.Errorf("line %d: %s defined twice", line, name)
		}
		defined[name] = true
		return nil
	}
	for i, line := range lines {
		if commentIndex := strings.IndexRune(line, ';'); commentIndex != -1 && !inQuote(line, commentIndex) {
			line = line[:commentIndex]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if colon := strings.IndexByte(line, ':'); colon > 0 && !inQuote(line, colon) {
			label := strings.TrimSpace(line[:colon])
			if !strings.ContainsAny(label, " \t") {
				if err := define(strings.ToLower(label), i+1); err != nil {
					return nil, err
				}
				nodes = append(nodes, &Node{Type: NodeLabel, Line: i + 1, Label: strings.ToLower(label)})
				line = strings.TrimSpace(line[colon+1:])
			}
		}

		if line == "" {
			continue
		}

		var mnemonic, operandStr string
		firstSpace := strings.IndexAny(line, " \t")
		if firstSpace == -1 {
			mnemonic = line
		} else {
			mnemonic = line[:firstSpace]
			operandStr = strings.TrimSpace(line[firstSpace:])
		}
		mnemonic = strings.ToLower(mnemonic)

		// NAME equ VALUE
		if f := strings.Fields(operandStr); len(f) > 0 && strings.ToLower(f[0]) == "equ" {
			if err := define(mnemonic, i+1); err != nil {
				return nil, err
			}
			nodes = append(nodes, &Node{
				Type:     NodeDirective,
				Line:     i + 1,
				Label:    mnemonic,
				Mnemonic: "equ",
				Args:     strings.TrimSpace(operandStr[len(f[0]):]),
			})
			continue
		}

		switch mnemonic {
		case "org", "db", "dw", "ds":
			nodes = append(nodes, &Node{Type: NodeDirective, Line: i + 1, Mnemonic: mnemonic, Args: operandStr})
			continue
		}

		if _, ok := forms[mnemonic]; !ok {
			return nil, fmt.Errorf("line %d: unknown instruction: %s", i+1, mnemonic)
		}
		operands, err := tokenize(operandStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		nodes = append(nodes, &Node{Type: NodeInstruction, Line: i + 1, Mnemonic: mnemonic, Operands: operands})
	}
	return nodes, nil
}

// inQuote reports whether s[pos] is inside a quoted string.
func inQuote(s string, pos int) bool {
	var q byte
	for i := 0; i < pos; i++ {
		switch {
		case q == 0 && (s[i] == '\'' || s[i] == '"'):
			q = s[i]
		case q != 0 && s[i] == q:
			q = 0
		}
	}
	return q != 0
}
