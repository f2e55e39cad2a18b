package assembler

import (
	"fmt"
	"strings"
)

// getDirectiveSize calculates the byte size of a data directive for the sizing pass.
func (asm *Assembler) getDirectiveSize(n *Node) (int, error) {
	switch n.Mnemonic {
	case "db", "dw":
		if strings.TrimSpace(n.Args) == "" {
			return 0, fmt.Errorf("%s requires at least one value", n.Mnemonic)
		}
		return calculateDataSize(n.Mnemonic, n.Args), nil

	case "ds":
		count, err := asm.parseConstant(n.Args)
		if err != nil {
			return 0, fmt.Errorf("invalid count for ds: %v", err)
		}
		if count < 0 {
			return 0, fmt.Errorf("negative count for ds: %d", count)
		}
		return count, nil

	default:
		return 0, fmt.Errorf("unknown directive: %s", n.Mnemonic)
	}
}

// generateDirectiveCode generates the binary data for assembler directives.
func (asm *Assembler) generateDirectiveCode(n *Node) ([]byte, error) {
	switch n.Mnemonic {
	case "equ":
		_, err := asm.parseConstant(n.Args)
		return nil, err

	case "db", "dw":
		return asm.assembleData(n.Mnemonic, n.Args)

	case "ds":
		return make([]byte, n.Size), nil

	default:
		return nil, fmt.Errorf("unknown directive: %s", n.Mnemonic)
	}
}

// calculateDataSize determines the byte size of a db or dw directive.
func calculateDataSize(directive, values string) int {
	elementSize := getElementSize(directive)
	size := 0
	for _, tok := range splitDataValues(values) {
		if tok.Quoted {
			size += len(tok.Value)
		} else {
			size += elementSize
		}
	}
	return size
}

// assembleData generates the bytes of a db or dw directive. Words are
// little-endian.
func (asm *Assembler) assembleData(directive, values string) ([]byte, error) {
	elementSize := getElementSize(directive)
	var bytesBuf []byte

	for _, tok := range splitDataValues(values) {
		if tok.Quoted {
			bytesBuf = append(bytesBuf, []byte(tok.Value)...)
			continue
		}

		val, err := asm.parseConstant(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid constant '%s': %v", tok.Value, err)
		}

		switch elementSize {
		case 1:
			if val < -128 || val > 0xFF {
				return nil, fmt.Errorf("value %d does not fit in a byte", val)
			}
			bytesBuf = append(bytesBuf, byte(val))
		case 2:
			if val < -0x8000 || val > 0xFFFF {
				return nil, fmt.Errorf("value %d does not fit in a word", val)
			}
			bytesBuf = append(bytesBuf, byte(val), byte(val>>8))
		}
	}

	return bytesBuf, nil
}

// dataToken is one db or dw value, either a number or a quoted string.
type dataToken struct {
	Value  string
	Quoted bool
}

// splitDataValues splits a db or dw operand list on commas outside quotes.
func splitDataValues(s string) []dataToken {
	var tokens []dataToken
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		if q := s[0]; q == '\'' || q == '"' {
			end := strings.IndexByte(s[1:], q)
			if end < 0 {
				// Unterminated strings are dropped.
				break
			}
			tokens = append(tokens, dataToken{Value: s[1 : end+1], Quoted: true})
			s = strings.TrimPrefix(strings.TrimSpace(s[end+2:]), ",")
			continue
		}

		val, rest, _ := strings.Cut(s, ",")
		if val = strings.TrimSpace(val); val != "" {
			tokens = append(tokens, dataToken{Value: val})
		}
		s = rest
	}
	return tokens
}

// getElementSize returns element size in bytes for data directives.
func getElementSize(directive string) int {
	if directive == "dw" {
		return 2
	}
	return 1
}
