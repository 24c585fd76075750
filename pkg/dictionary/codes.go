package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"verity-hq/ganymede/pkg/pel/ast"
)

// CodeEntry describes a medical billing/diagnosis code resolved from
// the code dictionary. SourceKey is the dictionary key that matched,
// which for range entries differs from the code itself.
type CodeEntry struct {
	Code        string
	CodeType    string
	Description string
	SourceKey   string
}

// CodeDictionary indexes CPT/ICD codes. Keys containing a dash are
// treated as inclusive ranges ("E66.0-E66.9") and matched by string
// order against codes of the same length.
type CodeDictionary struct {
	index  map[string]*CodeEntry
	ranges []*CodeEntry
}

// NewCodeDictionary builds a dictionary from the nested code file
// shape: code type → {code or range key → description}.
func NewCodeDictionary(data map[string]map[string]string) *CodeDictionary {
	d := &CodeDictionary{index: make(map[string]*CodeEntry)}

	for codeType, entries := range data {
		for key, description := range entries {
			entry := &CodeEntry{
				Code:        key,
				CodeType:    codeType,
				Description: description,
				SourceKey:   key,
			}
			if strings.Contains(key, "-") && !strings.HasPrefix(key, "-") {
				d.ranges = append(d.ranges, entry)
			} else {
				d.index[strings.ToUpper(key)] = entry
			}
		}
	}

	return d
}

// LoadCodeFile reads a code dictionary from a JSON file.
func LoadCodeFile(path string) (*CodeDictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code dictionary %q: %w", path, err)
	}

	var data map[string]map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid code dictionary %q: %w", path, err)
	}

	return NewCodeDictionary(data), nil
}

// Lookup resolves a code to its dictionary entry, trying an exact match
// first and falling back to range entries.
func (d *CodeDictionary) Lookup(code string) (*CodeEntry, bool) {
	if d == nil {
		return nil, false
	}

	normalized := strings.ToUpper(code)
	if direct, ok := d.index[normalized]; ok {
		return &CodeEntry{
			Code:        normalized,
			CodeType:    direct.CodeType,
			Description: direct.Description,
			SourceKey:   direct.SourceKey,
		}, true
	}

	for _, entry := range d.ranges {
		if codeInRange(normalized, entry.SourceKey) {
			return &CodeEntry{
				Code:        normalized,
				CodeType:    entry.CodeType,
				Description: entry.Description,
				SourceKey:   entry.SourceKey,
			}, true
		}
	}

	return nil, false
}

// codeInRange checks a code against an inclusive "start-end" range key.
// Codes only match ranges of the same code length, so "E66.01" does not
// fall into "E66.0-E66.9".
func codeInRange(code, rangeKey string) bool {
	start, end, ok := strings.Cut(rangeKey, "-")
	if !ok {
		return false
	}
	if len(code) != len(start) {
		return false
	}
	return strings.ToUpper(start) <= code && code <= strings.ToUpper(end)
}

// ExtractCodes resolves the codes referenced by a comparison leaf's
// operand. Only string literals that look like codes (contain a digit)
// are considered; duplicates are collapsed, order preserved.
func (d *CodeDictionary) ExtractCodes(leaf *ast.ConditionNode) []*CodeEntry {
	if d == nil || leaf == nil || !leaf.IsComparison() {
		return nil
	}

	var literals []*ast.Literal
	switch leaf.Operand.Kind {
	case ast.OperandScalar:
		literals = []*ast.Literal{leaf.Operand.Scalar}
	case ast.OperandList:
		literals = leaf.Operand.List
	case ast.OperandRange:
		literals = []*ast.Literal{leaf.Operand.Low, leaf.Operand.High}
	}

	var entries []*CodeEntry
	seen := make(map[string]bool)
	for _, lit := range literals {
		if lit.Kind != ast.LiteralString || !looksLikeCode(lit.Text) {
			continue
		}
		normalized := strings.ToUpper(lit.Text)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		if entry, ok := d.Lookup(normalized); ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

// looksLikeCode accepts tokens with at least one digit, filtering out
// plain words like 'TRUE' or 'active'.
func looksLikeCode(token string) bool {
	for _, r := range token {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
