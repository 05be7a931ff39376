package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Chain holds an ordered list of rules. The first rule matching a path
// decides; a path no rule matches is kept.
type Chain struct {
	rules []Rule
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	r, err := NewRule(pattern, include)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, r)
	return nil
}

// Rules returns the rules in evaluation order.
func (c *Chain) Rules() []Rule {
	return c.rules
}

// Empty reports whether the chain has no rules. A nil chain is empty.
func (c *Chain) Empty() bool {
	return c == nil || len(c.rules) == 0
}

// Excluded reports whether relPath should be left out of a scan. A nil chain
// excludes nothing.
func (c *Chain) Excluded(relPath string, isDir bool) bool {
	if c == nil {
		return false
	}
	for _, r := range c.rules {
		if r.Matches(relPath, isDir) {
			return !r.Include
		}
	}
	return false
}

// LoadFile appends the rules in a filter file. Blank lines and lines
// starting with "#" are skipped.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r, err := ParseRule(line)
		if err != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, lineNum, err)
		}
		c.rules = append(c.rules, r)
	}

	return scanner.Err()
}
