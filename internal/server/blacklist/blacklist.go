// Package blacklist holds the set of email domains that may not register.
// A Blacklist is built once at startup and never mutated, so it is safe for
// concurrent use without locking.
package blacklist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"golang.org/x/net/idna"
)

type Blacklist struct {
	domains map[string]struct{}
}

// New builds a blacklist from domains. Entries that fail IDNA
// normalisation are returned as an error.
func New(domains ...string) (*Blacklist, error) {
	b := &Blacklist{domains: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		n, err := NormalizeDomain(d)
		if err != nil {
			return nil, fmt.Errorf("blacklist entry %q: %w", d, err)
		}
		b.domains[n] = struct{}{}
	}
	return b, nil
}

// Parse reads one domain per line. Blank lines and lines starting with '#'
// are skipped.
func Parse(r io.Reader) (*Blacklist, error) {
	var domains []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(domains...)
}

func LoadFile(path string) (*Blacklist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// NormalizeDomain maps a domain to its lower-case ASCII (punycode) form
// using UTS #46 lookup processing.
func NormalizeDomain(domain string) (string, error) {
	return idna.Lookup.ToASCII(strings.TrimSuffix(strings.TrimSpace(domain), "."))
}

func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.domains)
}

// Contains reports whether the normalised domain is listed.
func (b *Blacklist) Contains(domain string) bool {
	if b == nil {
		return false
	}
	_, ok := b.domains[domain]
	return ok
}

// Check validates the shape of email and rejects blacklisted domains with
// common.ErrBlacklisted. Malformed addresses yield common.ErrValidation.
// A nil Blacklist only validates the shape.
func (b *Blacklist) Check(email string) error {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return fmt.Errorf("%w: not a valid email address", common.ErrValidation)
	}

	n, err := NormalizeDomain(domain)
	if err != nil || n == "" {
		return fmt.Errorf("%w: not a valid email address", common.ErrValidation)
	}
	if b.Contains(n) {
		return fmt.Errorf("%w: email addresses from %q are not allowed", common.ErrBlacklisted, domain)
	}
	return nil
}
