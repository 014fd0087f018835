// Package slug derives URL-safe unique identifiers from post titles.
package slug

import (
	"context"
	"strconv"
	"strings"

	goslug "github.com/gosimple/slug"
)

// Fallback is the base slug used when a title normalizes to nothing.
const Fallback = "post"

// ExistsFunc reports whether candidate is already held by another record.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Make converts a title into its base slug: lower-case ASCII letters and
// digits separated by single hyphens. Non-ASCII letters are transliterated,
// everything else is a separator.
func Make(title string) string {
	s := goslug.MakeLang(title, "en")
	s = strings.ReplaceAll(s, "_", "-")
	s = collapseHyphens(s)
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// Candidate returns the n-th probe for base: base itself for n == 0,
// otherwise base-n.
func Candidate(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Resolve returns the first free candidate for title's base slug, probing
// base, base-1, base-2, ... in order.
func Resolve(ctx context.Context, title string, exists ExistsFunc) (string, error) {
	return Unique(ctx, Make(title), exists)
}

// ResolveForUpdate keeps current when title still maps to it. Otherwise it
// probes like Resolve; exists is expected to ignore the record being edited.
func ResolveForUpdate(ctx context.Context, title, current string, exists ExistsFunc) (string, error) {
	base := Make(title)
	if base == current {
		return current, nil
	}
	return Unique(ctx, base, exists)
}

// Unique probes base and its numbered variants until exists reports false.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := Candidate(base, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func collapseHyphens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
