package services

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

const (
	handlePartLen  = 4
	maxHandleLen   = 15
	fallbackHandle = "user"
)

// baseHandle is the lowercased first four runes of each name, concatenated.
func baseHandle(first, last string) string {
	base := prefix(strings.ToLower(first), handlePartLen) + prefix(strings.ToLower(last), handlePartLen)
	if base == "" {
		return fallbackHandle
	}
	return base
}

func prefix(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// handleCandidate returns the i-th candidate for base: base itself for 0,
// base+i otherwise. ok is false once the candidate no longer fits the
// username column.
func handleCandidate(base string, i int) (candidate string, ok bool) {
	candidate = base
	if i > 0 {
		candidate = base + strconv.Itoa(i)
	}
	return candidate, utf8.RuneCountInString(candidate) <= maxHandleLen
}

// generateHandle returns the base handle, or the base followed by the
// smallest free suffix 1, 2, 3... It gives up after maxHandleAttempts
// candidates or when the suffix would overflow the username column.
func (s *SessionService) generateHandle(ctx context.Context, repo users.Repository, first, last string) (string, error) {
	base := baseHandle(first, last)

	for i := 0; i < s.maxHandleAttempts; i++ {
		candidate, ok := handleCandidate(base, i)
		if !ok {
			break
		}

		taken, err := repo.UsernameExists(ctx, candidate)
		if err != nil {
			s.log.Error(ctx, "handle lookup failed", "candidate", candidate, "error", err)
			return "", common.ErrorInternal
		}
		if !taken {
			return candidate, nil
		}
	}

	s.log.Warn(ctx, "handle space exhausted", "base", base, "attempts", s.maxHandleAttempts)
	return "", common.ErrHandleExhausted
}
