package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
)

const memberSeparator = ":"

// signOf classifies a signed difference; zero counts as positive
func signOf(diff float64) string {
	if diff >= 0 {
		return models.SignPositive
	}
	return models.SignNegative
}

// EncodeMember builds the ranking member "<nickname>:<sign>:<epochMillis>"
func EncodeMember(nickname, sign string, timestamp int64) string {
	return nickname + memberSeparator + sign + memberSeparator + strconv.FormatInt(timestamp, 10)
}

// ParseMember splits a ranking member back into its parts. Sign and timestamp
// are taken from the right so nicknames containing ':' survive.
func ParseMember(member string) (nickname, sign string, timestamp int64, err error) {
	tsIdx := strings.LastIndex(member, memberSeparator)
	if tsIdx < 0 {
		return "", "", 0, fmt.Errorf("malformed member %q", member)
	}
	signIdx := strings.LastIndex(member[:tsIdx], memberSeparator)
	if signIdx < 0 {
		return "", "", 0, fmt.Errorf("malformed member %q", member)
	}

	nickname = member[:signIdx]
	sign = member[signIdx+1 : tsIdx]
	if sign != models.SignPositive && sign != models.SignNegative {
		return "", "", 0, fmt.Errorf("unknown sign %q in member %q", sign, member)
	}

	timestamp, err = strconv.ParseInt(member[tsIdx+1:], 10, 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid timestamp in member %q: %w", member, err)
	}

	return nickname, sign, timestamp, nil
}

// signedDiff restores the signed difference from an absolute score
func signedDiff(sign string, score float64) float64 {
	if sign == models.SignNegative {
		return -score
	}
	return score
}
