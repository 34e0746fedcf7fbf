package service

import (
	"testing"

	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMember(t *testing.T) {
	tests := []struct {
		name         string
		member       string
		wantNickname string
		wantSign     string
		wantTS       int64
		wantErr      bool
	}{
		{name: "plain", member: "alice:POSITIVE:1760800000000", wantNickname: "alice", wantSign: models.SignPositive, wantTS: 1760800000000},
		{name: "colon in nickname", member: "a:b:NEGATIVE:17", wantNickname: "a:b", wantSign: models.SignNegative, wantTS: 17},
		{name: "unicode nickname", member: "빠른사자42:NEGATIVE:5", wantNickname: "빠른사자42", wantSign: models.SignNegative, wantTS: 5},
		{name: "no separators", member: "alice", wantErr: true},
		{name: "missing sign", member: "alice:17", wantErr: true},
		{name: "unknown sign", member: "alice:ZERO:17", wantErr: true},
		{name: "bad timestamp", member: "alice:POSITIVE:soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nickname, sign, ts, err := ParseMember(tt.member)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNickname, nickname)
			assert.Equal(t, tt.wantSign, sign)
			assert.Equal(t, tt.wantTS, ts)
		})
	}
}

func TestEncodeMember(t *testing.T) {
	assert.Equal(t, "alice:NEGATIVE:42", EncodeMember("alice", signOf(-0.5), 42))
	assert.Equal(t, "alice:POSITIVE:42", EncodeMember("alice", signOf(0), 42))
}

func TestSignedDiff(t *testing.T) {
	assert.Equal(t, -120.0, signedDiff(models.SignNegative, 120))
	assert.Equal(t, 75.0, signedDiff(models.SignPositive, 75))
}
