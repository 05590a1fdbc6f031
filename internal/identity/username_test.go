package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveUsername(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	tests := []struct {
		name     string
		fullName string
		want     string
	}{
		{"latin", "John Smith", "johnsmith"},
		{"vietnamese diacritics", "Nguyễn Văn An", "nguyenvanan"},
		{"vietnamese d with stroke", "Đặng Thị Hà", "dangthiha"},
		{"han characters", "王伟", "wangwei"},
		{"mixed scripts", "李 Anna-2", "lianna2"},
		{"punctuation only", "!!! ---", "user20240305140709"},
		{"empty", "", "user20240305140709"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUsername(tt.fullName, now))
		})
	}
}

func TestMatchesBase(t *testing.T) {
	assert.True(t, MatchesBase("johnsmith", "johnsmith"))
	assert.True(t, MatchesBase("johnsmith12", "johnsmith"))
	assert.False(t, MatchesBase("johnsmithx", "johnsmith"))
	assert.False(t, MatchesBase("janesmith", "johnsmith"))
	assert.False(t, MatchesBase("john", "johnsmith"))
}

func TestKeepsUsername(t *testing.T) {
	assert.True(t, KeepsUsername("johnsmith2", "John Smith"))
	assert.False(t, KeepsUsername("johnsmith", "Jane Smith"))
	assert.True(t, KeepsUsername("user20240102030405", "Иван Петров"))
	assert.True(t, KeepsUsername("user202401020304051", "Иван Петров"))
	assert.False(t, KeepsUsername("ivanpetrov", "Иван Петров"))
	assert.False(t, KeepsUsername("user2024", "Иван Петров"))
}
