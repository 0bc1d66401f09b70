package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvatarContentType(t *testing.T) {
	ct, ok := AvatarContentType("portrait.PNG")
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	ct, ok = AvatarContentType("me.jpg")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	_, ok = AvatarContentType("resume.pdf")
	assert.False(t, ok)

	_, ok = AvatarContentType("noextension")
	assert.False(t, ok)
}

func TestAvatarKey(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	key := avatarKey("u1", "me.png", now)
	assert.Equal(t, "avatars/u1/1749988800000-me.png", key)

	// Path components in the filename are stripped.
	key = avatarKey("u1", "../../etc/passwd.png", now)
	assert.Equal(t, "avatars/u1/1749988800000-passwd.png", key)
}
