package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name, in, ct, want string
	}{
		{"plain", "photo.png", "image/png", "photo.png"},
		{"case kept", "Photo.PNG", "image/png", "Photo.PNG"},
		{"spaces", "my trophy (1).jpg", "image/jpeg", "my-trophy-1.jpg"},
		{"windows path", `C:\Users\x\award.gif`, "image/gif", "award.gif"},
		{"unix path", "../../etc/passwd", "image/png", "passwd.png"},
		{"no extension", "logo", "image/webp", "logo.webp"},
		{"empty", "", "image/jpeg", "image.jpg"},
		{"only symbols", "###.png", "image/png", "image.png"},
		{"dotfile", ".hidden", "image/png", "image.hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFileName(tt.in, tt.ct))
		})
	}
}

func TestParseStagedName(t *testing.T) {
	name, ok := parseStagedName("s1-169900-photo.png", "s1")
	assert.True(t, ok)
	assert.Equal(t, "photo.png", name)

	name, ok = parseStagedName("s1-169900-my-photo.png", "s1")
	assert.True(t, ok)
	assert.Equal(t, "my-photo.png", name)

	for _, base := range []string{"s2-169900-photo.png", "s12-169900-photo.png", "s1-abc-photo.png", "s1-169900", "s1--photo.png"} {
		_, ok := parseStagedName(base, "s1")
		assert.False(t, ok, base)
	}
}

func TestNumbered(t *testing.T) {
	assert.Equal(t, "logo-2.png", numbered("logo.png", 2))
	assert.Equal(t, "logo-3", numbered("logo", 3))
}

func TestTooLargeMessage(t *testing.T) {
	assert.Equal(t, "file size 3.00 MB exceeds the maximum allowed size of 2.00 MB", tooLargeMessage(3*mib, 2*mib))
	assert.Equal(t, "file size 1.50 KB exceeds the maximum allowed size of 1.00 KB", tooLargeMessage(1536, kib))
	assert.Equal(t, "file size 12 B exceeds the maximum allowed size of 10 B", tooLargeMessage(12, 10))
}
