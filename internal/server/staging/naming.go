package staging

import (
	"mime"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// Session ids exclude '-' because '-' separates the id from the stamp in a
// staged name; with dashes "s1" would also claim the files of "s1-2".
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxStemLength = 100

var extensionByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func validateSessionID(id string) error {
	if id == "" {
		return common.NewValidationError("sessionId", "must not be empty")
	}
	if !sessionIDPattern.MatchString(id) {
		return common.NewValidationError("sessionId", "may contain only letters, digits and '_' (max 64)")
	}
	return nil
}

// normalizeContentType drops parameters and lowercases the media type.
func normalizeContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

// sanitizeFileName reduces an uploaded file name to a safe base name,
// keeping its case. A missing extension is derived from the content type.
func sanitizeFileName(name, contentType string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	stem = unsafeNameChars.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, "-.")
	if len(stem) > maxStemLength {
		stem = strings.TrimRight(stem[:maxStemLength], "-.")
	}
	if stem == "" {
		stem = "image"
	}

	ext = unsafeNameChars.ReplaceAllString(ext, "")
	if ext == "" || ext == "." {
		ext = extensionByType[contentType]
	}
	return stem + ext
}

// stagedName builds "<session>-<stamp>-<name>".
func stagedName(sessionID string, stamp int64, name string) string {
	return sessionID + "-" + strconv.FormatInt(stamp, 10) + "-" + name
}

// parseStagedName splits a staged base name owned by sessionID and returns
// the original (sanitized) name with the session and stamp removed.
func parseStagedName(base, sessionID string) (string, bool) {
	rest, ok := strings.CutPrefix(base, sessionID+"-")
	if !ok {
		return "", false
	}
	stamp, name, ok := strings.Cut(rest, "-")
	if !ok || stamp == "" || name == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(stamp, 10, 64); err != nil {
		return "", false
	}
	return name, true
}

// numbered returns name with "-n" inserted before the extension.
func numbered(name string, n int) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
}
