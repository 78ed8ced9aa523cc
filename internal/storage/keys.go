package storage

import (
	"errors"
	"path"
	"strings"
)

// DefaultVideosDir is where clips are kept unless configured otherwise.
const DefaultVideosDir = "data/videos"

var ErrUnsupportedFormat = errors.New("unsupported video format, expected .mp4 or .mov")

var videoContentTypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
}

// VideoExt returns the lower-cased extension of name, ".mp4" when it has none.
func VideoExt(name string) (string, error) {
	ext := strings.ToLower(path.Ext(baseName(name)))
	if ext == "" {
		ext = ".mp4"
	}
	if _, ok := videoContentTypes[ext]; !ok {
		return "", ErrUnsupportedFormat
	}
	return ext, nil
}

// VideoKey builds "<dir>/<uid>_<stem><ext>" for an uploaded file name.
func VideoKey(dir, uid, name string) (string, error) {
	ext, err := VideoExt(name)
	if err != nil {
		return "", err
	}
	base := baseName(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	key := uid + "_" + stem + ext
	if dir = strings.Trim(dir, "/"); dir != "" {
		key = dir + "/" + key
	}
	return key, nil
}

// ContentType maps a video key to its MIME type.
func ContentType(key string) string {
	if ct, ok := videoContentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Stem is the file name without directory or extension.
func Stem(name string) string {
	base := baseName(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// browsers may send Windows paths
func baseName(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}
