package icon

import (
	"bufio"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned when no icon can be derived for a file type.
var ErrUnsupported = errors.New("icon: unsupported file type")

// SystemExtractor derives freedesktop icon names from file metadata.
type SystemExtractor struct{}

// Extract inspects path and returns a freshly allocated bitmap.
func (SystemExtractor) Extract(path string) (*Bitmap, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("icon: %s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".exe":
		return &Bitmap{Name: "application-x-executable", Glyph: "▶"}, nil
	case ".lnk":
		return &Bitmap{Name: "emblem-symbolic-link", Glyph: "↗"}, nil
	case ".desktop":
		name, err := desktopIconName(path)
		if err != nil {
			return nil, err
		}
		return &Bitmap{Name: name, Glyph: "▶"}, nil
	}
	if info.Mode()&0o111 != 0 && ext == "" {
		return &Bitmap{Name: "application-x-executable", Glyph: "▶"}, nil
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return nil, ErrUnsupported
	}
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return &Bitmap{Name: iconNameForMIME(mimeType), Glyph: glyphForMIME(mimeType)}, nil
}

func desktopIconName(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if value, ok := strings.CutPrefix(line, "Icon="); ok && value != "" {
			return value, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}
	return "application-x-executable", nil
}

func iconNameForMIME(mimeType string) string {
	return strings.ReplaceAll(mimeType, "/", "-")
}

func glyphForMIME(mimeType string) string {
	major, _, _ := strings.Cut(mimeType, "/")
	switch major {
	case "text":
		return "≡"
	case "image":
		return "▣"
	case "audio":
		return "♪"
	case "video":
		return "►"
	default:
		return "•"
	}
}
