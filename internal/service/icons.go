package service

import (
	"path/filepath"
	"strings"
)

var fileIcons = map[string]string{
	".pdf":  "📕",
	".doc":  "📘",
	".docx": "📘",
	".xls":  "📗",
	".xlsx": "📗",
	".ppt":  "📙",
	".pptx": "📙",
	".txt":  "📄",
	".zip":  "📦",
	".rar":  "📦",
	".png":  "🖼️",
	".jpg":  "🖼️",
	".jpeg": "🖼️",
	".gif":  "🖼️",
	".mp4":  "🎬",
	".avi":  "🎬",
	".mov":  "🎬",
	".mp3":  "🎵",
	".wav":  "🎵",
}

// FileIcon maps a filename to a display icon by extension.
func FileIcon(filename string) string {
	if icon, ok := fileIcons[strings.ToLower(filepath.Ext(filename))]; ok {
		return icon
	}
	return "📎"
}
