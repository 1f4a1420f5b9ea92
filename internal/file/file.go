package file

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Folder string

const (
	FolderAttachments Folder = "attachments"
	FolderAvatars     Folder = "avatars"
)

func ParseFolder(s string) (Folder, bool) {
	switch f := Folder(s); f {
	case FolderAttachments, FolderAvatars:
		return f, true
	}
	return "", false
}

// AcceptedTypes lists the content types uploads may have.
var AcceptedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ObjectName builds "<folder>/<userId>/<unixMillis>-<random>.<ext>".
func ObjectName(folder Folder, userID, filename string, now time.Time) string {
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
	if ext := strings.ToLower(path.Ext(filename)); validExt(ext) {
		name += ext
	}
	return path.Join(string(folder), userID, name)
}

// OwnerOf returns the user id segment of an object name.
func OwnerOf(object string) (string, bool) {
	parts := strings.Split(object, "/")
	if len(parts) != 3 {
		return "", false
	}
	if _, ok := ParseFolder(parts[0]); !ok || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
