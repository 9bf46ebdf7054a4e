// Package blob defines the file storage used for media, costume images,
// avatars and gallery photos.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressFunc receives upload progress in bytes. total may be 0 when unknown.
type ProgressFunc func(sent, total int64)

// Store uploads and deletes objects by path. Deleting a path that does not
// exist succeeds, so deletes can be retried safely.
type Store interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader, size int64, progress ProgressFunc) (url string, err error)
	Delete(ctx context.Context, path string) error
}

func cleanName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
}

// MediaPath is teams/<team>/repertoire/<item>/<unixms>_<file>
func MediaPath(team, repertoireID, fileName string, now time.Time) string {
	return fmt.Sprintf("teams/%s/repertoire/%s/%d_%s", team, repertoireID, now.UnixMilli(), cleanName(fileName))
}

// CostumeImagePath is teams/<team>/costumes/<unixms>_<file>
func CostumeImagePath(team, fileName string, now time.Time) string {
	return fmt.Sprintf("teams/%s/costumes/%d_%s", team, now.UnixMilli(), cleanName(fileName))
}

// AvatarPath is teams/<team>/avatars/<member>_<unixms>
func AvatarPath(team, memberID string, now time.Time) string {
	return fmt.Sprintf("teams/%s/avatars/%s_%d", team, memberID, now.UnixMilli())
}

// PhotoPath is teams/<team>/gallery/<album>/<unixms>_<file>
func PhotoPath(team, albumID, fileName string, now time.Time) string {
	return fmt.Sprintf("teams/%s/gallery/%s/%d_%s", team, albumID, now.UnixMilli(), cleanName(fileName))
}
