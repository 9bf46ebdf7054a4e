package model

import "regexp"

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// YouTubeThumbnail returns the high-quality thumbnail URL for the item's video link,
// or "" when the link does not carry a video id
func (r RepertoireItem) YouTubeThumbnail() string {
	return youtubeThumbnail(r.YoutubeLink)
}

func youtubeThumbnail(link string) string {
	if link == "" {
		return ""
	}
	match := youtubeIDPattern.FindStringSubmatch(link)
	if len(match) < 3 || len(match[2]) != 11 {
		return ""
	}
	return "https://img.youtube.com/vi/" + match[2] + "/hqdefault.jpg"
}
