package domain

import (
	"errors"
	"strings"
)

type VideoStatus string

const (
	VideoDraft      VideoStatus = "draft"
	VideoProcessing VideoStatus = "processing"
	VideoPublished  VideoStatus = "published"
	VideoArchived   VideoStatus = "archived"
)

var ErrInvalidStatus = errors.New("invalid video status")

func ParseVideoStatus(value string) (VideoStatus, error) {
	switch VideoStatus(strings.ToLower(strings.TrimSpace(value))) {
	case VideoDraft:
		return VideoDraft, nil
	case VideoProcessing:
		return VideoProcessing, nil
	case VideoPublished:
		return VideoPublished, nil
	case VideoArchived:
		return VideoArchived, nil
	default:
		return "", ErrInvalidStatus
	}
}
