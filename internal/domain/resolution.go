package domain

// Resolution is one of the four fixed output quality tiers.
type Resolution string

const (
	Resolution360p  Resolution = "360p"
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// Quality holds the encode parameters for a resolution tier.
type Quality struct {
	Width   int
	Height  int
	Bitrate string
}

var qualityTable = map[Resolution]Quality{
	Resolution360p:  {Width: 640, Height: 360, Bitrate: "800k"},
	Resolution480p:  {Width: 854, Height: 480, Bitrate: "1400k"},
	Resolution720p:  {Width: 1280, Height: 720, Bitrate: "2800k"},
	Resolution1080p: {Width: 1920, Height: 1080, Bitrate: "5000k"},
}

// Resolutions returns all tiers in ascending encode order.
func Resolutions() []Resolution {
	return []Resolution{Resolution360p, Resolution480p, Resolution720p, Resolution1080p}
}

// ParseResolution validates a raw resolution value from a request path.
func ParseResolution(raw string) (Resolution, error) {
	res := Resolution(raw)
	if _, ok := qualityTable[res]; !ok {
		return "", ErrInvalidResolution
	}
	return res, nil
}

// QualityFor returns the encode parameters for the given tier.
// Unknown tiers fall back to 720p, matching the encoder's defaults.
func QualityFor(res Resolution) Quality {
	if q, ok := qualityTable[res]; ok {
		return q
	}
	return qualityTable[Resolution720p]
}
