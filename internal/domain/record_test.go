package domain

import (
	"errors"
	"testing"
)

func validRecord() VideoRecord {
	return VideoRecord{
		ID:     "v1",
		Title:  "A Video",
		Status: VideoDraft,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*VideoRecord)
		wantErr bool
	}{
		{"valid", func(v *VideoRecord) {}, false},
		{"missing id", func(v *VideoRecord) { v.ID = "" }, true},
		{"missing title", func(v *VideoRecord) { v.Title = "" }, true},
		{"missing status", func(v *VideoRecord) { v.Status = "" }, true},
		{"bogus status", func(v *VideoRecord) { v.Status = "exploded" }, true},
		{"negative duration", func(v *VideoRecord) { v.DurationSeconds = -1 }, true},
		{"published", func(v *VideoRecord) { v.Status = VideoPublished }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := validRecord()
			tc.mutate(&record)
			err := record.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestHasRendition(t *testing.T) {
	record := validRecord()
	if record.HasRendition(Resolution360p) {
		t.Fatal("empty record reports rendition")
	}

	record.Renditions = map[Resolution]Rendition{
		Resolution360p:  {Ready: true},
		Resolution1080p: {Error: "encode failed"},
	}
	if !record.HasRendition(Resolution360p) {
		t.Fatal("ready rendition not reported")
	}
	if record.HasRendition(Resolution1080p) {
		t.Fatal("failed rendition reported as ready")
	}
	if record.HasRendition(Resolution720p) {
		t.Fatal("absent rendition reported as ready")
	}
}

func TestParseResolution(t *testing.T) {
	for _, value := range []string{"360p", "480p", "720p", "1080p"} {
		res, err := ParseResolution(value)
		if err != nil {
			t.Errorf("ParseResolution(%q) error = %v", value, err)
		}
		if string(res) != value {
			t.Errorf("ParseResolution(%q) = %s", value, res)
		}
	}
	for _, value := range []string{"", "4k", "240p", "720", "720P "} {
		if _, err := ParseResolution(value); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("ParseResolution(%q) error = %v, want ErrInvalidResolution", value, err)
		}
	}
}

func TestResolutionsOrder(t *testing.T) {
	got := Resolutions()
	want := []Resolution{Resolution360p, Resolution480p, Resolution720p, Resolution1080p}
	if len(got) != len(want) {
		t.Fatalf("Resolutions() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Resolutions()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestParseVideoStatus(t *testing.T) {
	status, err := ParseVideoStatus(" Published ")
	if err != nil || status != VideoPublished {
		t.Fatalf("ParseVideoStatus = %s, %v", status, err)
	}
	if _, err := ParseVideoStatus("exploded"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("ParseVideoStatus error = %v, want ErrInvalidStatus", err)
	}
}
