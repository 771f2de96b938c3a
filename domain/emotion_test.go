package domain

import (
	"strings"
	"testing"
)

func TestAnnotateEmptyReading(t *testing.T) {
	reading := EmotionReading{}
	if got := reading.Annotate("hello"); got != "hello" {
		t.Errorf("Empty reading must leave transcript unchanged, got %q", got)
	}

	var nilReading EmotionReading
	if got := nilReading.Annotate("hello"); got != "hello" {
		t.Errorf("Nil reading must leave transcript unchanged, got %q", got)
	}
}

func TestAnnotateAppendsReading(t *testing.T) {
	reading := EmotionReading{
		{
			StartTime: 0.5,
			EndTime:   1.25,
			Emotions:  []EmotionScore{{Name: "Joy", Score: 0.91}},
		},
	}

	got := reading.Annotate("hello")
	if !strings.HasPrefix(got, "hello. This is the emotional state of the user when they spoke these words. ") {
		t.Errorf("Annotation sentence missing or wrong: %q", got)
	}
	if !strings.Contains(got, `"Joy"`) {
		t.Errorf("Serialized reading missing from annotation: %q", got)
	}
	if !strings.Contains(got, `"startTime": 0.5`) {
		t.Errorf("Segment timing missing from annotation: %q", got)
	}
}
