package domain

import "encoding/json"

// EmotionScore is one named emotion with its predicted intensity.
type EmotionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// EmotionSegment covers one time slice of the recording.
type EmotionSegment struct {
	StartTime float64        `json:"startTime"`
	EndTime   float64        `json:"endTime"`
	Emotions  []EmotionScore `json:"emotions"`
}

// EmotionReading is the time-ordered prosody analysis of a recording,
// independent of the transcribed words. An empty reading is valid and
// means the analysis was unavailable or degraded.
type EmotionReading []EmotionSegment

const annotationPrefix = ". This is the emotional state of the user when they spoke these words. "

// Annotate appends the serialized reading to the transcript as the
// descriptive sentence the completion prompt expects. An empty reading
// leaves the transcript unchanged.
func (r EmotionReading) Annotate(transcript string) string {
	if len(r) == 0 {
		return transcript
	}
	serialized, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return transcript
	}
	return transcript + annotationPrefix + string(serialized)
}
