package stt_test

import (
	"github.com/Modawn-AI/voice/adapters/stt"
	"github.com/Modawn-AI/voice/domain/repositories"
)

var _ repositories.Transcriber = &stt.GoogleSpeechToText{}
