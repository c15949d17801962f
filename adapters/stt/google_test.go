package stt_test

import (
	"github.com/loquilab/loqui-server/adapters/stt"
	"github.com/loquilab/loqui-server/domain/repositories"
)

var _ repositories.SpeechToText = &stt.GoogleSpeechToText{}
var _ repositories.SpeechToText = &stt.WhisperSpeechToText{}
