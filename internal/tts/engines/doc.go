// Package engines contains implementations of different TTS engines.
// Currently supports the hosted OpenAI speech endpoint and an offline mock.
// Each engine implements the TTSEngine interface from the parent package.
package engines
