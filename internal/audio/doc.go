// Package audio plays synthesized PCM through the system audio device
// using the oto/v3 library.
package audio
