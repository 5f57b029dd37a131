// Package decode provides the file-player input abstraction: a registry
// of extension-keyed decoders producing interleaved float32 PCM sources.
//
// Format support lives in subpackages that self-register on import:
//
//	import (
//		_ "github.com/dreamcaster-music/w4113-sub000/decode/mp3"
//		_ "github.com/dreamcaster-music/w4113-sub000/decode/vorbis"
//		_ "github.com/dreamcaster-music/w4113-sub000/decode/wav"
//	)
package decode
