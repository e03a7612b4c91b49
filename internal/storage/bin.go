package storage

// FfmpegPath is the ffmpeg binary every stage invokes. deps.CheckDependency
// replaces it with the resolved absolute path at startup.
var FfmpegPath = "ffmpeg"
