package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Board: BoardConfig{
			URL:            "",
			FetchTimeoutMS: 5000,
		},
		Speech: SpeechConfig{
			Backend:       SpeechCommand,
			Command:       mustCommand("spd-say --wait -l {language} -i {volume_signed} -- {text}"),
			VoiceArgs:     mustCommand("-y {voice}"),
			VoicesCommand: mustCommand("spd-say -L"),
			RivaGRPC:      "127.0.0.1:50051",
			SampleRate:    22050,
			DialTimeoutMS: 3000,
		},
		Audio: AudioConfig{Sink: "default"},
		Notify: NotifyConfig{
			Enable:          true,
			Backend:         "desktop",
			AppName:         "aacboard",
			StatusTimeoutMS: 2000,
			ErrorTimeoutMS:  3000,
		},
		Debug: DebugConfig{LogLevel: "info"},
	}
}
