package realtime

import (
	skills "github.com/manarouei/agent-skills-sub004"
)

type Config struct {
	NatsURL      string
	JWTSecret    string
	RealtimePort string
}

// LoadConfig derives the relay settings from the application config.
// InitConfig must have run.
func LoadConfig() Config {
	app := skills.GetConfig()
	natsURL := app.NatsURL
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	return Config{
		NatsURL:      natsURL,
		JWTSecret:    app.JWTConfig.Secret,
		RealtimePort: skills.GetEnv("REALTIME_PORT", ":8081"),
	}
}
