package main

import "time"

var version = "dev"

type appSettings struct {
	AppName string `default:"WhatsUp Calendar Server"`

	Port  string `default:"5000" env:"PORT"`
	Debug bool

	Source struct {
		// Location is a CSV file path or an http(s) URL.
		Location string        `default:"data/events.csv"`
		Timeout  time.Duration `default:"10s"`
	}

	Feed struct {
		ProdID      string `default:"-//WhatsUpInSpace//Railway Flask ICS//EN"`
		Name        string `default:"Whats Up 1.2"`
		Description string `default:"Whats Up 1.21"`
		TTL         string `default:"PT1M"`
		Filename    string `default:"whatsup.ics"`
	}

	Limiter struct {
		Max        int           `default:"20"`
		Expiration time.Duration `default:"30s"`
	}
}

var appConfig appSettings
