package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	FirebaseURL string
	TimeoutMs   int

	BreakerFailures int
	BreakerOpenSec  int

	TrendsFile       string
	AlertCooldownMin int

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string

	Simulate bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:        getenv("PORT", "5000"),
		FirebaseURL: getenv("FIREBASE_URL", "https://clima-610f6-default-rtdb.firebaseio.com"),
		TimeoutMs:   getenvInt("TIMEOUT_MS", 5000),

		BreakerFailures: getenvInt("BREAKER_FAILURES", 3),
		BreakerOpenSec:  getenvInt("BREAKER_OPEN_SEC", 30),

		TrendsFile:       getenv("TRENDS_FILE", "data/sensorTrends.json"),
		AlertCooldownMin: getenvInt("ALERT_COOLDOWN_MIN", 60),

		InfluxURL:    getenv("INFLUX_URL", ""),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", "climaneer"),
		InfluxBucket: getenv("INFLUX_BUCKET", "sensors"),

		MQTTHost:     getenv("MQTT_HOST", ""),
		MQTTPort:     getenvInt("MQTT_PORT", 1883),
		MQTTUser:     getenv("MQTT_USER", "guest"),
		MQTTPassword: getenv("MQTT_PASSWORD", "guest"),

		Simulate: getenvBool("ENABLE_SIMULATE", false),
	}
}
