package config

// Embedded configuration, keyed by device ID. Populate at build time or by
// hand during development; the lamp ships with one board profile.

const cfgLamp = `{
  "colorloop": {
      "red_pin": 2,
      "green_pin": 3,
      "blue_pin": 6,
      "active_low": true,
      "state_every_frames": 10
  },
  "buttons": {
      "debounce_ms": 100
  },
  "stats": {
      "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"lamp": []byte(cfgLamp),
}
