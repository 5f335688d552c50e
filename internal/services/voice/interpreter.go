// Package voice maps free-text transcripts to dashboard intents. The
// interpreter is pure dispatch; the MQTT transport feeding and voicing it
// lives in transport.go.
package voice

import (
	"context"
	"log"
	"math/rand"
	"regexp"
	"strings"
)

// Actions are the collaborators an interpreted command may invoke. Nil fields
// degrade to no-ops so partial wiring stays safe.
type Actions struct {
	Announce         func(text string)
	SensorValue      func(key string) string
	PumpToggle       func(ctx context.Context, on bool) error
	AutoMode         func(ctx context.Context) error
	StartListening   func()
	StopListening    func()
	RestartListening func()
}

var (
	reGreeting    = regexp.MustCompile(`(^| )(hey|hi|hello|good morning|good afternoon|good evening)( |$)`)
	reFarewell    = regexp.MustCompile(`bye|goodbye|see you|good night|take care`)
	reWakeWord    = regexp.MustCompile(`^cli[a-z]*`)
	reFullReport  = regexp.MustCompile(`all sensors|all readings|full report|give me all readings|read all`)
	reTemperature = regexp.MustCompile(`(air )?temperature`)
	reWater       = regexp.MustCompile(`water`)
	rePumpOn      = regexp.MustCompile(`turn on|start pump|pump on`)
	rePumpOff     = regexp.MustCompile(`turn off|stop pump|pump off`)
	reAutoMode    = regexp.MustCompile(`auto mode|automatic|auto`)
)

var testLines = []string{
	"This is Clima speaking, test successful!",
	"All systems are running perfectly.",
	"Voice system operational and ready.",
	"Hello human, your AI assistant is active.",
}

// Interpreter dispatches transcripts strictly first-match-wins, so a greeting
// that also mentions the pump only triggers the greeting response.
type Interpreter struct {
	actions Actions
	pick    func(n int) int
}

func NewInterpreter(actions Actions) *Interpreter {
	if actions.Announce == nil {
		actions.Announce = func(string) {}
	}
	if actions.SensorValue == nil {
		actions.SensorValue = func(string) string { return "not available" }
	}
	return &Interpreter{actions: actions, pick: rand.Intn}
}

// Interpret handles one transcript. Every branch announces something.
func (i *Interpreter) Interpret(ctx context.Context, transcript string) {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	log.Printf("[Voice] command: %q", normalized)
	a := i.actions

	switch {
	case reGreeting.MatchString(normalized):
		a.Announce("Hello! I'm Clima, ready when you are. Ask me to read sensors, control the pump, or get the AI recommendation.")

	case reFarewell.MatchString(normalized):
		a.Announce("Goodbye! Take care and stay green!")

	case reWakeWord.MatchString(normalized):
		a.Announce("Yes, I'm here. What would you like me to do?")

	case reFullReport.MatchString(normalized):
		a.Announce("Here's the full report: Soil moisture is " + a.SensorValue("soilMoisture") +
			". Air humidity " + a.SensorValue("airHumidity") +
			". Air temperature " + a.SensorValue("airTemperature") +
			". pH level " + a.SensorValue("phValue") +
			". Water level " + a.SensorValue("waterLevel") +
			". Air quality " + a.SensorValue("airQuality") +
			". Battery " + a.SensorValue("batteryLevel") + ".")

	case strings.Contains(normalized, "soil"):
		a.Announce("Soil moisture is " + a.SensorValue("soilMoisture") + ".")

	case strings.Contains(normalized, "humidity"):
		a.Announce("Air humidity is " + a.SensorValue("airHumidity") + ".")

	case reTemperature.MatchString(normalized) && !reWater.MatchString(normalized):
		a.Announce("Air temperature is " + a.SensorValue("airTemperature") + ".")

	case strings.Contains(normalized, "p h") || strings.Contains(normalized, "ph "):
		a.Announce("pH level is " + a.SensorValue("phValue") + ".")

	case strings.Contains(normalized, "water level") ||
		(strings.Contains(normalized, "water") && strings.Contains(normalized, "level")):
		a.Announce("Water level is " + a.SensorValue("waterLevel") + ".")

	case strings.Contains(normalized, "air quality") || strings.Contains(normalized, "aqi"):
		a.Announce("Air quality is " + a.SensorValue("airQuality") + ".")

	case strings.Contains(normalized, "battery"):
		a.Announce("Battery level is " + a.SensorValue("batteryLevel") + ".")

	case strings.Contains(normalized, "flow rate") || strings.Contains(normalized, "flow sensor") ||
		strings.Contains(normalized, "water flow"):
		a.Announce("The current water flow rate is " + a.SensorValue("flowRate") + ".")

	case rePumpOn.MatchString(normalized):
		a.Announce("Turning the pump on now.")
		if a.PumpToggle != nil {
			if err := a.PumpToggle(ctx, true); err != nil {
				a.Announce("Failed to turn on pump.")
			}
		}

	case rePumpOff.MatchString(normalized):
		a.Announce("Stopping the pump now.")
		if a.PumpToggle != nil {
			if err := a.PumpToggle(ctx, false); err != nil {
				a.Announce("Failed to stop pump.")
			}
		}

	case reAutoMode.MatchString(normalized):
		a.Announce("Switching to automatic mode.")
		if a.AutoMode != nil {
			if err := a.AutoMode(ctx); err != nil {
				a.Announce("Failed to switch to auto mode.")
			}
		}

	case strings.Contains(normalized, "restart mic") || strings.Contains(normalized, "restart listening"):
		a.Announce("Restarting my microphone system now.")
		if a.RestartListening != nil {
			a.RestartListening()
		}

	case strings.Contains(normalized, "stop listening") || strings.Contains(normalized, "stop voice"):
		a.Announce("Stopping listening.")
		if a.StopListening != nil {
			a.StopListening()
		}

	case strings.Contains(normalized, "start listening") || strings.Contains(normalized, "resume listening"):
		a.Announce("Starting voice recognition again.")
		if a.StartListening != nil {
			a.StartListening()
		}

	case strings.Contains(normalized, "test voice"):
		a.Announce(testLines[i.pick(len(testLines))])

	default:
		a.Announce("Sorry, I didn't quite get that. Try asking for a sensor reading or say 'turn on pump'.")
	}
}
