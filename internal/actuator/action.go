package actuator

// Action is a user-facing actuator command
type Action string

const (
	Light1On   Action = "light1-on"
	Light1Off  Action = "light1-off"
	Light2On   Action = "light2-on"
	Light2Off  Action = "light2-off"
	Door1Open  Action = "door1-open"
	Door1Close Action = "door1-close"
	Door2Open  Action = "door2-open"
	Door2Close Action = "door2-close"
	Fan1Start  Action = "fan1-start"
	Fan2Start  Action = "fan2-start"
)

// Actions lists every supported action in display order
var Actions = []Action{
	Light1On, Light1Off,
	Light2On, Light2Off,
	Door1Open, Door1Close,
	Door2Open, Door2Close,
	Fan1Start, Fan2Start,
}

const (
	payloadOn        = "on"
	payloadOff       = "off"
	payloadDoorOpen  = "90"
	payloadDoorClose = "0"
)

// Topics names the command topic of every actuator
type Topics struct {
	Light1 string
	Light2 string
	Door1  string
	Door2  string
	Fan1   string
	Fan2   string
}

// DefaultTopics returns the topics used by the stock firmware
func DefaultTopics() Topics {
	return Topics{
		Light1: "home/dashboard/led1",
		Light2: "home/dashboard/led2",
		Door1:  "home/dashboard/servo1",
		Door2:  "home/dashboard/servo2",
		Fan1:   "home/dashboard/stepper1",
		Fan2:   "home/dashboard/stepper2",
	}
}

type route struct {
	topic   string
	payload string
}

func (t Topics) routes() map[Action]route {
	return map[Action]route{
		Light1On:   {t.Light1, payloadOn},
		Light1Off:  {t.Light1, payloadOff},
		Light2On:   {t.Light2, payloadOn},
		Light2Off:  {t.Light2, payloadOff},
		Door1Open:  {t.Door1, payloadDoorOpen},
		Door1Close: {t.Door1, payloadDoorClose},
		Door2Open:  {t.Door2, payloadDoorOpen},
		Door2Close: {t.Door2, payloadDoorClose},
		Fan1Start:  {t.Fan1, payloadOn},
		Fan2Start:  {t.Fan2, payloadOn},
	}
}
