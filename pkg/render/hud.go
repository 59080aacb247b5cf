package render

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-skyward/pkg/effects"
	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/mission"
)

// maxContactLines caps the contact list on the HUD
const maxContactLines = 5

// Instruments are the effect modules a HUD reads from. Any of them may be nil.
type Instruments struct {
	Propulsion *effects.PropulsionEffect
	Cloaking   *effects.CloakingEffect
	Sensors    *effects.SensorsEffect
	Audio      *effects.AudioEffect
}

// Readings is one sample of the instruments
type Readings struct {
	Thrust   float64 // exhaust intensity in [0, 1]
	Opacity  float64 // 1 when decloaked
	HumPitch float64
	Audible  bool
	Contacts []effects.Contact
	Detected int
}

// Read samples every instrument that is present
func (in Instruments) Read() Readings {
	r := Readings{Opacity: 1}
	if in.Propulsion != nil {
		r.Thrust = in.Propulsion.Intensity()
	}
	if in.Cloaking != nil {
		r.Opacity = in.Cloaking.Opacity()
	}
	if in.Audio != nil {
		r.HumPitch = in.Audio.Pitch()
		r.Audible = in.Audio.Playing()
	}
	if in.Sensors != nil {
		r.Contacts = in.Sensors.Contacts()
		r.Detected = in.Sensors.Detected()
	}
	return r
}

// HUDLines formats a session snapshot and instrument readings as text lines
func HUDLines(s engine.SessionState, r Readings) []string {
	missionID := s.MissionID
	if missionID == "" {
		missionID = "-"
	}
	c := s.Craft

	lines := []string{
		fmt.Sprintf("SKYWARD  %-7s  mission %s", s.Mode, missionID),
		fmt.Sprintf("ALT %7.0f m   SPD %6.1f m/s   G %4.2f", c.Altitude, c.Speed, c.GForce),
		fmt.Sprintf("HDG %+4.0f°   PITCH %+4.0f°   ROLL %+4.0f°",
			degrees(c.Rotation.Yaw), degrees(c.Rotation.Pitch), degrees(c.Rotation.Roll)),
		fmt.Sprintf("SYS [1] propulsion %s  [2] cloaking %s  [3] sensors %s",
			onOff(s.Systems.Propulsion), onOff(s.Systems.Cloaking), onOff(s.Systems.Sensors)),
		objectiveLine(s),
		fmt.Sprintf("THRUST %3.0f%%  CLOAK %3.0f%%  HUM %s", r.Thrust*100, (1-r.Opacity)*100, humText(r)),
		fmt.Sprintf("CONTACTS %d in range, %d detected", len(r.Contacts), r.Detected),
	}
	for i, contact := range r.Contacts {
		if i == maxContactLines {
			lines = append(lines, fmt.Sprintf("  +%d more", len(r.Contacts)-maxContactLines))
			break
		}
		lines = append(lines, fmt.Sprintf("  %-12s %6.0f m  %+4.0f°",
			contact.ID, contact.Distance, degrees(contact.Bearing)))
	}
	return lines
}

func objectiveLine(s engine.SessionState) string {
	if s.MissionID == "" {
		return "OBJ none"
	}
	switch s.Objective.Outcome {
	case mission.Completed, mission.Failed:
		return fmt.Sprintf("OBJ %s: %s", s.Objective.Outcome, s.Objective.Reason)
	}
	if s.Objective.Remaining > 0 {
		return fmt.Sprintf("OBJ in progress, %.0f s left", s.Objective.Remaining)
	}
	return "OBJ in progress"
}

func humText(r Readings) string {
	if !r.Audible {
		return "off"
	}
	return fmt.Sprintf("%.0f Hz", r.HumPitch)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "off"
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
